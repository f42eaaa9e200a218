// Command fixtures writes a small hbase_log/ and hbase_metrics/ tree so the
// analysis endpoints can be exercised locally without a real cluster export.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

type field struct {
	Type   string    `json:"type"`
	Values []float64 `json:"values"`
}

type series struct {
	Name   string  `json:"name"`
	Fields []field `json:"fields"`
}

type document struct {
	Series []series `json:"series"`
}

func main() {
	var root string
	flag.StringVar(&root, "out", ".", "Directory to write hbase_log/ and hbase_metrics/ under")
	flag.Parse()

	base := time.Now().Add(-2 * time.Hour).Truncate(time.Minute)
	rng := rand.New(rand.NewSource(base.UnixNano()))

	if err := writeLogs(filepath.Join(root, "hbase_log"), base, rng); err != nil {
		log.Fatalf("write logs: %v", err)
	}
	if err := writeMetrics(filepath.Join(root, "hbase_metrics"), base, rng); err != nil {
		log.Fatalf("write metrics: %v", err)
	}

	log.Printf("fixtures written under %s (window starts %s)", root, base.Format("2006-01-02 15:04:05"))
}

func writeLogs(dir string, base time.Time, rng *rand.Rand) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for n := 1; n <= 3; n++ {
		node := fmt.Sprintf("ip-10-0-0-%d", n)
		path := filepath.Join(dir, node+".log")

		f, err := os.Create(path)
		if err != nil {
			return err
		}

		for i := 0; i < 120; i++ {
			ts := base.Add(time.Duration(i) * 30 * time.Second)
			stamp := ts.Format("2006-01-02 15:04:05") + ",000"

			handler := 20 + rng.Intn(30)
			if n == 1 && i%17 == 0 {
				handler = 59 + rng.Intn(3)
			}
			fmt.Fprintf(f, "%s INFO  [RpcServer] ipc.RpcServer: handler=%d queue=%d\n", stamp, handler, rng.Intn(8))

			switch {
			case i%23 == 0:
				fmt.Fprintf(f, "%s WARN  [sync.%d] wal.FSHLog: Slow sync cost: %d ms\n", stamp, rng.Intn(4), 80+rng.Intn(120))
			case i%31 == 0:
				fmt.Fprintf(f, "%s ERROR [regionserver] region operation timed out after %ds\n", stamp, 30+rng.Intn(60))
			case i%13 == 0:
				fmt.Fprintf(f, "%s INFO  [regionserver] GC pause %dms, ParNew collection\n", stamp, 50+rng.Intn(400))
			}
		}

		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(dir string, base time.Time, rng *rand.Rand) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	doc := document{}
	for n := 1; n <= 3; n++ {
		node := fmt.Sprintf("ip-10-0-0-%d", n)
		times := make([]float64, 60)
		values := make([]float64, 60)
		for i := range times {
			times[i] = float64(base.Add(time.Duration(i) * time.Minute).UnixMilli())
			values[i] = float64(25 + rng.Intn(28))
			if n == 1 && i > 40 {
				values[i] = float64(52 + rng.Intn(10))
			}
		}
		doc.Series = append(doc.Series, series{
			Name: fmt.Sprintf("handler_usage %s", node),
			Fields: []field{
				{Type: "time", Values: times},
				{Type: "number", Values: values},
			},
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "download.json"), data, 0o644)
}
