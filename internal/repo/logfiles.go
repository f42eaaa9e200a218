// Package repo provides read-only access to the on-disk diagnostic inputs:
// node log files (plain or gzip) and the exported metrics document. Nothing
// here mutates or caches source data.
package repo

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single log line; HBase lines with full stack traces
// stay well under this.
const maxLineSize = 1 << 20

// ScanLines opens a log file, transparently decompressing when compressed,
// and invokes fn for every line. Any open/decode failure is returned to the
// caller, who counts the file as failed and moves on.
func ScanLines(path string, compressed bool, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		fn(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log stream: %w", err)
	}
	return nil
}
