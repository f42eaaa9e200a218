// Package catalog discovers HBase log files and narrows them to the set
// relevant to an analysis window and optional node allowlist. Files are never
// opened here; selection works purely on names.
package catalog

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/diagstack/hbase-diag/internal/models"
)

// LogFormat describes how a file must be opened.
type LogFormat string

const (
	FormatPlain      LogFormat = "plain"
	FormatCompressed LogFormat = "compressed"
)

// LogFileRef is a discovered candidate log file.
type LogFileRef struct {
	Path   string
	Node   string
	Format LogFormat
}

var (
	// nodeAddressRe matches the dotted-address token EMR embeds in log
	// names, e.g. "hbase-hbase-regionserver-ip-10-25-130-219.log.2025-09-12-16.gz".
	nodeAddressRe = regexp.MustCompile(`ip-\d+-\d+-\d+-\d+`)
	// dateHourRe matches the rotated-file hour suffix, e.g. "2025-09-12-16".
	dateHourRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}-\d{2}`)
	// dateRe matches a bare calendar date inside a filename.
	dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Catalog walks a log root and selects window-relevant files.
type Catalog struct {
	logger *slog.Logger
}

// New constructs a Catalog.
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{logger: logger}
}

// Discover recursively collects candidate log files under root. A missing
// root is not an error: it yields an empty catalog with a warning, so a call
// against an unpopulated directory still returns a result document.
func (c *Catalog) Discover(root string) []LogFileRef {
	if _, err := os.Stat(root); err != nil {
		c.logger.Warn("log directory not accessible", slog.String("dir", root), slog.Any("error", err))
		return nil
	}

	var refs []LogFileRef
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn("walk error", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !isCandidateName(name) {
			return nil
		}
		refs = append(refs, LogFileRef{
			Path:   path,
			Node:   NodeFromFilename(name),
			Format: formatFor(name),
		})
		return nil
	})
	if walkErr != nil {
		c.logger.Warn("log discovery aborted", slog.String("dir", root), slog.Any("error", walkErr))
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs
}

// Select keeps the files relevant to the window's calendar dates, then
// applies the optional node allowlist. Order follows the discovery order.
func (c *Catalog) Select(refs []LogFileRef, window models.TimeWindow, targetNodes []string) []LogFileRef {
	dates := window.Dates()

	var dateFiltered []LogFileRef
	for _, ref := range refs {
		if relevantForDates(filepath.Base(ref.Path), dates) {
			dateFiltered = append(dateFiltered, ref)
		}
	}

	if len(targetNodes) == 0 {
		return dateFiltered
	}

	allowed := make(map[string]struct{}, len(targetNodes))
	for _, node := range targetNodes {
		allowed[node] = struct{}{}
	}
	var selected []LogFileRef
	for _, ref := range dateFiltered {
		if _, ok := allowed[ref.Node]; ok {
			selected = append(selected, ref)
		}
	}
	return selected
}

// NodeFromFilename derives node identity from a file or series name: the
// embedded node-address token when present, otherwise the filename stem.
func NodeFromFilename(name string) string {
	if match := nodeAddressRe.FindString(name); match != "" {
		return match
	}
	stem := strings.TrimSuffix(name, ".log")
	return strings.TrimSuffix(stem, ".out")
}

// NodeFromSeriesName resolves node identity for a metric series name, or ""
// when the name embeds no node-address token.
func NodeFromSeriesName(name string) string {
	return nodeAddressRe.FindString(name)
}

func isCandidateName(name string) bool {
	if strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".out") || strings.HasSuffix(name, ".gz") {
		return true
	}
	return dateHourRe.MatchString(name)
}

func formatFor(name string) LogFormat {
	if strings.HasSuffix(name, ".gz") {
		return FormatCompressed
	}
	return FormatPlain
}

// relevantForDates applies the window-date rules: a name carrying one of the
// window's dates matches; an undated .log is the currently-active file and is
// always kept; rotated .out files match only on an explicit date.
func relevantForDates(name string, dates []string) bool {
	for _, date := range dates {
		if strings.Contains(name, date) {
			return true
		}
	}
	if strings.HasSuffix(name, ".log") && !dateRe.MatchString(name) {
		return true
	}
	return false
}
