package extractors

import (
	"strings"

	"github.com/diagstack/hbase-diag/internal/models"
)

var errorMarkers = []string{"ERROR", "Exception", "timed out", "FATAL", "WARN"}

// DetectError reports whether a line is error-ish and, if so, its classified
// kind.
func DetectError(line string) (models.ErrorKind, bool) {
	for _, marker := range errorMarkers {
		if strings.Contains(line, marker) {
			return ClassifyError(line), true
		}
	}
	return "", false
}

// ClassifyError assigns an error kind via a priority chain; the first
// matching family wins, falling back to log-level literals, then unknown.
func ClassifyError(line string) models.ErrorKind {
	lower := strings.ToLower(line)

	switch {
	case strings.Contains(line, "timed out") || strings.Contains(lower, "timeout"):
		return models.ErrorKindTimeout
	case strings.Contains(lower, "outofmemoryerror") || strings.Contains(lower, "out of memory"):
		return models.ErrorKindMemory
	case containsAny(lower, "connection", "socket", "network"):
		return models.ErrorKindNetwork
	case containsAny(lower, "ioexception", "disk", "file"):
		return models.ErrorKindIO
	case containsAny(lower, "permission", "access denied", "unauthorized"):
		return models.ErrorKindPermission
	case containsAny(lower, "configuration", "config", "property"):
		return models.ErrorKindConfiguration
	case containsAny(lower, "corrupt", "checksum", "data"):
		return models.ErrorKindData
	case containsAny(lower, "resource", "quota", "limit"):
		return models.ErrorKindResource
	case strings.Contains(line, "FATAL"):
		return models.ErrorKindFatal
	case strings.Contains(line, "ERROR"):
		return models.ErrorKindError
	case strings.Contains(line, "WARN"):
		return models.ErrorKindWarning
	case strings.Contains(line, "Exception"):
		return models.ErrorKindException
	default:
		return models.ErrorKindUnknown
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
