package dataset

import (
	"path/filepath"
	"strings"

	"charselect/pkg/models"
)

// NormalizeName reduces a dataset name to a bare file name inside the data
// directory. Anything that could address another location is rejected.
func NormalizeName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || s == models.NoFileSentinel {
		return "", &LoadError{Kind: KindName, Name: name}
	}
	if strings.ContainsAny(s, "/\\\x00") || strings.Contains(s, "..") {
		return "", &LoadError{Kind: KindName, Name: name}
	}
	if s == "." || filepath.Base(s) != s {
		return "", &LoadError{Kind: KindName, Name: name}
	}
	return s, nil
}
