package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathWithin resolves candidate to an absolute cleaned path and
// verifies it does not escape root. Returns the resolved path.
func PathWithin(root, candidate string) (string, error) {
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w", candidate, err)
	}
	cleanRoot := filepath.Clean(root)
	if abs != cleanRoot && !strings.HasPrefix(abs, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path '%s' is outside '%s'", candidate, cleanRoot)
	}
	return abs, nil
}
