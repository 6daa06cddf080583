// internal/scanner/raw.go
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"storyidx/internal/story"
)

// ResolveRaw looks in rawDir for the original version of an edited story
// and returns its file name, or "" when there is none. Candidates are tried
// in order: the same name, the name without the edit marker, then the name
// without its extension combined with each recognized extension.
func ResolveRaw(filename, rawDir string) string {
	if rawDir == "" {
		return ""
	}
	if info, err := os.Stat(rawDir); err != nil || !info.IsDir() {
		return ""
	}

	candidates := []string{
		filename,
		strings.ReplaceAll(filename, story.EditMarker, ""),
	}
	base := filename
	for _, ext := range story.Extensions {
		base = strings.ReplaceAll(base, ext, "")
	}
	for _, ext := range story.Extensions {
		candidates = append(candidates, base+ext)
	}

	for _, name := range candidates {
		if isRegularFile(filepath.Join(rawDir, name)) {
			return name
		}
	}
	return ""
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
