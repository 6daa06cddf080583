// internal/builder/extract.go
package builder

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/verkaro/editml-go"
	"gopkg.in/yaml.v3"

	"storyidx/internal/config"
)

// UnknownChapterTitle stands in when the first chapter has no title.
const UnknownChapterTitle = "Unknown"

// ErrNotSequence means a content file parsed but is not a list of chapters.
var ErrNotSequence = errors.New("top-level value is not a sequence of chapters")

// Meta is what ExtractMeta learns from a readable content file.
type Meta struct {
	ChapterCount      int
	FirstChapterTitle string
	SizeBytes         int64
	SizeKB            int64
	IsLarge           bool
}

// ExtractMeta reads a content file and derives its chapter metadata.
// Errors are per-file: callers index the file without metadata and move on.
func ExtractMeta(path string, th config.Thresholds) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Meta{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return Meta{}, fmt.Errorf("%s: %w", path, ErrNotSequence)
	}

	meta := Meta{
		ChapterCount:      len(root.Content),
		FirstChapterTitle: UnknownChapterTitle,
		SizeBytes:         int64(len(data)),
		SizeKB:            int64(len(data)) / 1024,
	}
	if len(root.Content) > 0 {
		if title, ok := scalarField(root.Content[0], "title"); ok {
			meta.FirstChapterTitle = cleanTitle(title)
		}
	}
	meta.IsLarge = meta.SizeKB > th.LargeFileKB || meta.ChapterCount > th.LargeChapterCount
	return meta, nil
}

// scalarField returns the scalar value stored under key in a mapping node.
// Null values count as absent.
func scalarField(node *yaml.Node, key string) (string, bool) {
	if node.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Value != key {
			continue
		}
		if v.Kind != yaml.ScalarNode || v.ShortTag() == "!!null" {
			return "", false
		}
		return v.Value, true
	}
	return "", false
}

// cleanTitle reduces EditML review markup in a chapter title to the
// accepted text. Titles without markup, or with markup that does not
// parse, are returned unchanged.
func cleanTitle(title string) string {
	if !strings.Contains(title, "{") {
		return title
	}
	nodes, parseIssues := editml.Parse(title)
	if len(parseIssues) > 0 && parseIssues[0].Severity == editml.SeverityError {
		return title
	}
	clean, transformIssues := editml.TransformCleanView(nodes)
	if len(transformIssues) > 0 && transformIssues[0].Severity == editml.SeverityError {
		return title
	}
	if clean = strings.TrimSpace(clean); clean == "" {
		return title
	}
	return clean
}
