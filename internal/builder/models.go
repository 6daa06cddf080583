// internal/builder/models.go
package builder

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storyidx/internal/story"
)

const (
	// FormatVersion tags the shape of index.json.
	FormatVersion = "2.0"
	Generator     = "storyidx"
)

// Index is the document written to index.json and read by the front-end.
type Index struct {
	Stories       []story.Story            `json:"stories"`
	Categories    map[string][]story.Story `json:"categories,omitempty"`
	TotalCount    int                      `json:"total_count"`
	RawCount      int                      `json:"raw_count"`
	HasRawSupport bool                     `json:"has_raw_support"`
	LastUpdated   string                   `json:"last_updated"`
	BuildDate     string                   `json:"build_date"`
	BuildID       string                   `json:"build_id"`
	Version       string                   `json:"version"`
	Generator     string                   `json:"generator"`
}

// RawSupported counts stories that have a raw counterpart.
func (idx *Index) RawSupported() int {
	n := 0
	for _, s := range idx.Stories {
		if s.HasRaw {
			n++
		}
	}
	return n
}

// LargeStories returns the stories flagged as large, in index order.
func (idx *Index) LargeStories() []story.Story {
	var large []story.Story
	for _, s := range idx.Stories {
		if s.IsLarge {
			large = append(large, s)
		}
	}
	return large
}

// Options carries the collaborators of a build. Zero values are replaced
// with defaults.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() (string, error)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = newBuildID
	}
	return o
}

func newBuildID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
