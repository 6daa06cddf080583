// internal/builder/builder.go
package builder

import (
	"fmt"
	"sort"

	"storyidx/internal/config"
	"storyidx/internal/scanner"
	"storyidx/internal/story"
)

// Run builds the index for cfg and writes it to cfg.IndexPath().
func Run(cfg config.Config, opts Options) (*Index, error) {
	idx, err := BuildIndex(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := WriteIndex(cfg.IndexPath(), idx); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	return idx, nil
}

// BuildIndex scans the content directory and assembles a fresh Index.
// Files are processed one at a time; a file that cannot be parsed is
// logged and indexed with its size only.
func BuildIndex(cfg config.Config, opts Options) (*Index, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	contentScanner, err := scanner.New(cfg.ContentPath(), scanner.Options{IgnoreFile: cfg.IgnoreFile})
	if err != nil {
		return nil, err
	}

	rawDir := cfg.RawPath()
	rawCount := 0
	if rawDir != "" {
		rawScanner, err := scanner.New(rawDir, scanner.Options{IgnoreFile: cfg.IgnoreFile})
		if err != nil {
			return nil, err
		}
		if rawCount, err = rawScanner.Count(); err != nil {
			return nil, err
		}
	}

	files, err := contentScanner.Scan()
	if err != nil {
		return nil, err
	}

	formatter := cfg.Formatter()
	categorizer := cfg.Categorizer()
	stories := make([]story.Story, 0, len(files))
	for _, f := range files {
		logger.Debug("found story", "file", f.Name, "bytes", f.SizeBytes)

		s := newStory(f, formatter)
		meta, err := ExtractMeta(f.Path, cfg.Thresholds)
		if err != nil {
			logger.Warn("could not read chapters, indexing size only", "file", f.Name, "error", err)
			s.IsLarge = s.SizeKB > cfg.Thresholds.LargeFileKB
		} else {
			applyMeta(&s, meta)
			if s.IsLarge {
				logger.Warn("large story file", "file", f.Name, "chapters", meta.ChapterCount, "size", s.Size)
			}
		}

		if rawDir != "" {
			if raw := scanner.ResolveRaw(f.Name, rawDir); raw != "" {
				s.HasRaw = true
				s.RawFileName = raw
				logger.Debug("raw counterpart", "file", f.Name, "raw", raw)
			}
		}
		if cfg.Features.Categories {
			s.Series = categorizer.Categorize(f.Name)
		}
		stories = append(stories, s)
	}

	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].Title < stories[j].Title
	})

	buildID, err := opts.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate build id: %w", err)
	}
	now := opts.Now()

	idx := &Index{
		Stories:       stories,
		TotalCount:    len(stories),
		RawCount:      rawCount,
		HasRawSupport: rawCount > 0,
		LastUpdated:   now.Format("2006-01-02 15:04:05"),
		BuildDate:     now.Format("2006-01-02T15:04:05.000000Z07:00"),
		BuildID:       buildID,
		Version:       FormatVersion,
		Generator:     Generator,
	}
	if cfg.Features.Categories {
		idx.Categories = story.GroupBySeries(stories)
	}
	return idx, nil
}

func newStory(f scanner.File, formatter story.Formatter) story.Story {
	kb := f.SizeBytes / 1024
	return story.Story{
		ID:        story.ID(f.Name),
		Title:     formatter.Format(f.Name),
		FileName:  f.Name,
		Size:      fmt.Sprintf("%dKB", kb),
		SizeBytes: f.SizeBytes,
		SizeKB:    kb,
	}
}

func applyMeta(s *story.Story, meta Meta) {
	chapters := meta.ChapterCount
	s.Chapters = &chapters
	title := meta.FirstChapterTitle
	s.FirstChapterTitle = &title
	s.IsLarge = meta.IsLarge
	s.Description = describe(chapters, s.Size, meta.SizeKB, meta.IsLarge)
}

// describe builds the one-line summary shown under a story in the reader,
// e.g. "120 chương • 2048KB • 2.0MB • File lớn".
func describe(chapters int, size string, sizeKB int64, large bool) string {
	desc := fmt.Sprintf("%d chương • %s", chapters, size)
	if sizeKB > 1024 {
		// Exact ties round to even.
		desc += fmt.Sprintf(" • %.1fMB", float64(sizeKB)/1024)
	}
	if large {
		desc += " • File lớn"
	}
	return desc
}
