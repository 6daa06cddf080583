// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"storyidx/internal/story"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "storyidx.yaml"

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings from storyidx.yaml.
// The `yaml` tags are used by the parser to map file keys to struct fields.
type Config struct {
	ContentDir    string             `yaml:"content_dir"`
	RawDir        string             `yaml:"raw_dir"`
	IndexFile     string             `yaml:"index_file"`
	IgnoreFile    string             `yaml:"ignore_file"`
	Features      Features           `yaml:"features"`
	Thresholds    Thresholds         `yaml:"thresholds"`
	VolumeLabel   string             `yaml:"volume_label"`
	DefaultSeries string             `yaml:"default_series"`
	Series        []story.SeriesRule `yaml:"series"`
	Serve         Serve              `yaml:"serve"`

	// BaseDir anchors relative directories. It is the directory of the
	// loaded config file, or "." for defaults.
	BaseDir string `yaml:"-"`
}

// Features toggles the optional pipeline stages.
type Features struct {
	RawCompare bool `yaml:"raw_compare"`
	Categories bool `yaml:"categories"`
	UsageNotes bool `yaml:"usage_notes"`
}

// Thresholds decide when a story is flagged as large.
type Thresholds struct {
	LargeFileKB       int64 `yaml:"large_file_kb"`
	LargeChapterCount int   `yaml:"large_chapter_count"`
}

// Serve configures the development server.
type Serve struct {
	SiteDir string `yaml:"site_dir"`
	Port    int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ContentDir: "stories",
		RawDir:     "raw",
		IndexFile:  "index.json",
		IgnoreFile: ".storyignore",
		Features: Features{
			RawCompare: true,
			Categories: true,
			UsageNotes: true,
		},
		Thresholds: Thresholds{
			LargeFileKB:       5000,
			LargeChapterCount: 1000,
		},
		VolumeLabel:   story.DefaultVolumeLabel,
		DefaultSeries: story.DefaultSeries,
		Series:        append([]story.SeriesRule(nil), story.DefaultSeriesRules...),
		Serve:         Serve{SiteDir: ".", Port: 1313},
		BaseDir:       ".",
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ContentDir) == "" {
		return fmt.Errorf("%w: content_dir is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.IndexFile) == "" || filepath.Base(c.IndexFile) != c.IndexFile {
		return fmt.Errorf("%w: index_file must be a plain file name, got %q", ErrInvalidConfig, c.IndexFile)
	}
	if c.Features.RawCompare && strings.TrimSpace(c.RawDir) == "" {
		return fmt.Errorf("%w: raw_compare is enabled but raw_dir is empty", ErrInvalidConfig)
	}
	if c.Thresholds.LargeFileKB <= 0 || c.Thresholds.LargeChapterCount <= 0 {
		return fmt.Errorf("%w: thresholds must be positive", ErrInvalidConfig)
	}
	for i, rule := range c.Series {
		if rule.Label == "" || len(rule.Match) == 0 {
			return fmt.Errorf("%w: series rule %d needs a label and at least one pattern", ErrInvalidConfig, i)
		}
	}
	return nil
}

// ContentPath is the content directory resolved against BaseDir.
func (c Config) ContentPath() string {
	return c.resolve(c.ContentDir)
}

// RawPath is the raw directory resolved against BaseDir, or "" when raw
// comparison is disabled.
func (c Config) RawPath() string {
	if !c.Features.RawCompare {
		return ""
	}
	return c.resolve(c.RawDir)
}

// IndexPath is where index.json is written.
func (c Config) IndexPath() string {
	return filepath.Join(c.ContentPath(), c.IndexFile)
}

// SitePath is the directory served by `storyidx serve`.
func (c Config) SitePath() string {
	return c.resolve(c.Serve.SiteDir)
}

// Formatter builds the title formatter described by the config.
func (c Config) Formatter() story.Formatter {
	return story.Formatter{VolumeLabel: c.VolumeLabel, VolumeAbbrevs: story.DefaultVolumeAbbrevs}
}

// Categorizer builds the series categorizer described by the config.
func (c Config) Categorizer() story.Categorizer {
	return story.Categorizer{Rules: c.Series, Default: c.DefaultSeries}
}

// Marshal renders the config as YAML, used when scaffolding a project.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) || c.BaseDir == "" {
		return dir
	}
	return filepath.Join(c.BaseDir, dir)
}
