// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"storyidx/internal/config"
	"storyidx/internal/story"
	"storyidx/internal/util"
)

const (
	noteFile     = "README.md"
	noteHTMLFile = "README.html"
)

// WriteUsageNotes (re)writes the README notes that tell editors how to use
// the content directory and, when raw comparison is on, the raw directory.
// Each note is written as markdown plus an HTML rendition. It returns the
// paths written.
func WriteUsageNotes(cfg config.Config, unsafe bool) ([]string, error) {
	contentDir := cfg.ContentPath()
	rawDir := cfg.RawPath()

	data := noteData{IndexFile: cfg.IndexFile, IgnoreFile: cfg.IgnoreFile}
	if rawDir != "" {
		data.RawLink = relLink(contentDir, rawDir)
		data.StoriesLink = relLink(rawDir, contentDir)
	}

	notes := []usageNote{{contentDir, "Stories Directory", storiesNote}}
	if rawDir != "" {
		notes = append(notes, usageNote{rawDir, "Raw Directory", rawNote})
	}

	var written []string
	for _, note := range notes {
		var md bytes.Buffer
		if err := note.tmpl.Execute(&md, data); err != nil {
			return written, fmt.Errorf("failed to execute %s template: %w", note.title, err)
		}
		mdPath := filepath.Join(note.dir, noteFile)
		if err := util.WriteFileAtomic(mdPath, md.Bytes(), 0644); err != nil {
			return written, fmt.Errorf("failed to write file %s: %w", mdPath, err)
		}
		written = append(written, mdPath)

		page, err := renderNote(note.title, md.Bytes(), unsafe)
		if err != nil {
			return written, err
		}
		htmlPath := filepath.Join(note.dir, noteHTMLFile)
		if err := util.WriteFileAtomic(htmlPath, page, 0644); err != nil {
			return written, fmt.Errorf("failed to write file %s: %w", htmlPath, err)
		}
		written = append(written, htmlPath)
	}
	return written, nil
}

// IsNoteFile reports whether name is one of the generated usage notes.
func IsNoteFile(name string) bool {
	base := filepath.Base(name)
	return base == noteFile || base == noteHTMLFile
}

// CreateNewProject lays out a fresh project in dir: the content and raw
// directories plus a storyidx.yaml holding the defaults. An existing config
// file is left untouched.
func CreateNewProject(dir string) error {
	fmt.Println("Scaffolding new project in:", dir)
	cfg := config.Default()
	cfg.BaseDir = dir

	for _, d := range []string{cfg.ContentPath(), cfg.RawPath()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.DefaultFile)
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Println("Keeping existing", cfgPath)
	} else {
		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode default config: %w", err)
		}
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", cfgPath, err)
		}
	}

	if _, err := WriteUsageNotes(cfg, false); err != nil {
		return err
	}
	fmt.Println("Project scaffolded. You can now:")
	fmt.Println("  cd", dir)
	fmt.Println("  storyidx new \"my story vol 1\"")
	fmt.Println("  storyidx")
	return nil
}

// ErrStoryExists is returned by CreateNewStory instead of overwriting.
var ErrStoryExists = errors.New("story file already exists")

// CreateNewStory writes a one-chapter content file named after title into
// the content directory, using archetypes/story.yaml when the project has
// one. It returns the path of the new file.
func CreateNewStory(cfg config.Config, title string) (string, error) {
	slug := Slug(title)
	if slug == "" {
		return "", fmt.Errorf("cannot derive a file name from %q", title)
	}
	path := filepath.Join(cfg.ContentPath(), slug+story.Extensions[0])
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	tmpl, err := loadArchetype(filepath.Join(cfg.BaseDir, "archetypes", "story.yaml"))
	if err != nil {
		return "", err
	}
	data := struct {
		Title string
	}{
		Title: title,
	}
	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrStoryExists, path)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(output.Bytes()); err != nil {
		return "", err
	}

	fmt.Println("Created:", path)
	return path, nil
}

// Slug turns a free-form title into a content file base name:
// "My Story Vol 1.5!" becomes "my_story_vol_1.5".
func Slug(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
	return strings.Join(fields, "_")
}

func loadArchetype(path string) (*template.Template, error) {
	src := archetypeStoryContent
	if b, err := os.ReadFile(path); err == nil {
		src = string(b)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not read archetype file %s: %w", path, err)
	}
	tmpl, err := template.New("archetype").Funcs(template.FuncMap{"quote": strconv.Quote}).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse archetype file %s: %w", path, err)
	}
	return tmpl, nil
}

type usageNote struct {
	dir   string
	title string
	tmpl  *template.Template
}

type noteData struct {
	IndexFile   string
	IgnoreFile  string
	RawLink     string
	StoriesLink string
}

func relLink(from, to string) string {
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

var (
	storiesNote = template.Must(template.New("stories").Parse(storiesNoteContent))
	rawNote     = template.Must(template.New("raw").Parse(rawNoteContent))
)

const storiesNoteContent = `# Stories Directory

Thả file YAML đã chỉnh sửa vào đây để website tự động detect!

## Cách sử dụng:

1. Copy file .yaml hoặc .yml vào thư mục này
2. Chạy ` + "`storyidx`" + ` để cập nhật ` + "`{{ .IndexFile }}`" + `
3. Refresh website để xem truyện mới

## Format file YAML:

` + "```yaml" + `
- id: Chapter_1
  title: "Tên chương"
  content: |-
    Nội dung chương...
` + "```" + `

{{ if .IgnoreFile }}## Bỏ qua file:

Liệt kê các file không muốn đưa vào index trong ` + "`{{ .IgnoreFile }}`" + ` (cú pháp giống .gitignore).
{{ end }}{{ if .RawLink }}
## Bản gốc:

Thả bản gốc chưa chỉnh sửa vào [{{ .RawLink }}]({{ .RawLink }}/README.md) để so sánh.
{{ end }}`

const rawNoteContent = `# Raw Directory

Thả file YAML gốc (chưa chỉnh sửa) vào đây để so sánh!

## Tính năng:
- Website sẽ tự động detect file raw
- Hiển thị nút "So sánh" nếu có raw
- Có thể xem song song edited vs raw

## Naming convention:
- ` + "`story.yaml`" + ` trong [stories]({{ .StoriesLink }}/README.md) → ` + "`story.yaml`" + ` trong raw/
- ` + "`story_edit.yaml`" + ` trong stories → ` + "`story.yaml`" + ` trong raw/
`

const archetypeStoryContent = `- id: Chapter_1
  title: {{ quote .Title }}
  content: |-
    Nội dung chương...
`
