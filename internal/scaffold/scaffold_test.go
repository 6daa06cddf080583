package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyidx/internal/builder"
	"storyidx/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BaseDir = t.TempDir()
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func Test_WriteUsageNotes_ContentAndRaw(t *testing.T) {
	cfg := testConfig(t)

	written, err := WriteUsageNotes(cfg, false)
	if err != nil {
		t.Fatalf("WriteUsageNotes: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("written = %v, want 4 files", written)
	}

	stories := readFile(t, filepath.Join(cfg.ContentPath(), "README.md"))
	if !strings.HasPrefix(stories, "# Stories Directory") {
		t.Errorf("unexpected stories note:\n%s", stories)
	}
	if !strings.Contains(stories, "(../raw/README.md)") {
		t.Errorf("stories note should link to the raw note:\n%s", stories)
	}
	if !strings.Contains(stories, "`index.json`") || !strings.Contains(stories, "`.storyignore`") {
		t.Errorf("stories note should name the index and ignore files:\n%s", stories)
	}

	raw := readFile(t, filepath.Join(cfg.RawPath(), "README.md"))
	if !strings.HasPrefix(raw, "# Raw Directory") {
		t.Errorf("unexpected raw note:\n%s", raw)
	}

	page := readFile(t, filepath.Join(cfg.ContentPath(), "README.html"))
	if !strings.Contains(page, "<title>Stories Directory</title>") {
		t.Errorf("HTML note missing title:\n%s", page)
	}
	if !strings.Contains(page, `href="../raw/README.html"`) {
		t.Errorf("HTML note should link to the raw HTML note:\n%s", page)
	}
}

func Test_WriteUsageNotes_RawDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.RawCompare = false

	written, err := WriteUsageNotes(cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v, want only the stories notes", written)
	}
	stories := readFile(t, filepath.Join(cfg.ContentPath(), "README.md"))
	if strings.Contains(stories, "README.md)") {
		t.Errorf("stories note should not link to a raw note:\n%s", stories)
	}
	if _, err := os.Stat(filepath.Join(cfg.BaseDir, "raw")); !os.IsNotExist(err) {
		t.Errorf("raw directory should not be created, stat err = %v", err)
	}
}

func Test_WriteUsageNotes_Overwrites(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(cfg.ContentPath(), "README.md")
	if err := os.MkdirAll(cfg.ContentPath(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteUsageNotes(cfg, false); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); strings.Contains(got, "stale") {
		t.Errorf("note was not overwritten: %q", got)
	}
}

func Test_RenderNote_Sanitizes(t *testing.T) {
	md := []byte("# Hi\n\n<script>alert(1)</script>\n\n[next](other.md)\n")

	safe, err := renderNote("t", md, false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(safe), "<script>") {
		t.Errorf("script survived sanitizing:\n%s", safe)
	}
	if !strings.Contains(string(safe), `href="other.html"`) {
		t.Errorf("markdown link not rewritten:\n%s", safe)
	}

	unsafe, err := renderNote("t", md, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(unsafe), "<script>") {
		t.Errorf("unsafe rendering should keep raw HTML:\n%s", unsafe)
	}
}

func Test_IsNoteFile(t *testing.T) {
	for name, want := range map[string]bool{
		"stories/README.md":   true,
		"raw/README.html":     true,
		"stories/index.json":  false,
		"stories/readme.yaml": false,
	} {
		if got := IsNoteFile(name); got != want {
			t.Errorf("IsNoteFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func Test_CreateNewProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	if err := CreateNewProject(dir); err != nil {
		t.Fatalf("CreateNewProject: %v", err)
	}
	for _, p := range []string{"stories/README.md", "raw/README.md", config.DefaultFile} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
	if err != nil {
		t.Fatalf("scaffolded config does not load: %v", err)
	}
	if cfg.ContentPath() != filepath.Join(dir, "stories") {
		t.Errorf("ContentPath() = %q", cfg.ContentPath())
	}

	// A second run keeps a customised config.
	custom := []byte("content_dir: library\n")
	if err := os.WriteFile(filepath.Join(dir, config.DefaultFile), custom, 0644); err != nil {
		t.Fatal(err)
	}
	if err := CreateNewProject(dir); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(dir, config.DefaultFile)); got != string(custom) {
		t.Errorf("config overwritten: %q", got)
	}
}

func Test_CreateNewStory(t *testing.T) {
	cfg := testConfig(t)

	path, err := CreateNewStory(cfg, `Boardgame Vol 2 "Reloaded"`)
	if err != nil {
		t.Fatalf("CreateNewStory: %v", err)
	}
	if filepath.Base(path) != "boardgame_vol_2_reloaded.yaml" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}
	meta, err := builder.ExtractMeta(path, cfg.Thresholds)
	if err != nil {
		t.Fatalf("new story is not a valid content file: %v", err)
	}
	if meta.ChapterCount != 1 || meta.FirstChapterTitle != `Boardgame Vol 2 "Reloaded"` {
		t.Errorf("unexpected meta: %+v", meta)
	}

	if _, err := CreateNewStory(cfg, "boardgame vol 2 \"reloaded\""); !errors.Is(err, ErrStoryExists) {
		t.Errorf("second create err = %v, want ErrStoryExists", err)
	}
}

func Test_CreateNewStory_CustomArchetype(t *testing.T) {
	cfg := testConfig(t)
	archetypes := filepath.Join(cfg.BaseDir, "archetypes")
	if err := os.MkdirAll(archetypes, 0755); err != nil {
		t.Fatal(err)
	}
	tmpl := "- title: {{ quote .Title }}\n- title: Part two\n"
	if err := os.WriteFile(filepath.Join(archetypes, "story.yaml"), []byte(tmpl), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := CreateNewStory(cfg, "twin tails")
	if err != nil {
		t.Fatal(err)
	}
	meta, err := builder.ExtractMeta(path, cfg.Thresholds)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ChapterCount != 2 {
		t.Errorf("ChapterCount = %d, want 2", meta.ChapterCount)
	}
}

func Test_Slug(t *testing.T) {
	cases := map[string]string{
		"My Story Vol 1":  "my_story_vol_1",
		"  spaced   out ": "spaced_out",
		"a-b_c/d":         "a_b_c_d",
		"Vol 1.5!":        "vol_1.5",
		"Khởi Đầu":        "khởi_đầu",
		"   ":             "",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func Test_CreateNewStory_EmptyTitle(t *testing.T) {
	if _, err := CreateNewStory(testConfig(t), "   "); err == nil {
		t.Fatal("expected error for empty title")
	}
}
