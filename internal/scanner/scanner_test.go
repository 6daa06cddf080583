package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func scanNames(t *testing.T, s *Scanner) []string {
	t.Helper()
	files, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func Test_Scanner_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stories")
	s, err := New(dir, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be created", dir)
	}
	if names := scanNames(t, s); len(names) != 0 {
		t.Errorf("expected empty scan, got %v", names)
	}
}

func Test_Scanner_MatchesContentExtensionsOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "- title: a\n")
	writeFile(t, dir, "b.yml", "- title: b\n")
	writeFile(t, dir, "index.json", "{}")
	writeFile(t, dir, "README.md", "# readme")
	writeFile(t, dir, "notes.yaml.bak", "")
	if err := os.Mkdir(filepath.Join(dir, "dir.yaml"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "nested"), "deep.yaml", "- title: deep\n")

	s, err := New(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	names := scanNames(t, s)
	want := []string{"a.yaml", "b.yml"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("Scan() = %v, want %v", names, want)
	}
}

func Test_Scanner_RecordsSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "0123456789")
	s, _ := New(dir, Options{})
	files, err := s.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].SizeBytes != 10 {
		t.Fatalf("unexpected files: %+v", files)
	}
	if files[0].Path != filepath.Join(dir, "a.yaml") {
		t.Errorf("Path = %q", files[0].Path)
	}
}

func Test_Scanner_IgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.yaml", "")
	writeFile(t, dir, "draft_1.yaml", "")
	writeFile(t, dir, ".storyignore", "draft_*.yaml\n")

	s, err := New(dir, Options{IgnoreFile: ".storyignore"})
	if err != nil {
		t.Fatal(err)
	}
	names := scanNames(t, s)
	if len(names) != 1 || names[0] != "keep.yaml" {
		t.Errorf("Scan() = %v, want [keep.yaml]", names)
	}

	count, err := s.Count()
	if err != nil || count != 1 {
		t.Errorf("Count() = %d, %v; want 1", count, err)
	}
}

func Test_Scanner_MissingIgnoreFileIgnoresNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "draft_1.yaml", "")
	s, _ := New(dir, Options{IgnoreFile: ".storyignore"})
	if names := scanNames(t, s); len(names) != 1 {
		t.Errorf("Scan() = %v, want one file", names)
	}
}
