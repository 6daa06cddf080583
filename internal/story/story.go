// internal/story/story.go
package story

import "strings"

// EditMarker is the suffix editors append to reworked story files,
// e.g. "boardgame_vol_1_edit.yaml".
const EditMarker = "_edit"

// Extensions lists the recognized content file extensions in lookup order.
var Extensions = []string{".yaml", ".yml"}

// Story is one content file as it appears in the generated index.
// Optional fields are pointers or omitempty so that a degraded record
// (a file that could not be parsed) carries only what is known about it.
// Chapters and FirstChapterTitle are set for every parsed file, even when
// the title is empty.
type Story struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	FileName          string `json:"fileName"`
	Size              string `json:"size"`
	SizeBytes         int64  `json:"sizeBytes"`
	SizeKB            int64  `json:"sizeKB"`
	Chapters          *int   `json:"chapters,omitempty"`
	FirstChapterTitle *string `json:"firstChapterTitle,omitempty"`
	IsLarge           bool   `json:"isLarge"`
	Description       string `json:"description,omitempty"`
	HasRaw            bool   `json:"hasRaw"`
	RawFileName       string `json:"rawFileName,omitempty"`
	Series            string `json:"series,omitempty"`
}

// Degraded reports whether the story was indexed without chapter metadata.
func (s Story) Degraded() bool {
	return s.Chapters == nil
}

// ID derives the stable external identifier for a content file name.
func ID(filename string) string {
	id := filename
	for _, ext := range Extensions {
		id = strings.ReplaceAll(id, ext, "")
	}
	return strings.ReplaceAll(id, EditMarker, "")
}

// TrimExt removes a recognized content extension from the end of filename.
func TrimExt(filename string) string {
	for _, ext := range Extensions {
		if strings.HasSuffix(filename, ext) {
			return strings.TrimSuffix(filename, ext)
		}
	}
	return filename
}
