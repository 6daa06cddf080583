// internal/story/title.go
package story

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultVolumeLabel prefixes bare volume numbers in titles.
const DefaultVolumeLabel = "Tập"

// DefaultVolumeAbbrevs are tokens that are shouted rather than title-cased.
var DefaultVolumeAbbrevs = []string{"vol", "v"}

// Formatter turns content file names into display titles.
type Formatter struct {
	VolumeLabel   string
	VolumeAbbrevs []string
}

// DefaultFormatter uses the stock volume label and abbreviations.
var DefaultFormatter = Formatter{
	VolumeLabel:   DefaultVolumeLabel,
	VolumeAbbrevs: DefaultVolumeAbbrevs,
}

// FormatTitle formats filename with DefaultFormatter.
func FormatTitle(filename string) string {
	return DefaultFormatter.Format(filename)
}

// Format converts a file name such as "boardgame_vol_1_edit.yaml" into
// "Boardgame VOL Tập 1". Tokens are split on single spaces so runs of
// separators survive as empty tokens.
func (f Formatter) Format(filename string) string {
	name := strings.ReplaceAll(TrimExt(filename), EditMarker, "")
	name = strings.ReplaceAll(name, "_", " ")

	words := strings.Split(name, " ")
	for i, word := range words {
		switch {
		case f.isAbbrev(word):
			words[i] = strings.ToUpper(word)
		case isVolumeNumber(word):
			words[i] = f.label() + " " + word
		default:
			words[i] = capitalize(word)
		}
	}
	return strings.Join(words, " ")
}

func (f Formatter) label() string {
	if f.VolumeLabel == "" {
		return DefaultVolumeLabel
	}
	return f.VolumeLabel
}

func (f Formatter) isAbbrev(word string) bool {
	lower := strings.ToLower(word)
	for _, abbrev := range f.VolumeAbbrevs {
		if lower == strings.ToLower(abbrev) {
			return true
		}
	}
	return false
}

// isVolumeNumber accepts "3" and "3.5": digits with at most one decimal point.
func isVolumeNumber(word string) bool {
	if strings.Count(word, ".") > 1 {
		return false
	}
	digits := strings.Replace(word, ".", "", 1)
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
