// internal/builder/write.go
package builder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"storyidx/internal/util"
)

// WriteIndex serializes idx as indented JSON and replaces the file at path.
// Non-ASCII text and HTML characters are written as-is.
func WriteIndex(path string, idx *Index) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return util.WriteFileAtomic(path, buf.Bytes(), 0644)
}
