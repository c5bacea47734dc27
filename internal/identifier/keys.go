package identifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Hierarchy carries the resolved arrangement fields key derivation needs.
// Series and subseries are optional; a subseries never appears without its
// series.
type Hierarchy struct {
	CollectionID   string
	SeriesID       string
	SeriesTitle    string
	SubseriesID    string
	SubseriesTitle string
	FolderID       string
	FolderTitle    string
}

// StorageKeyPrefix derives the slash-delimited storage path for a folder.
// Omitted hierarchy levels contribute no segment, so the result never
// contains a double slash.
func StorageKeyPrefix(h Hierarchy) string {
	var b strings.Builder
	b.WriteString(h.CollectionID)
	b.WriteByte('/')
	if h.SeriesID != "" {
		b.WriteString(h.CollectionID)
		b.WriteString("-s")
		b.WriteString(padLeft(h.SeriesID, 2))
		b.WriteByte('-')
		b.WriteString(Sanitize(h.SeriesTitle))
		b.WriteByte('/')
		if h.SubseriesID != "" {
			b.WriteString(h.CollectionID)
			b.WriteString("-s")
			b.WriteString(padLeft(h.SeriesID, 2))
			b.WriteString("-ss")
			b.WriteString(padLeft(h.SubseriesID, 2))
			b.WriteByte('-')
			b.WriteString(Sanitize(h.SubseriesTitle))
			b.WriteByte('/')
		}
	}
	b.WriteString(h.FolderID)
	b.WriteByte('-')
	b.WriteString(Sanitize(h.FolderTitle))
	b.WriteByte('/')
	return b.String()
}

// FileKey derives the full storage key for one derivative. The extension is
// fixed to the lossless preservation format.
func FileKey(prefix, folderID, sequence, componentID string) string {
	return prefix + folderID + "_" + sequence + "/" + componentID + "-lossless.jp2"
}

// Sanitize folds a display string into a storage-key-safe form: combining
// marks are stripped after NFD decomposition, then every remaining
// non-alphanumeric character becomes a hyphen.
func Sanitize(value string) string {
	decomposed := norm.NFD.String(value)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
