package identifier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

// componentAlphabet is the 30-symbol set used for random component
// identifiers. Visually ambiguous characters (i, l, o, u, 0, 1) are excluded
// so identifiers survive hand transcription from physical labels.
const componentAlphabet = "23456789abcdefghjkmnpqrstvwxyz"

// Errors returned by NormalizeFolderComponentID.
var (
	ErrInvalidDirectoryName = errors.New("invalid directory name")
	ErrCollectionMismatch   = errors.New("collection mismatch")
)

// NewComponentID produces a random component identifier of the form
// "xxxx-xxxx". Identifiers are not content-derived; collision probability is
// negligible at expected record volumes.
func NewComponentID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	out := make([]byte, 0, 9)
	for i, b := range buf {
		if i == 4 {
			out = append(out, '-')
		}
		out = append(out, componentAlphabet[int(b)%len(componentAlphabet)])
	}
	return string(out)
}

// NormalizeFolderComponentID turns a folder directory name into the catalog
// component identifier it must match. The name splits into exactly three
// underscore-delimited parts (collection, box, folder); the box number is
// left-padded to three digits.
//
// Directory names whose collection prefix appears in collapse may carry a
// legacy four-part shape; the trailing two parts merge (joined by a hyphen)
// into the folder part before validation.
func NormalizeFolderComponentID(directoryName, parentDirectoryName string, collapse []string) (string, error) {
	name := strings.TrimSpace(directoryName)
	parent := strings.TrimSpace(parentDirectoryName)
	parts := strings.Split(name, "_")

	if len(parts) == 4 && collapses(parts[0], collapse) {
		parts = []string{parts[0], parts[1], parts[2] + "-" + parts[3]}
	}
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q must split into collection_box_folder", ErrInvalidDirectoryName, name)
	}
	for _, part := range parts {
		if part == "" {
			return "", fmt.Errorf("%w: %q has an empty component", ErrInvalidDirectoryName, name)
		}
	}
	if parts[0] != parent {
		return "", fmt.Errorf("%w: directory %q does not belong to collection %q", ErrCollectionMismatch, name, parent)
	}

	return fmt.Sprintf("%s_%s_%s", parts[0], padLeft(parts[1], 3), parts[2]), nil
}

func collapses(prefix string, collapse []string) bool {
	for _, candidate := range collapse {
		if strings.EqualFold(candidate, prefix) {
			return true
		}
	}
	return false
}

func padLeft(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat("0", width-len(value)) + value
}
