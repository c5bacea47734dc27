package identifier

import (
	"errors"
	"strings"
	"testing"
)

func TestNewComponentIDShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewComponentID()
		if len(id) != 9 || id[4] != '-' {
			t.Fatalf("unexpected id shape: %q", id)
		}
		for _, part := range strings.Split(id, "-") {
			for _, r := range part {
				if !strings.ContainsRune(componentAlphabet, r) {
					t.Fatalf("id %q contains %q outside alphabet", id, r)
				}
			}
		}
	}
}

func TestNewComponentIDExcludesAmbiguousSymbols(t *testing.T) {
	for _, forbidden := range "ilou01" {
		if strings.ContainsRune(componentAlphabet, forbidden) {
			t.Fatalf("alphabet contains ambiguous symbol %q", forbidden)
		}
	}
	if len(componentAlphabet) != 30 {
		t.Fatalf("alphabet has %d symbols, want 30", len(componentAlphabet))
	}
}

func TestNormalizeFolderComponentID(t *testing.T) {
	got, err := NormalizeFolderComponentID("ABC_1_02", "ABC", nil)
	if err != nil {
		t.Fatalf("NormalizeFolderComponentID: %v", err)
	}
	if got != "ABC_001_02" {
		t.Fatalf("box not padded: %q", got)
	}
}

func TestNormalizeFolderComponentIDKeepsWideBox(t *testing.T) {
	got, err := NormalizeFolderComponentID("ABC_1234_02", "ABC", nil)
	if err != nil {
		t.Fatalf("NormalizeFolderComponentID: %v", err)
	}
	if got != "ABC_1234_02" {
		t.Fatalf("wide box altered: %q", got)
	}
}

func TestNormalizeFolderComponentIDRejectsBadShape(t *testing.T) {
	for _, name := range []string{"ABC", "ABC_001", "ABC_001_02_03", "ABC__02", ""} {
		if _, err := NormalizeFolderComponentID(name, "ABC", nil); !errors.Is(err, ErrInvalidDirectoryName) {
			t.Fatalf("name %q: expected ErrInvalidDirectoryName, got %v", name, err)
		}
	}
}

func TestNormalizeFolderComponentIDRejectsWrongCollection(t *testing.T) {
	_, err := NormalizeFolderComponentID("XYZ_001_02", "ABC", nil)
	if !errors.Is(err, ErrCollectionMismatch) {
		t.Fatalf("expected ErrCollectionMismatch, got %v", err)
	}
}

func TestNormalizeFolderComponentIDCollapsesLegacyNames(t *testing.T) {
	got, err := NormalizeFolderComponentID("ABC_001_02_03", "ABC", []string{"abc"})
	if err != nil {
		t.Fatalf("NormalizeFolderComponentID: %v", err)
	}
	if got != "ABC_001_02-03" {
		t.Fatalf("legacy name not collapsed: %q", got)
	}

	// Prefixes outside the collapse list keep strict three-part validation.
	if _, err := NormalizeFolderComponentID("DEF_001_02_03", "DEF", []string{"abc"}); !errors.Is(err, ErrInvalidDirectoryName) {
		t.Fatalf("expected ErrInvalidDirectoryName, got %v", err)
	}
}

func TestStorageKeyPrefixCollectionOnly(t *testing.T) {
	h := Hierarchy{CollectionID: "ABC", FolderID: "ABC_001_02", FolderTitle: "Letters, 1901"}
	got := StorageKeyPrefix(h)
	want := "ABC/ABC_001_02-Letters--1901/"
	if got != want {
		t.Fatalf("StorageKeyPrefix = %q, want %q", got, want)
	}
	if strings.Contains(got, "//") {
		t.Fatalf("double slash in %q", got)
	}
}

func TestStorageKeyPrefixWithSeries(t *testing.T) {
	h := Hierarchy{
		CollectionID: "ABC",
		SeriesID:     "5",
		SeriesTitle:  "Correspondence",
		FolderID:     "ABC_001_02",
		FolderTitle:  "Letters",
	}
	got := StorageKeyPrefix(h)
	want := "ABC/ABC-s05-Correspondence/ABC_001_02-Letters/"
	if got != want {
		t.Fatalf("StorageKeyPrefix = %q, want %q", got, want)
	}
}

func TestStorageKeyPrefixWithSubseries(t *testing.T) {
	h := Hierarchy{
		CollectionID:   "ABC",
		SeriesID:       "5",
		SeriesTitle:    "Correspondence",
		SubseriesID:    "2",
		SubseriesTitle: "Outgoing",
		FolderID:       "ABC_001_02",
		FolderTitle:    "Letters",
	}
	got := StorageKeyPrefix(h)
	want := "ABC/ABC-s05-Correspondence/ABC-s05-ss02-Outgoing/ABC_001_02-Letters/"
	if got != want {
		t.Fatalf("StorageKeyPrefix = %q, want %q", got, want)
	}
}

func TestStorageKeyPrefixIsPure(t *testing.T) {
	h := Hierarchy{
		CollectionID: "ABC",
		SeriesID:     "5",
		SeriesTitle:  "Correspondence",
		FolderID:     "ABC_001_02",
		FolderTitle:  "Letters",
	}
	first := StorageKeyPrefix(h)
	second := StorageKeyPrefix(h)
	if first != second {
		t.Fatalf("prefix not deterministic: %q vs %q", first, second)
	}
	if FileKey(first, h.FolderID, "03", "abcd-efgh") != FileKey(second, h.FolderID, "03", "abcd-efgh") {
		t.Fatal("file key not deterministic")
	}
}

func TestFileKey(t *testing.T) {
	got := FileKey("ABC/ABC_001_02-Letters/", "ABC_001_02", "03", "abcd-efgh")
	want := "ABC/ABC_001_02-Letters/ABC_001_02_03/abcd-efgh-lossless.jp2"
	if got != want {
		t.Fatalf("FileKey = %q, want %q", got, want)
	}
}

func TestSanitizeStripsDiacriticsAndPunctuation(t *testing.T) {
	cases := map[string]string{
		"Café records":    "Cafe-records",
		"Letters, 1901":   "Letters--1901",
		"Weiß & Söhne":    "Wei----Sohne",
		"already-clean-1": "already-clean-1",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
