package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with content, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSourceImage places a fake scan under the source tree at
// {sourceDir}/{collection}/{folder}/{name} and returns its path.
func WriteSourceImage(t testing.TB, sourceDir, collection, folder, name string) string {
	t.Helper()

	path := filepath.Join(sourceDir, collection, folder, name)
	WriteFile(t, path, []byte("tiff-bytes-"+name))
	return path
}
