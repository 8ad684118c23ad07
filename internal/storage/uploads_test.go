package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	u := NewUploader(dir, "https://portale.example")

	t.Run("WritesUnderFolder", func(t *testing.T) {
		url, err := u.Save([]byte("pdf bytes"), "events", "locandina.pdf")
		if err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		if !strings.HasPrefix(url, "https://portale.example/uploads/events/") {
			t.Errorf("unexpected public URL %q", url)
		}
		if !strings.HasSuffix(url, ".pdf") {
			t.Errorf("expected original extension kept, got %q", url)
		}

		entries, err := os.ReadDir(filepath.Join(dir, "events"))
		if err != nil || len(entries) != 1 {
			t.Fatalf("expected one file in the folder, got %v (err %v)", entries, err)
		}
	})

	t.Run("RejectsTraversalFolder", func(t *testing.T) {
		for _, folder := range []string{"..", "../..", "a/b", `a\b`, ".", ""} {
			if _, err := u.Save([]byte("x"), folder, "f.txt"); !errors.Is(err, ErrBadFolder) {
				t.Errorf("folder %q: expected ErrBadFolder, got %v", folder, err)
			}
		}
	})
}
