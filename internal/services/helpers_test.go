package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates each relative path under root with its content. A
// trailing slash creates a directory.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// copyingFS always moves by copy and delete, as LocalFS does across devices
type copyingFS struct {
	LocalFS
	afterCopy func()
}

func (c copyingFS) Move(src, dst string, onCopy CopyProgressFunc) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, dst)
	}
	err := c.copyMove(src, dst, onCopy)
	if c.afterCopy != nil {
		c.afterCopy()
	}
	return err
}
