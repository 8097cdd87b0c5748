package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"organizer-api/internal/models"
)

var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrInvalidName     = errors.New("invalid entry name")
	ErrInvalidCategory = errors.New("invalid category name")
)

// ResolveRoot cleans a local root folder path and makes it absolute
func ResolveRoot(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return abs, nil
}

// HasPathPrefix reports whether p lies strictly inside dir, using sep as
// the path separator. Both paths must already be cleaned.
func HasPathPrefix(p, dir string, sep byte) bool {
	if dir == "" || len(p) <= len(dir) {
		return false
	}
	if !strings.HasPrefix(p, dir) {
		return false
	}
	if dir[len(dir)-1] == sep {
		return true
	}
	return p[len(dir)] == sep
}

// IsHiddenName reports whether a directory entry name starts with a dot
func IsHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ValidEntryName checks that name refers to a direct child of a folder
func ValidEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// ValidCategoryName accepts relative names such as "Images" or
// "Projects/Node.js". Absolute paths, empty segments and ".." are rejected.
func ValidCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCategory)
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidCategory, name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q escapes the root", ErrInvalidCategory, name)
		}
	}
	if strings.Contains(strings.ReplaceAll(name, `\`, "/"), "//") || strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`) {
		return fmt.Errorf("%w: %q has an empty segment", ErrInvalidCategory, name)
	}
	return nil
}

// CategorySegments splits a validated category name into path segments
func CategorySegments(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' })
}

// ExtName returns the extension of a file name including the dot.
// Dot-files such as ".gitignore" have no extension; "file." has ".".
func ExtName(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	if strings.Trim(name[:idx], ".") == "" {
		return ""
	}
	return name[idx:]
}

// ExtensionLabel is the lowercased extension used in folder summaries
func ExtensionLabel(name string) string {
	ext := strings.ToLower(ExtName(name))
	if ext == "" {
		return models.NoExtension
	}
	return ext
}
