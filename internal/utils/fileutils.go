package utils

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"organizer-api/pkg/progresswriter"
)

const (
	DefaultBufferSize = 64 * 1024 // 64KB buffer for file operations
)

// CopyFile copies a file from src to dst preserving mode and timestamps.
// It refuses to overwrite dst and returns the number of bytes copied.
func CopyFile(src, dst string, onProgress func(written, total int64)) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	pw := progresswriter.NewProgressWriter(dstFile, srcInfo.Size(), onProgress)
	buf := make([]byte, DefaultBufferSize)
	if _, err := io.CopyBuffer(pw, srcFile, buf); err != nil {
		return pw.Written(), fmt.Errorf("failed to copy file: %w", err)
	}

	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return pw.Written(), fmt.Errorf("failed to set timestamps: %w", err)
	}

	return pw.Written(), nil
}

// CopyDir copies a directory recursively. Symlinks are recreated, not followed.
// onProgress, when set, receives the bytes copied so far against the size
// of the whole tree.
func CopyDir(src, dst string, onProgress func(written, total int64)) (int64, error) {
	var total int64
	if onProgress != nil {
		total = GetDirectorySize(src)
	}
	var done int64
	err := copyDir(src, dst, func(n int64) {
		if onProgress != nil {
			onProgress(done+n, total)
		}
	}, &done)
	return done, err
}

func copyDir(src, dst string, report func(n int64), done *int64) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}

	if err := os.Mkdir(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return fmt.Errorf("failed to read symlink: %w", err)
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath, report, done); err != nil {
				return err
			}
		default:
			n, err := CopyFile(srcPath, dstPath, func(written, _ int64) { report(written) })
			*done += n
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// FormatFileSize formats bytes to human readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// GetDirectorySize sums the sizes of regular files under path. Unreadable
// entries are skipped.
func GetDirectorySize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
