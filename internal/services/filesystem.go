package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"organizer-api/internal/logging"
	"organizer-api/internal/utils"
)

// FileSystem is the set of operations the scanner and executor need.
// Implementations exist for the local disk and for SFTP.
type FileSystem interface {
	// ReadDirNames lists the names in dir sorted by name.
	ReadDirNames(dir string) ([]string, error)
	// Stat follows symlinks.
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
	MkdirAll(path string) error
	// Move renames src to dst and fails with ErrAlreadyExists when dst exists.
	// onCopy, which may be nil, is fed byte progress when the move has to
	// fall back to copying.
	Move(src, dst string, onCopy CopyProgressFunc) error
	// Size is the file size or the recursive sum for a folder; errors count as zero.
	Size(path string) int64
	Join(elem ...string) string
	Clean(path string) string
	Separator() byte
	IsRemote() bool
	Close() error
}

// CopyProgressFunc receives the bytes copied so far and the expected total
type CopyProgressFunc func(written, total int64)

// LocalFS operates on the local disk
type LocalFS struct{}

func NewLocalFS() *LocalFS { return &LocalFS{} }

func (LocalFS) ReadDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (LocalFS) Stat(path string) (fs.FileInfo, error)  { return os.Stat(path) }
func (LocalFS) Lstat(path string) (fs.FileInfo, error) { return os.Lstat(path) }
func (LocalFS) MkdirAll(path string) error             { return os.MkdirAll(path, 0o755) }
func (LocalFS) Join(elem ...string) string             { return filepath.Join(elem...) }
func (LocalFS) Clean(path string) string               { return filepath.Clean(path) }
func (LocalFS) Separator() byte                        { return filepath.Separator }
func (LocalFS) IsRemote() bool                         { return false }
func (LocalFS) Close() error                           { return nil }

func (LocalFS) Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}
	return utils.GetDirectorySize(path)
}

// Move renames src to dst. Across devices it copies and then removes the
// source; a failed copy leaves the source untouched.
func (l LocalFS) Move(src, dst string, onCopy CopyProgressFunc) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, dst)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return l.copyMove(src, dst, onCopy)
}

func (LocalFS) copyMove(src, dst string, onCopy CopyProgressFunc) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	var n int64
	if info.IsDir() {
		n, err = utils.CopyDir(src, dst, onCopy)
	} else {
		n, err = utils.CopyFile(src, dst, onCopy)
	}
	if err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("cross-device move failed: %w", err)
	}
	logging.Logger().Debug().Str("src", src).Str("dst", dst).Int64("bytes", n).Msg("copied across devices")

	if err := os.RemoveAll(src); err != nil {
		logging.Logger().Warn().Err(err).Str("path", src).Msg("source left behind after cross-device move")
	}
	return nil
}
