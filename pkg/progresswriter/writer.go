package progresswriter

import (
	"io"
	"sync/atomic"
)

// ProgressWriter wraps an io.Writer to track bytes written
type ProgressWriter struct {
	writer     io.Writer
	total      int64
	written    int64
	onProgress func(written, total int64)
}

// NewProgressWriter creates a new progress tracking writer. onProgress may be nil.
func NewProgressWriter(writer io.Writer, total int64, onProgress func(written, total int64)) *ProgressWriter {
	return &ProgressWriter{
		writer:     writer,
		total:      total,
		onProgress: onProgress,
	}
}

// Write implements io.Writer
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	if n > 0 {
		written := atomic.AddInt64(&pw.written, int64(n))
		if pw.onProgress != nil {
			pw.onProgress(written, pw.total)
		}
	}
	return n, err
}

// Written returns total bytes written
func (pw *ProgressWriter) Written() int64 {
	return atomic.LoadInt64(&pw.written)
}

// Progress returns current progress percentage
func (pw *ProgressWriter) Progress() int {
	if pw.total == 0 {
		return 0
	}
	return int((pw.Written() * 100) / pw.total)
}
