package progresswriter

import (
	"bytes"
	"testing"
)

func TestProgressWriter_CountsBytes(t *testing.T) {
	var buf bytes.Buffer
	var calls int
	var last int64
	pw := NewProgressWriter(&buf, 10, func(written, total int64) {
		calls++
		last = written
	})

	if _, err := pw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if pw.Progress() != 50 {
		t.Errorf("Progress = %d, want 50", pw.Progress())
	}
	if _, err := pw.Write([]byte("world")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if pw.Written() != 10 || last != 10 || calls != 2 {
		t.Errorf("Written = %d, last = %d, calls = %d", pw.Written(), last, calls)
	}
	if buf.String() != "helloworld" {
		t.Errorf("buffer = %q", buf.String())
	}
}

func TestProgressWriter_ZeroTotal(t *testing.T) {
	pw := NewProgressWriter(&bytes.Buffer{}, 0, nil)
	_, _ = pw.Write([]byte("x"))
	if pw.Progress() != 0 {
		t.Errorf("Progress = %d, want 0", pw.Progress())
	}
}
