package services

import (
	"errors"
	"io"
	"net"
	"os"
	"path"
	"testing"

	"github.com/pkg/sftp"
)

// refusingCmder rejects the listed SFTP commands and forwards the rest
type refusingCmder struct {
	sftp.FileCmder
	refuse []string
}

func (c refusingCmder) Filecmd(r *sftp.Request) error {
	for _, m := range c.refuse {
		if r.Method == m {
			return os.ErrPermission
		}
	}
	return c.FileCmder.Filecmd(r)
}

// newMemSFTP serves an in-memory tree over a pipe
func newMemSFTP(t *testing.T, refuse ...string) *SFTPFS {
	t.Helper()
	handlers := sftp.InMemHandler()
	handlers.FileCmd = refusingCmder{FileCmder: handlers.FileCmd, refuse: refuse}

	serverConn, clientConn := net.Pipe()
	server := sftp.NewRequestServer(serverConn, handlers)
	go func() { _ = server.Serve() }()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	if err != nil {
		t.Fatalf("NewClientPipe: %v", err)
	}
	fs := &SFTPFS{sftpClient: client}
	t.Cleanup(func() {
		_ = fs.Close()
		_ = server.Close()
	})
	return fs
}

func writeRemote(t *testing.T, fs *SFTPFS, files map[string]string) {
	t.Helper()
	for p, content := range files {
		if err := fs.sftpClient.MkdirAll(path.Dir(p)); err != nil {
			t.Fatalf("mkdir for %s: %v", p, err)
		}
		f, err := fs.sftpClient.Create(p)
		if err != nil {
			t.Fatalf("create %s: %v", p, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		f.Close()
	}
}

func readRemote(t *testing.T, fs *SFTPFS, p string) string {
	t.Helper()
	f, err := fs.sftpClient.Open(p)
	if err != nil {
		t.Fatalf("open %s: %v", p, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

func TestSFTPFS_MoveRename(t *testing.T) {
	fs := newMemSFTP(t)
	writeRemote(t, fs, map[string]string{"/a.txt": "hello", "/taken.txt": "x"})

	if err := fs.Move("/a.txt", "/taken.txt", nil); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Move onto existing file: err = %v", err)
	}
	if err := fs.Move("/a.txt", "/b.txt", nil); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := readRemote(t, fs, "/b.txt"); got != "hello" {
		t.Errorf("b.txt = %q", got)
	}
}

func TestSFTPFS_MoveFolderByCopy(t *testing.T) {
	fs := newMemSFTP(t, "Rename")
	writeRemote(t, fs, map[string]string{
		"/src/x.txt":     "abc",
		"/src/sub/y.txt": "de",
	})

	var written, total int64
	err := fs.Move("/src", "/dst", func(w, tot int64) { written, total = w, tot })
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := readRemote(t, fs, "/dst/sub/y.txt"); got != "de" {
		t.Errorf("dst/sub/y.txt = %q", got)
	}
	if _, err := fs.Lstat("/src"); err == nil {
		t.Error("source folder still present")
	}
	if written != 5 || total != 5 {
		t.Errorf("progress = %d/%d, want 5/5", written, total)
	}
}

func TestSFTPFS_MoveKeepsCopyWhenSourceRemovalFails(t *testing.T) {
	fs := newMemSFTP(t, "Rename", "Remove")
	writeRemote(t, fs, map[string]string{"/a.txt": "hello"})

	if err := fs.Move("/a.txt", "/b.txt", nil); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := readRemote(t, fs, "/b.txt"); got != "hello" {
		t.Errorf("b.txt = %q", got)
	}
	if _, err := fs.Lstat("/a.txt"); err != nil {
		t.Errorf("source should be left in place: %v", err)
	}
}
