package services

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"organizer-api/internal/logging"
	"organizer-api/pkg/progresswriter"
)

// SSHConfig holds SSH connection details
type SSHConfig struct {
	Host       string
	Port       string
	Username   string
	PrivateKey string
}

// SFTPFS operates on a remote host over SFTP. Paths use forward slashes.
type SFTPFS struct {
	sshClient  *ssh.Client
	sftpClient *sftp.Client
}

// NewSFTPFS dials the host described by cfg
func NewSFTPFS(cfg *SSHConfig) (*SFTPFS, error) {
	signer, err := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse private key: %v", ErrSSHConnection, err)
	}

	clientCfg := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: verify against a configured known_hosts file
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSSHConnection, err)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to create SFTP client: %v", ErrSSHConnection, err)
	}

	return &SFTPFS{sshClient: client, sftpClient: sftpClient}, nil
}

// Close closes SSH connections
func (s *SFTPFS) Close() error {
	if s.sftpClient != nil {
		s.sftpClient.Close()
	}
	if s.sshClient != nil {
		return s.sshClient.Close()
	}
	return nil
}

func (s *SFTPFS) ReadDirNames(dir string) ([]string, error) {
	entries, err := s.sftpClient.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *SFTPFS) Stat(p string) (fs.FileInfo, error)  { return s.sftpClient.Stat(p) }
func (s *SFTPFS) Lstat(p string) (fs.FileInfo, error) { return s.sftpClient.Lstat(p) }
func (s *SFTPFS) MkdirAll(p string) error             { return s.sftpClient.MkdirAll(p) }
func (s *SFTPFS) Join(elem ...string) string          { return path.Join(elem...) }
func (s *SFTPFS) Clean(p string) string               { return path.Clean(p) }
func (s *SFTPFS) Separator() byte                     { return '/' }
func (s *SFTPFS) IsRemote() bool                      { return true }

func (s *SFTPFS) Size(p string) int64 {
	var size int64
	walker := s.sftpClient.Walk(p)
	for walker.Step() {
		if walker.Err() != nil {
			continue
		}
		if info := walker.Stat(); info.Mode().IsRegular() {
			size += info.Size()
		}
	}
	return size
}

// Move uses SFTP rename, which never replaces an existing target. When the
// server refuses the rename it falls back to copy and delete.
func (s *SFTPFS) Move(src, dst string, onCopy CopyProgressFunc) error {
	if _, err := s.sftpClient.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, dst)
	}

	if err := s.sftpClient.Rename(src, dst); err == nil {
		return nil
	}

	info, err := s.sftpClient.Lstat(src)
	if err != nil {
		return err
	}

	total := info.Size()
	if info.IsDir() {
		total = s.Size(src)
	}
	var done int64
	report := func(n int64) {
		if onCopy != nil {
			onCopy(done+n, total)
		}
	}

	if info.IsDir() {
		err = s.copyDir(src, dst, report, &done)
	} else {
		err = s.copyFile(src, dst, report, &done)
	}
	if err != nil {
		_ = s.removeAll(dst)
		return fmt.Errorf("remote move failed: %w", err)
	}

	if err := s.removeAll(src); err != nil {
		logging.Logger().Warn().Err(err).Str("path", src).Msg("source left behind after remote move")
	}
	return nil
}

func (s *SFTPFS) copyFile(src, dst string, report func(n int64), done *int64) error {
	srcFile, err := s.sftpClient.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := s.sftpClient.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	pw := progresswriter.NewProgressWriter(dstFile, 0, func(written, _ int64) { report(written) })
	_, err = io.Copy(pw, srcFile)
	*done += pw.Written()
	return err
}

func (s *SFTPFS) copyDir(src, dst string, report func(n int64), done *int64) error {
	if err := s.sftpClient.Mkdir(dst); err != nil {
		return err
	}

	entries, err := s.sftpClient.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := path.Join(src, entry.Name())
		dstPath := path.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := s.copyDir(srcPath, dstPath, report, done); err != nil {
				return err
			}
		} else {
			if err := s.copyFile(srcPath, dstPath, report, done); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SFTPFS) removeAll(p string) error {
	info, err := s.sftpClient.Lstat(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return s.sftpClient.Remove(p)
	}

	entries, err := s.sftpClient.ReadDir(p)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.removeAll(path.Join(p, entry.Name())); err != nil {
			return err
		}
	}
	return s.sftpClient.RemoveDirectory(p)
}
