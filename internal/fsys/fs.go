package fsys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// FS is the set of filesystem operations the organizer depends on.
type FS interface {
	// ReadDir lists the direct children of dir sorted by name.
	ReadDir(dir string) ([]fs.FileInfo, error)
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string) error
	// Move relocates a file and refuses to replace an existing destination.
	Move(src, dst string) error
	// RemoveEmptyDir deletes dir only when it has no entries. It reports
	// whether the directory was removed.
	RemoveEmptyDir(dir string) (bool, error)
}

// Afero adapts an afero.Fs to FS.
type Afero struct {
	fs afero.Fs
}

// New wraps the provided afero filesystem.
func New(base afero.Fs) *Afero {
	if base == nil {
		base = afero.NewOsFs()
	}
	return &Afero{fs: base}
}

// OS returns an FS backed by the host filesystem.
func OS() *Afero {
	return New(afero.NewOsFs())
}

// Memory returns an FS backed by an in-memory tree.
func Memory() *Afero {
	return New(afero.NewMemMapFs())
}

// Afero exposes the underlying afero filesystem.
func (a *Afero) Afero() afero.Fs {
	return a.fs
}

func (a *Afero) ReadDir(dir string) ([]fs.FileInfo, error) {
	entries, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (a *Afero) Stat(path string) (fs.FileInfo, error) {
	return a.fs.Stat(path)
}

func (a *Afero) Exists(path string) (bool, error) {
	if lstater, ok := a.fs.(afero.Lstater); ok {
		_, _, err := lstater.LstatIfPossible(path)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return afero.Exists(a.fs, path)
}

func (a *Afero) MkdirAll(path string) error {
	return a.fs.MkdirAll(path, 0o755)
}

func (a *Afero) Move(src, dst string) error {
	exists, err := a.Exists(dst)
	if err != nil {
		return err
	}
	if exists {
		return &fs.PathError{Op: "move", Path: dst, Err: fs.ErrExist}
	}
	renameErr := a.fs.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, unix.EXDEV) {
		return renameErr
	}
	if err := a.copyFile(src, dst); err != nil {
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := a.fs.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func (a *Afero) RemoveEmptyDir(dir string) (bool, error) {
	info, err := a.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}
	empty, err := afero.IsEmpty(a.fs, dir)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	if err := a.fs.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}

// copyFile copies src to dst, verifying both size and content hash.
func (a *Afero) copyFile(src, dst string) error {
	srcInfo, err := a.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := a.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := a.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := a.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		_ = a.fs.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = a.fs.Remove(dst)
		return err
	}
	if written != srcInfo.Size() {
		_ = a.fs.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	dstSum, err := a.hashFile(dst)
	if err != nil {
		_ = a.fs.Remove(dst)
		return fmt.Errorf("verify copy: %w", err)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		_ = a.fs.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	_ = a.fs.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
	return nil
}

func (a *Afero) hashFile(path string) ([]byte, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
