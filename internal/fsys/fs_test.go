package fsys_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"filesorter/internal/fsys"
)

func TestMoveRefusesToOverwrite(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/t/a.txt", []byte("new"), 0o644); err != nil {
		t.Fatalf("write a.txt: %v", err)
	}
	if err := afero.WriteFile(mem, "/t/Docs/a.txt", []byte("old"), 0o644); err != nil {
		t.Fatalf("write Docs/a.txt: %v", err)
	}

	err := fsys.New(mem).Move("/t/a.txt", "/t/Docs/a.txt")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist, got %v", err)
	}
	data, err := afero.ReadFile(mem, "/t/Docs/a.txt")
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "old" {
		t.Fatalf("destination was overwritten: %q", data)
	}
}

func TestMoveRelocatesFile(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/t/a.txt", []byte("payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mem.MkdirAll("/t/Docs", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	filesystem := fsys.New(mem)
	if err := filesystem.Move("/t/a.txt", "/t/Docs/a.txt"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if ok, _ := filesystem.Exists("/t/a.txt"); ok {
		t.Fatal("expected source to be gone")
	}
	if ok, _ := filesystem.Exists("/t/Docs/a.txt"); !ok {
		t.Fatal("expected destination to exist")
	}
}

func TestReadDirSortedByName(t *testing.T) {
	mem := afero.NewMemMapFs()
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		if err := afero.WriteFile(mem, filepath.Join("/t", name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	entries, err := fsys.New(mem).ReadDir("/t")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if len(names) != 3 || names[0] != "a.txt" || names[1] != "b.txt" || names[2] != "c.txt" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestRemoveEmptyDir(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := mem.MkdirAll("/t/Empty", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(mem, "/t/Full/keep.txt", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	filesystem := fsys.New(mem)

	removed, err := filesystem.RemoveEmptyDir("/t/Empty")
	if err != nil || !removed {
		t.Fatalf("expected empty dir removal, removed=%v err=%v", removed, err)
	}
	removed, err = filesystem.RemoveEmptyDir("/t/Full")
	if err != nil || removed {
		t.Fatalf("expected non-empty dir to remain, removed=%v err=%v", removed, err)
	}
	removed, err = filesystem.RemoveEmptyDir("/t/Missing")
	if err != nil || removed {
		t.Fatalf("expected missing dir to be ignored, removed=%v err=%v", removed, err)
	}
}
