package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_RealFS_WriteFileAtomic_Replaces_Existing_Content_When_File_Exists(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "entry.record")

	if err := os.WriteFile(path, []byte("old content that is longer"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	err := fs.WriteFileAtomic(path, []byte("new"), 0o644)
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, want := string(got), "new"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}

func Test_RealFS_WriteFileAtomic_Leaves_No_Temp_Files_When_Write_Succeeds(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := t.TempDir()

	err := fs.WriteFileAtomic(filepath.Join(dir, "entry.record"), []byte("data"), 0o644)
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if got, want := len(entries), 1; got != want {
		t.Fatalf("entries=%d, want=%d (%v)", got, want, entries)
	}
}

func Test_RealFS_WriteFileAtomic_Applies_Perm_When_File_Is_New(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "entry.record")

	err := fs.WriteFileAtomic(path, []byte("data"), 0o640)
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o640); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}

func Test_RealFS_ReadFile_Returns_ErrNotExist_When_Path_Does_Not_Exist(t *testing.T) {
	t.Parallel()

	fs := NewReal()

	_, err := fs.ReadFile(filepath.Join(t.TempDir(), "missing.record"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want=%v", err, os.ErrNotExist)
	}
}

func Test_RealFS_TryLock_Returns_ErrLocked_When_Lock_Is_Held(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), ".lock")

	held, err := fs.TryLock(path)
	if err != nil {
		t.Fatalf("first TryLock: %v", err)
	}

	_, err = fs.TryLock(path)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("err=%v, want=%v", err, ErrLocked)
	}

	if err := held.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again, err := fs.TryLock(path)
	if err != nil {
		t.Fatalf("TryLock after release: %v", err)
	}

	_ = again.Close()
}

func Test_RealFS_Lock_Close_Is_Idempotent(t *testing.T) {
	t.Parallel()

	fs := NewReal()

	lock, err := fs.TryLock(filepath.Join(t.TempDir(), ".lock"))
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}

	if err := lock.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}

	if err := lock.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
