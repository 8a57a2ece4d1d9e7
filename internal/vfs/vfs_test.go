package vfs

import (
	"errors"
	"testing"

	"mazkernel/internal/kerrors"
)

func TestNewSeedsTree(t *testing.T) {
	v := New()

	for _, dir := range []string{"/dev", "/tmp", "/home"} {
		if _, err := v.Open(dir, 0, 0); err != nil {
			t.Errorf("seed directory %s missing: %v", dir, err)
		}
	}
	if _, err := v.Open("/hello.txt", 0, 0); err != nil {
		t.Errorf("seed file /hello.txt missing: %v", err)
	}
}

// TestCreateWriteReadBackAndListDir exercises the full create/open/write/
// read/list_dir round trip on a single file.
func TestCreateWriteReadBackAndListDir(t *testing.T) {
	v := New()

	if _, err := v.Create("/tmp/a.txt", 0o600); err != nil {
		t.Fatalf("Create: %v", err)
	}

	fd, err := v.Open("/tmp/a.txt", 0, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n, err := v.Write(fd, []byte("hello")); err != nil || n != 5 {
		t.Fatalf("Write = %d, %v, want 5, nil", n, err)
	}

	fd2, err := v.Open("/tmp/a.txt", 0, 0)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	buf := make([]byte, 5)
	if n, err := v.Read(fd2, buf); err != nil || n != 5 || string(buf) != "hello" {
		t.Fatalf("Read = %d %q %v, want 5 \"hello\" nil", n, buf, err)
	}

	names, err := v.ListDir("/tmp")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	found := false
	for _, n := range names {
		if n == "a.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("ListDir(/tmp) = %v, want to contain a.txt", names)
	}
}

// TestOpenFileTableExhaustionAndReuse fills the open-file table to its
// limit, confirms the next open fails, then confirms closing one
// descriptor frees a slot for reuse.
func TestOpenFileTableExhaustionAndReuse(t *testing.T) {
	v := New()
	v.Create("/tmp/many.txt", 0o600)

	fds := make([]int, 0, MaxOpenFiles)
	for i := 0; i < MaxOpenFiles; i++ {
		fd, err := v.Open("/tmp/many.txt", 0, 0)
		if err != nil {
			t.Fatalf("open %d: unexpected error: %v", i, err)
		}
		fds = append(fds, fd)
	}

	if _, err := v.Open("/tmp/many.txt", 0, 0); err == nil {
		t.Fatal("expected the 1025th open to fail")
	}

	if err := v.Close(fds[0]); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := v.Open("/tmp/many.txt", 0, 0); err != nil {
		t.Errorf("expected open to succeed after closing one descriptor: %v", err)
	}
}

// TestCloseTwiceReturnsErrorOnSecondCall confirms closing a descriptor
// twice fails the second time: the first Close succeeds, the second finds
// the fd no longer open.
func TestCloseTwiceReturnsErrorOnSecondCall(t *testing.T) {
	v := New()
	v.Create("/tmp/twice.txt", 0o600)

	fd, err := v.Open("/tmp/twice.txt", 0, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := v.Close(fd); err != nil {
		t.Fatalf("first Close: %v", err)
	}

	if err := v.Close(fd); err == nil {
		t.Error("second Close on the same fd: expected an error, got nil")
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	v := New()
	v.Create("/tmp/dup.txt", 0o600)

	if _, err := v.Create("/tmp/dup.txt", 0o600); !errors.Is(err, kerrors.ErrExists) {
		t.Errorf("duplicate create = %v, want ErrExists", err)
	}
}

func TestWriteRejectsWithoutWriteBit(t *testing.T) {
	v := New()
	v.Create("/tmp/ro.txt", 0o400) // read-only

	fd, _ := v.Open("/tmp/ro.txt", 0, 0)
	if _, err := v.Write(fd, []byte("x")); !errors.Is(err, kerrors.ErrPermission) {
		t.Errorf("write to read-only file = %v, want ErrPermission", err)
	}
}

func TestWriteRejectsExceedingMaxFileSize(t *testing.T) {
	v := New()
	v.Create("/tmp/big.txt", 0o600)
	fd, _ := v.Open("/tmp/big.txt", 0, 0)

	if _, err := v.Write(fd, make([]byte, MaxFileSize+1)); !errors.Is(err, kerrors.ErrExhausted) {
		t.Errorf("oversized write = %v, want ErrExhausted", err)
	}
}

func TestTraverseRejectsNonDirectorySegment(t *testing.T) {
	v := New()
	v.Create("/tmp/file.txt", 0o600)

	if _, err := v.Open("/tmp/file.txt/sub", 0, 0); err == nil {
		t.Error("expected error resolving through a non-directory segment")
	}
}

func TestCreateFileConvenienceWrapper(t *testing.T) {
	v := New()
	if err := v.CreateFile("/tmp/seeded.txt", 0o600, []byte("data")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	fd, _ := v.Open("/tmp/seeded.txt", 0, 0)
	buf := make([]byte, 4)
	if n, err := v.Read(fd, buf); err != nil || string(buf[:n]) != "data" {
		t.Errorf("Read after CreateFile = %q, %v, want \"data\"", buf[:n], err)
	}
}
