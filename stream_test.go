package filesim_test

import (
	"errors"
	"testing"

	"github.com/nvoss/filesim"
)

func TestWriteSeekReadRoundTrip(t *testing.T) {
	fsys := newFS(t)

	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fd, err := fsys.OpenStream("a", filesim.RootInode)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}

	want := []byte("hello world")
	n, err := fsys.Write(fd, want)
	if err != nil {
		t.Fatalf("Write: %s", err)
	}
	if n != len(want) {
		t.Fatalf("Write returned %d, want %d", n, len(want))
	}

	if err := fsys.Seek(fd, 0, filesim.SeekStart); err != nil {
		t.Fatalf("Seek: %s", err)
	}
	got, err := fsys.Read(fd, len(want))
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	if string(got) != string(want) {
		t.Errorf("Read = %q, want %q", got, want)
	}
	fsys.Close(fd)
}

func TestWriteCrossesBlockBoundary(t *testing.T) {
	fsys := newFS(t)

	if _, err := fsys.CreateFile("big", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fd, err := fsys.OpenStream("big", filesim.RootInode)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}

	payload := make([]byte, filesim.BlockSize+100)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}
	if _, err := fsys.Write(fd, payload); err != nil {
		t.Fatalf("Write: %s", err)
	}

	if err := fsys.Seek(fd, 0, filesim.SeekStart); err != nil {
		t.Fatalf("Seek: %s", err)
	}
	got, err := fsys.Read(fd, len(payload))
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	if string(got) != string(payload) {
		t.Errorf("cross-block content mismatch at length %d", len(got))
	}
	fsys.Close(fd)
}

func TestWriteGrowsDirectorySizeUpToRoot(t *testing.T) {
	fsys := newFS(t)

	home, err := fsys.CreateDirectory("home", filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateDirectory: %s", err)
	}
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, home); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fd, err := fsys.OpenStream("a", home)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}
	if _, err := fsys.Write(fd, []byte("hello")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	fsys.Close(fd)

	homeIno, err := fsys.Stat(home)
	if err != nil {
		t.Fatalf("Stat(home): %s", err)
	}
	if homeIno.Size != 5 {
		t.Errorf("home.Size = %d, want 5", homeIno.Size)
	}
	rootIno, err := fsys.Stat(filesim.RootInode)
	if err != nil {
		t.Fatalf("Stat(root): %s", err)
	}
	if rootIno.Size != 5 {
		t.Errorf("root.Size = %d, want 5", rootIno.Size)
	}
}

func TestAppendWriteExtendsContent(t *testing.T) {
	fsys := newFS(t)
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fd, err := fsys.OpenStream("a", filesim.RootInode)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}
	if _, err := fsys.Write(fd, []byte("hello")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := fsys.Seek(fd, 0, filesim.SeekEnd); err != nil {
		t.Fatalf("Seek(end): %s", err)
	}
	if _, err := fsys.Write(fd, []byte(" world")); err != nil {
		t.Fatalf("Write(append): %s", err)
	}
	fsys.Close(fd)

	ino, err := fsys.Stat(fsys.Find(filesim.RootInode, "a"))
	if err != nil {
		t.Fatalf("Stat: %s", err)
	}
	if ino.Size != 11 {
		t.Errorf("Size = %d, want 11", ino.Size)
	}

	fd2, err := fsys.OpenStream("a", filesim.RootInode)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}
	defer fsys.Close(fd2)
	got, err := fsys.Read(fd2, 11)
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	if string(got) != "hello world" {
		t.Errorf("content = %q, want %q", got, "hello world")
	}
}

func TestCloseInvalidatesDescriptor(t *testing.T) {
	fsys := newFS(t)
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fd, err := fsys.OpenStream("a", filesim.RootInode)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}
	if err := fsys.Close(fd); err != nil {
		t.Fatalf("Close: %s", err)
	}
	if _, err := fsys.Read(fd, 1); !errors.Is(err, filesim.ErrInvalidDescriptor) {
		t.Errorf("Read after Close error = %v, want ErrInvalidDescriptor", err)
	}
}
