package filesim_test

import (
	"errors"
	"testing"

	"github.com/nvoss/filesim"
)

func newFS(t *testing.T) *filesim.FS {
	t.Helper()
	chdirTemp(t)
	fsys, err := filesim.New("fs.img")
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	t.Cleanup(func() { fsys.Close() })
	return fsys
}

func TestCreateFileRejectsNameClash(t *testing.T) {
	fsys := newFS(t)
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); !errors.Is(err, filesim.ErrExists) {
		t.Errorf("second CreateFile error = %v, want ErrExists", err)
	}
}

func TestCreateDeleteFileRoundTrip(t *testing.T) {
	fsys := newFS(t)

	inode, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	if err := fsys.DeleteFile("a", filesim.RootInode); err != nil {
		t.Fatalf("DeleteFile: %s", err)
	}

	// The freed inode slot must be reusable: a subsequent create should
	// land on the same index, proving the pools returned to their
	// pre-call state.
	again, err := fsys.CreateFile("b", filesim.Perm{'r', 'w', '-'}, filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateFile after delete: %s", err)
	}
	if again != inode {
		t.Errorf("reused inode = %d, want %d", again, inode)
	}

	if _, err := fsys.Stat(inode); err != nil {
		// inode index was reassigned to "b", so Stat must succeed and
		// describe the new file, not error as if still free.
		t.Errorf("Stat(reused inode) failed: %s", err)
	}
}

func TestDeleteFileWrongType(t *testing.T) {
	fsys := newFS(t)
	if _, err := fsys.CreateDirectory("d", filesim.RootInode); err != nil {
		t.Fatalf("CreateDirectory: %s", err)
	}
	if err := fsys.DeleteFile("d", filesim.RootInode); !errors.Is(err, filesim.ErrWrongType) {
		t.Errorf("DeleteFile(dir) error = %v, want ErrWrongType", err)
	}
}

func TestDeleteDirectoryRecursive(t *testing.T) {
	fsys := newFS(t)

	d, err := fsys.CreateDirectory("d", filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateDirectory: %s", err)
	}
	if _, err := fsys.CreateFile("x", filesim.Perm{'r', 'w', '-'}, d); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	if _, err := fsys.CreateDirectory("sub", d); err != nil {
		t.Fatalf("CreateDirectory(sub): %s", err)
	}

	if err := fsys.DeleteDirectory("d", filesim.RootInode); err != nil {
		t.Fatalf("DeleteDirectory: %s", err)
	}

	entries, err := fsys.ReadDir(filesim.RootInode)
	if err != nil {
		t.Fatalf("ReadDir: %s", err)
	}
	if len(entries) != 0 {
		t.Errorf("root entries after DeleteDirectory = %+v, want none", entries)
	}
}

func TestMoveFileAndDirectory(t *testing.T) {
	fsys := newFS(t)

	home, err := fsys.CreateDirectory("home", filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateDirectory(home): %s", err)
	}
	usr, err := fsys.CreateDirectory("usr", filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateDirectory(usr): %s", err)
	}
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, home); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}

	if err := fsys.MoveFile("a", home, usr); err != nil {
		t.Fatalf("MoveFile: %s", err)
	}
	if fsys.Find(home, "a") != filesim.None {
		t.Errorf("a still present in home after move")
	}
	if fsys.Find(usr, "a") == filesim.None {
		t.Errorf("a missing from usr after move")
	}

	sub, err := fsys.CreateDirectory("sub", home)
	if err != nil {
		t.Fatalf("CreateDirectory(sub): %s", err)
	}
	if err := fsys.MoveDirectory("sub", home, usr); err != nil {
		t.Fatalf("MoveDirectory: %s", err)
	}
	ino, err := fsys.Stat(sub)
	if err != nil {
		t.Fatalf("Stat(sub): %s", err)
	}
	if ino.Parent != usr {
		t.Errorf("sub.Parent = %d, want %d", ino.Parent, usr)
	}
}

func TestHardLinkSharesInodeAndSurvivesOneRemoval(t *testing.T) {
	fsys := newFS(t)

	home, err := fsys.CreateDirectory("home", filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateDirectory: %s", err)
	}
	a, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, home)
	if err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fd, err := fsys.OpenStream("a", home)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}
	if _, err := fsys.Write(fd, []byte("hello world")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	fsys.Close(fd)

	if err := fsys.CreateHardLink("b", "a", home, home); err != nil {
		t.Fatalf("CreateHardLink: %s", err)
	}

	ino, err := fsys.Stat(a)
	if err != nil {
		t.Fatalf("Stat: %s", err)
	}
	if ino.LinkCount != 2 {
		t.Errorf("LinkCount = %d, want 2", ino.LinkCount)
	}

	if err := fsys.DeleteFile("a", home); err != nil {
		t.Fatalf("DeleteFile(a): %s", err)
	}

	fd2, err := fsys.OpenStream("b", home)
	if err != nil {
		t.Fatalf("OpenStream(b) after removing a: %s", err)
	}
	defer fsys.Close(fd2)
	data, err := fsys.Read(fd2, len("hello world"))
	if err != nil {
		t.Fatalf("Read(b): %s", err)
	}
	if string(data) != "hello world" {
		t.Errorf("Read(b) = %q, want %q", data, "hello world")
	}
}

func TestCopyFileMatchesSourceContent(t *testing.T) {
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
	if _, err := fsys.Write(fd, []byte("hello world")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	fsys.Close(fd)

	if _, err := fsys.CopyFile("a", "x", home, home); err != nil {
		t.Fatalf("CopyFile: %s", err)
	}

	srcFD, err := fsys.OpenStream("a", home)
	if err != nil {
		t.Fatalf("OpenStream(a): %s", err)
	}
	defer fsys.Close(srcFD)
	srcData, err := fsys.Read(srcFD, len("hello world"))
	if err != nil {
		t.Fatalf("Read(a): %s", err)
	}

	dstFD, err := fsys.OpenStream("x", home)
	if err != nil {
		t.Fatalf("OpenStream(x): %s", err)
	}
	defer fsys.Close(dstFD)
	dstData, err := fsys.Read(dstFD, len("hello world"))
	if err != nil {
		t.Fatalf("Read(x): %s", err)
	}

	if string(srcData) != string(dstData) {
		t.Errorf("copy content = %q, want %q", dstData, srcData)
	}
}

func TestSymlinkRejectsDanglingTarget(t *testing.T) {
	fsys := newFS(t)
	_, err := fsys.CreateSymbolicLink("broken", "does-not-exist", filesim.RootInode)
	if !errors.Is(err, filesim.ErrNotFound) {
		t.Errorf("CreateSymbolicLink(dangling) error = %v, want ErrNotFound", err)
	}
}

func TestChangePermissions(t *testing.T) {
	fsys := newFS(t)
	if _, err := fsys.CreateFile("a", filesim.Perm{'r', 'w', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	if err := fsys.ChangePermissions("a", filesim.Perm{'r', '-', '-'}, filesim.RootInode); err != nil {
		t.Fatalf("ChangePermissions: %s", err)
	}
	inode := fsys.Find(filesim.RootInode, "a")
	ino, err := fsys.Stat(inode)
	if err != nil {
		t.Fatalf("Stat: %s", err)
	}
	if ino.Permissions.String() != "r--" {
		t.Errorf("Permissions = %s, want r--", ino.Permissions)
	}
}
