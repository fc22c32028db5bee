package filesim_test

import (
	"os"
	"testing"

	"github.com/nvoss/filesim"
)

// chdirTemp switches the process into a fresh temporary directory for the
// duration of the test, so filesystem.img and log.txt land somewhere
// disposable instead of the repository root.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %s", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %s", err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
	return dir
}

func TestOpenInitializesRoot(t *testing.T) {
	chdirTemp(t)

	fsys, err := filesim.New("fs.img")
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	defer fsys.Close()

	if fsys.CurrentDir() != filesim.RootInode {
		t.Errorf("CurrentDir = %d, want root", fsys.CurrentDir())
	}

	abs, err := fsys.Abs(filesim.RootInode)
	if err != nil {
		t.Fatalf("Abs: %s", err)
	}
	if abs != "/" {
		t.Errorf("Abs(root) = %q, want /", abs)
	}

	entries, err := fsys.ReadDir(filesim.RootInode)
	if err != nil {
		t.Fatalf("ReadDir: %s", err)
	}
	if len(entries) != 0 {
		t.Errorf("fresh root has %d entries, want 0", len(entries))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	chdirTemp(t)

	fsys, err := filesim.New("fs.img")
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	home, err := fsys.CreateDirectory("home", filesim.RootInode)
	if err != nil {
		t.Fatalf("CreateDirectory: %s", err)
	}
	fileInode, err := fsys.CreateFile("notes", filesim.Perm{'r', 'w', '-'}, home)
	if err != nil {
		t.Fatalf("CreateFile: %s", err)
	}
	fsys.SetCurrentDir(home)

	fd, err := fsys.OpenStream("notes", home)
	if err != nil {
		t.Fatalf("OpenStream: %s", err)
	}
	if _, err := fsys.Write(fd, []byte("hello")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	fsys.Close(fd)

	if err := fsys.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}

	reopened, err := filesim.Open("fs.img")
	if err != nil {
		t.Fatalf("Open (reload): %s", err)
	}
	defer reopened.Close()

	if reopened.CurrentDir() != home {
		t.Errorf("CurrentDir after reload = %d, want %d", reopened.CurrentDir(), home)
	}

	entries, err := reopened.ReadDir(filesim.RootInode)
	if err != nil {
		t.Fatalf("ReadDir root: %s", err)
	}
	if len(entries) != 1 || entries[0].Name != "home" {
		t.Fatalf("root entries after reload = %+v, want [home]", entries)
	}

	ino, err := reopened.Stat(fileInode)
	if err != nil {
		t.Fatalf("Stat: %s", err)
	}
	if ino.Size != 5 {
		t.Errorf("Size after reload = %d, want 5", ino.Size)
	}

	fd2, err := reopened.OpenStream("notes", home)
	if err != nil {
		t.Fatalf("OpenStream after reload: %s", err)
	}
	data, err := reopened.Read(fd2, 5)
	if err != nil {
		t.Fatalf("Read after reload: %s", err)
	}
	if string(data) != "hello" {
		t.Errorf("content after reload = %q, want hello", data)
	}
}
