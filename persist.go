package filesim

import (
	"log"
	"os"
)

// FS is the simulated filesystem: the in-memory mirror of one image's
// control region plus the open handle that backs it. The zero value is not
// usable; construct one with Open or New.
//
// All mutating methods operate on this value directly — there is no package
// level global (see SPEC_FULL.md §9, "Global mutable filesystem state").
type FS struct {
	im      *image
	ctl     control
	logger  *log.Logger
	logFile *os.File
}

// Open loads filename, initializing a fresh image if it does not exist yet.
// The returned FS holds an exclusive advisory lock on the image; callers
// must Close it when done.
func Open(filename string) (*FS, error) {
	return open(filename, false)
}

// New force-reinitializes filename into a fresh, empty image even if one
// already exists, as the CLI's -i flag requires.
func New(filename string) (*FS, error) {
	return open(filename, true)
}

func open(filename string, forceInit bool) (*FS, error) {
	im, existed, err := openImage(filename)
	if err != nil {
		return nil, err
	}

	fsys := &FS{im: im}
	if err := fsys.openLog(); err != nil {
		im.close()
		return nil, err
	}
	if err := im.lock(); err != nil {
		fsys.closeLog()
		im.close()
		return nil, err
	}

	if existed && !forceInit {
		if err := fsys.load(); err != nil {
			fsys.Close()
			return nil, err
		}
		fsys.logf("filesystem loaded successfully")
		return fsys, nil
	}

	if err := im.format(); err != nil {
		fsys.Close()
		return nil, err
	}
	fsys.initControl()
	if err := fsys.Save(); err != nil {
		fsys.Close()
		return nil, err
	}
	fsys.logf("new filesystem initialized")
	return fsys, nil
}

// initControl resets every control structure to its free/empty template and
// installs the root directory at inode 0.
func (fsys *FS) initControl() {
	fsys.ctl = control{}
	for i := range fsys.ctl.Inodes {
		fsys.ctl.Inodes[i].reset(int32(i))
	}
	for i := range fsys.ctl.Directories {
		fsys.ctl.Directories[i].clear()
	}
	fsys.ctl.Root.clear()
	for i := range fsys.ctl.Bitmap {
		fsys.ctl.Bitmap[i] = 0
	}
	for i := range fsys.ctl.OpenFiles {
		fsys.ctl.OpenFiles[i] = openFile{Inode: None, Cursor: -1}
	}

	root := &fsys.ctl.Inodes[RootInode]
	root.Type = TypeDir
	root.Size = 0
	root.Permissions = Perm{'r', 'w', 'x'}
	root.Parent = RootInode
	root.LinkCount = 1
	now := currentTime()
	root.CreatedAt, root.ModifiedAt = now, now

	fsys.ctl.CurrentDir = RootInode
}

// load reads the control region blob back into memory.
func (fsys *FS) load() error {
	buf := make([]byte, controlSize)
	if _, err := fsys.im.f.ReadAt(buf, 0); err != nil {
		return err
	}
	return fsys.ctl.unmarshal(buf)
}

// Save writes the in-memory control region back to the image as a single
// contiguous blob, closing and reopening the image handle around the write
// the way the C original does (see §4.8).
func (fsys *FS) Save() error {
	data, err := fsys.ctl.marshal()
	if err != nil {
		return err
	}

	if err := fsys.im.f.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(fsys.im.path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		f.Close()
		return err
	}
	fsys.im.f = f
	// Closing the old handle dropped its flock; take it again on the new one.
	if err := fsys.im.lock(); err != nil {
		return err
	}
	fsys.logf("filesystem saved successfully")
	return nil
}

// Close saves, releases the advisory lock, and closes the image and log handles.
func (fsys *FS) Close() error {
	saveErr := fsys.Save()
	fsys.im.unlock()
	closeErr := fsys.im.close()
	fsys.closeLog()
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}

// CurrentDir returns the inode of the shell's current working directory.
func (fsys *FS) CurrentDir() int32 { return fsys.ctl.CurrentDir }

// SetCurrentDir updates the shell's current working directory.
func (fsys *FS) SetCurrentDir(inode int32) { fsys.ctl.CurrentDir = inode }

func (fsys *FS) openLog() error {
	f, err := os.OpenFile("log.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	fsys.logFile = f
	fsys.logger = log.New(f, "", log.LstdFlags)
	return nil
}

func (fsys *FS) closeLog() error {
	if fsys.logFile == nil {
		return nil
	}
	return fsys.logFile.Close()
}

func (fsys *FS) logf(format string, args ...any) {
	if fsys.logger == nil {
		return
	}
	fsys.logger.Printf(format, args...)
}
