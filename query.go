package filesim

// This file is the read-only surface namespace.go and stream.go don't
// already cover: listing a directory's live entries, inspecting an inode,
// and recovering a symlink's stored target text. The shell, the archive
// bridge, and the FUSE bridge all build on just these.

// DirEntry is one live (non-empty) entry of a directory, as returned by
// ReadDir.
type DirEntry struct {
	Name  string
	Inode int32
}

// ReadDir returns the live entries of dirInode in table order. Table order
// is slot order, not creation order or any sorted order: callers that want
// a stable display order must sort the result themselves.
func (fsys *FS) ReadDir(dirInode int32) ([]DirEntry, error) {
	if dirInode < 0 || int(dirInode) >= NumInodes {
		return nil, ErrInvalidArgument
	}
	if fsys.ctl.Inodes[dirInode].Type != TypeDir {
		return nil, ErrWrongType
	}

	rec := &fsys.ctl.Directories[dirInode]
	var entries []DirEntry
	for i := range rec.Entries {
		e := &rec.Entries[i]
		if e.empty() {
			continue
		}
		entries = append(entries, DirEntry{Name: e.name(), Inode: e.Inode})
	}
	return entries, nil
}

// Stat returns a copy of the inode record at index inode.
func (fsys *FS) Stat(inode int32) (Inode, error) {
	if inode < 0 || int(inode) >= NumInodes {
		return Inode{}, ErrInvalidArgument
	}
	if fsys.ctl.Inodes[inode].free() {
		return Inode{}, ErrNotFound
	}
	return fsys.ctl.Inodes[inode], nil
}

// ReadLink returns the target path stored in a symlink inode's data block.
func (fsys *FS) ReadLink(inode int32) (string, error) {
	ino, err := fsys.Stat(inode)
	if err != nil {
		return "", err
	}
	if ino.Type != TypeSymlink {
		return "", ErrWrongType
	}

	off := dataOffset(ino.Blocks[0])
	var buf []byte
	for i := int32(0); i < ino.Size; i++ {
		b, err := fsys.im.readByte(off + int64(i))
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

// NumInodeSlots reports the fixed capacity of the inode table.
func (fsys *FS) NumInodeSlots() int32 { return NumInodes }

// Find looks up name directly in dirInode, without the "." / ".." / "/"
// handling Resolve does. It returns None if dirInode has no such entry.
func (fsys *FS) Find(dirInode int32, name string) int32 {
	return fsys.findInode(name, dirInode)
}
