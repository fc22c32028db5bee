package filesim

// findInode looks up name in the directory record of dirInode, returning its
// child inode index or None if absent. Matching is an exact byte-wise scan
// over the fixed 256-entry table; the first match wins.
func (fsys *FS) findInode(name string, dirInode int32) int32 {
	return fsys.ctl.Directories[dirInode].find(name)
}

// findFreeEntry returns the first empty slot index in dirInode's record, or
// None if the directory is full.
func (fsys *FS) findFreeEntry(dirInode int32) int32 {
	return fsys.ctl.Directories[dirInode].freeSlot()
}

// insertEntry allocates a free slot in dirInode and fills it with
// (name, childInode). It does not check for name clashes; callers must do
// that themselves (create/move/link/copy all validate before calling).
func (fsys *FS) insertEntry(dirInode int32, name string, childInode int32) error {
	slot := fsys.findFreeEntry(dirInode)
	if slot == None {
		return ErrOutOfEntries
	}
	e := &fsys.ctl.Directories[dirInode].Entries[slot]
	e.setName(name)
	e.Inode = childInode
	return nil
}

// removeEntry clears the first entry in dirInode's record that matches both
// name and childInode, so that hard links to the same inode under other
// names survive. It reports whether an entry was removed.
func (fsys *FS) removeEntry(dirInode int32, name string, childInode int32) bool {
	rec := &fsys.ctl.Directories[dirInode]
	for i := range rec.Entries {
		e := &rec.Entries[i]
		if e.Inode == childInode && e.name() == name {
			e.clear()
			return true
		}
	}
	return false
}

// hasPermission reports whether inode grants the given right ('r','w','x').
func (fsys *FS) hasPermission(inode int32, right byte) bool {
	if inode < 0 || int(inode) >= NumInodes {
		return false
	}
	return fsys.ctl.Inodes[inode].Permissions.Has(right)
}
