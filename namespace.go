package filesim

// This file implements the namespace-mutating operations: creating and
// removing files, directories, links, and moving or copying any of them
// between directories. Every operation validates its preconditions before
// touching any control structure; where a structure must be reserved before
// a later check can run (CreateDirectory reserves its inode before the name
// clash check, mirroring the original allocate-then-validate order) a
// failure rolls the reservation back so a rejected call never leaks state.

// CreateFile reserves an inode and a single data block for a new regular
// file named name inside parentDir, and links it in. It fails with
// ErrExists if the name is already taken, and with ErrOutOfInodes or
// ErrOutOfBlocks if the filesystem has no room.
func (fsys *FS) CreateFile(name string, perm Perm, parentDir int32) (int32, error) {
	if !fsys.hasPermission(parentDir, 'w') {
		return None, ErrPermissionDenied
	}
	if fsys.findInode(name, parentDir) != None {
		return None, ErrExists
	}

	idx, err := fsys.allocInode()
	if err != nil {
		return None, err
	}
	block, err := fsys.allocBlock()
	if err != nil {
		fsys.freeInode(idx)
		return None, err
	}
	if err := fsys.insertEntry(parentDir, name, idx); err != nil {
		fsys.freeBlock(block)
		fsys.freeInode(idx)
		return None, err
	}

	ino := &fsys.ctl.Inodes[idx]
	ino.Type = TypeFile
	ino.Size = 0
	ino.Permissions = perm
	ino.Parent = parentDir
	ino.LinkCount = 1
	ino.Blocks[0] = block
	now := currentTime()
	ino.CreatedAt, ino.ModifiedAt = now, now

	fsys.logf("created file %q in directory %d as inode %d", name, parentDir, idx)
	return idx, nil
}

// DeleteFile removes name from parentDir and decrements its inode's link
// count; the inode and its blocks are freed only once the last link is
// gone. It fails with ErrWrongType if name names a directory.
func (fsys *FS) DeleteFile(name string, parentDir int32) error {
	inode := fsys.findInode(name, parentDir)
	if inode == None {
		return ErrNotFound
	}
	ino := &fsys.ctl.Inodes[inode]
	if ino.Type != TypeFile && ino.Type != TypeSymlink {
		return ErrWrongType
	}
	if !fsys.hasPermission(parentDir, 'w') {
		return ErrPermissionDenied
	}

	fsys.removeEntry(parentDir, name, inode)
	ino.LinkCount--
	if ino.LinkCount > 0 {
		fsys.logf("unlinked %q from directory %d, %d link(s) remain on inode %d", name, parentDir, ino.LinkCount, inode)
		return nil
	}

	for _, b := range ino.Blocks {
		if b == None {
			break
		}
		fsys.freeBlock(b)
	}
	fsys.freeInode(inode)
	fsys.logf("deleted file %q from directory %d", name, parentDir)
	return nil
}

// CreateDirectory reserves an inode for a new, empty directory named name
// inside parentDir. No data block is allocated: a directory's entries live
// in the control region's Directories table, not in the data blocks.
func (fsys *FS) CreateDirectory(name string, parentDir int32) (int32, error) {
	if !fsys.hasPermission(parentDir, 'w') {
		return None, ErrPermissionDenied
	}

	idx, err := fsys.allocInode()
	if err != nil {
		return None, err
	}
	if fsys.findInode(name, parentDir) != None {
		fsys.freeInode(idx)
		return None, ErrExists
	}
	if err := fsys.insertEntry(parentDir, name, idx); err != nil {
		fsys.freeInode(idx)
		return None, err
	}

	ino := &fsys.ctl.Inodes[idx]
	ino.Type = TypeDir
	ino.Size = 0
	ino.Permissions = Perm{'r', 'w', 'x'}
	ino.Parent = parentDir
	ino.LinkCount = 1
	now := currentTime()
	ino.CreatedAt, ino.ModifiedAt = now, now
	fsys.ctl.Directories[idx].clear()

	fsys.logf("created directory %q in directory %d as inode %d", name, parentDir, idx)
	return idx, nil
}

// DeleteDirectory removes name from parentDir, recursively deleting every
// entry it contains first.
func (fsys *FS) DeleteDirectory(name string, parentDir int32) error {
	dirInode := fsys.findInode(name, parentDir)
	if dirInode == None {
		return ErrNotFound
	}
	if fsys.ctl.Inodes[dirInode].Type != TypeDir {
		return ErrWrongType
	}
	if !fsys.hasPermission(dirInode, 'w') {
		return ErrPermissionDenied
	}

	rec := &fsys.ctl.Directories[dirInode]
	for i := range rec.Entries {
		e := &rec.Entries[i]
		if e.empty() {
			continue
		}
		child := e.Inode
		childName := e.name()
		var err error
		if fsys.ctl.Inodes[child].Type == TypeDir {
			err = fsys.DeleteDirectory(childName, dirInode)
		} else {
			err = fsys.DeleteFile(childName, dirInode)
		}
		if err != nil {
			return err
		}
	}

	fsys.removeEntry(parentDir, name, dirInode)
	fsys.freeInode(dirInode)
	fsys.logf("deleted directory %q from directory %d", name, parentDir)
	return nil
}

// MoveDirectory relinks name from srcParent to dstParent and updates the
// moved directory's recorded parent.
func (fsys *FS) MoveDirectory(name string, srcParent, dstParent int32) error {
	inode := fsys.findInode(name, srcParent)
	if inode == None {
		return ErrNotFound
	}
	if fsys.ctl.Inodes[inode].Type != TypeDir {
		return ErrWrongType
	}
	if !fsys.hasPermission(srcParent, 'w') {
		return ErrPermissionDenied
	}
	if fsys.findInode(name, dstParent) != None {
		return ErrExists
	}
	if !fsys.hasPermission(dstParent, 'w') {
		return ErrPermissionDenied
	}

	if err := fsys.insertEntry(dstParent, name, inode); err != nil {
		return err
	}
	fsys.removeEntry(srcParent, name, inode)
	fsys.ctl.Inodes[inode].Parent = dstParent
	fsys.ctl.Inodes[inode].ModifiedAt = currentTime()
	fsys.logf("moved directory %q from directory %d to directory %d", name, srcParent, dstParent)
	return nil
}

// MoveFile relinks name from srcParent to dstParent. Unlike MoveDirectory it
// does not touch the moved inode's Parent field: files and symlinks do not
// carry a recorded parent that Resolve depends on via "..".
func (fsys *FS) MoveFile(name string, srcParent, dstParent int32) error {
	inode := fsys.findInode(name, srcParent)
	if inode == None {
		return ErrNotFound
	}
	if t := fsys.ctl.Inodes[inode].Type; t != TypeFile && t != TypeSymlink {
		return ErrWrongType
	}
	if !fsys.hasPermission(srcParent, 'w') {
		return ErrPermissionDenied
	}
	if fsys.findInode(name, dstParent) != None {
		return ErrExists
	}
	if !fsys.hasPermission(dstParent, 'w') {
		return ErrPermissionDenied
	}

	if err := fsys.insertEntry(dstParent, name, inode); err != nil {
		return err
	}
	fsys.removeEntry(srcParent, name, inode)
	fsys.ctl.Inodes[inode].ModifiedAt = currentTime()
	fsys.logf("moved file %q from directory %d to directory %d", name, srcParent, dstParent)
	return nil
}

// CopyFile creates newName in dstParent as an independent copy of srcName
// from srcParent, duplicating its permissions and contents byte for byte.
func (fsys *FS) CopyFile(srcName, newName string, srcParent, dstParent int32) (int32, error) {
	srcInode := fsys.findInode(srcName, srcParent)
	if srcInode == None {
		return None, ErrNotFound
	}
	if !fsys.hasPermission(srcInode, 'r') {
		return None, ErrPermissionDenied
	}
	if fsys.findInode(newName, dstParent) != None {
		return None, ErrExists
	}

	newInode, err := fsys.CreateFile(newName, fsys.ctl.Inodes[srcInode].Permissions, dstParent)
	if err != nil {
		return None, err
	}

	srcFD, err := fsys.OpenStream(srcName, srcParent)
	if err != nil {
		return None, err
	}
	defer fsys.Close(srcFD)
	dstFD, err := fsys.OpenStream(newName, dstParent)
	if err != nil {
		return None, err
	}
	defer fsys.Close(dstFD)

	size := int(fsys.ctl.Inodes[srcInode].Size)
	if size > 0 {
		data, err := fsys.Read(srcFD, size)
		if err != nil {
			return None, err
		}
		if _, err := fsys.Write(dstFD, data); err != nil {
			return None, err
		}
	}

	fsys.logf("copied file %q in directory %d to %q in directory %d", srcName, srcParent, newName, dstParent)
	return newInode, nil
}

// CopyDirectory creates newName in dstParent as a deep, independent copy of
// srcName from srcParent, recursing into every entry it contains.
func (fsys *FS) CopyDirectory(srcName, newName string, srcParent, dstParent int32) (int32, error) {
	srcInode := fsys.findInode(srcName, srcParent)
	if srcInode == None {
		return None, ErrNotFound
	}
	if fsys.ctl.Inodes[srcInode].Type != TypeDir {
		return None, ErrWrongType
	}
	if !fsys.hasPermission(srcInode, 'r') {
		return None, ErrPermissionDenied
	}
	if fsys.findInode(newName, dstParent) != None {
		return None, ErrExists
	}

	newDirInode, err := fsys.CreateDirectory(newName, dstParent)
	if err != nil {
		return None, err
	}

	rec := &fsys.ctl.Directories[srcInode]
	for i := range rec.Entries {
		e := &rec.Entries[i]
		if e.empty() {
			continue
		}
		childName := e.name()
		if fsys.ctl.Inodes[e.Inode].Type == TypeDir {
			if _, err := fsys.CopyDirectory(childName, childName, srcInode, newDirInode); err != nil {
				return None, err
			}
		} else {
			if _, err := fsys.CopyFile(childName, childName, srcInode, newDirInode); err != nil {
				return None, err
			}
		}
	}

	fsys.logf("copied directory %q in directory %d to %q in directory %d", srcName, srcParent, newName, dstParent)
	return newDirInode, nil
}

// CreateHardLink registers targetName's inode under linkName in dstParent
// and bumps its link count. Both names may coexist in different
// directories, or (subject to the usual name-clash check) in the same one.
func (fsys *FS) CreateHardLink(linkName, targetName string, srcParent, dstParent int32) error {
	inode := fsys.findInode(targetName, srcParent)
	if inode == None {
		return ErrNotFound
	}
	if fsys.ctl.Inodes[inode].Type == TypeDir {
		return ErrWrongType
	}
	if fsys.findInode(linkName, dstParent) != None {
		return ErrExists
	}
	if !fsys.hasPermission(dstParent, 'w') {
		return ErrPermissionDenied
	}

	if err := fsys.insertEntry(dstParent, linkName, inode); err != nil {
		return err
	}
	fsys.ctl.Inodes[inode].LinkCount++
	fsys.logf("linked %q in directory %d to inode %d as %q in directory %d", targetName, srcParent, inode, linkName, dstParent)
	return nil
}

// CreateSymbolicLink creates a new symlink inode named linkName inside
// parentDir whose content is targetPath, a path resolved at lookup time
// rather than at creation time. Creation fails if targetPath does not
// resolve against parentDir right now: a symlink can still go dangling
// later if its target is removed, but it is never created dangling.
func (fsys *FS) CreateSymbolicLink(linkName, targetPath string, parentDir int32) (int32, error) {
	if !fsys.hasPermission(parentDir, 'w') {
		return None, ErrPermissionDenied
	}
	if fsys.findInode(linkName, parentDir) != None {
		return None, ErrExists
	}
	if _, err := fsys.Resolve(targetPath, parentDir); err != nil {
		return None, err
	}

	idx, err := fsys.allocInode()
	if err != nil {
		return None, err
	}
	block, err := fsys.allocBlock()
	if err != nil {
		fsys.freeInode(idx)
		return None, err
	}
	if err := fsys.insertEntry(parentDir, linkName, idx); err != nil {
		fsys.freeBlock(block)
		fsys.freeInode(idx)
		return None, err
	}

	payload := append([]byte(targetPath), 0)
	off := dataOffset(block)
	for i, b := range payload {
		if err := fsys.im.writeByte(off+int64(i), b); err != nil {
			return None, err
		}
	}

	ino := &fsys.ctl.Inodes[idx]
	ino.Type = TypeSymlink
	ino.Size = int32(len(payload))
	ino.Permissions = Perm{'r', 'w', 'x'}
	ino.Parent = parentDir
	ino.LinkCount = 1
	ino.Blocks[0] = block
	now := currentTime()
	ino.CreatedAt, ino.ModifiedAt = now, now

	fsys.logf("created symbolic link %q -> %q in directory %d as inode %d", linkName, targetPath, parentDir, idx)
	return idx, nil
}

// ChangePermissions overwrites the permission triple of name within
// parentDir.
func (fsys *FS) ChangePermissions(name string, newPerm Perm, parentDir int32) error {
	inode := fsys.findInode(name, parentDir)
	if inode == None {
		return ErrNotFound
	}
	fsys.ctl.Inodes[inode].Permissions = newPerm
	fsys.ctl.Inodes[inode].ModifiedAt = currentTime()
	fsys.logf("changed permissions of %q in directory %d to %s", name, parentDir, newPerm)
	return nil
}
