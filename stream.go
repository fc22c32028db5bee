package filesim

// This file implements the open-file table and the byte-addressable stream
// operations on it. A cursor is an absolute offset into the image file, not
// a logical offset into the stream's own bytes: callers never see block
// boundaries, but the cursor's numeric value jumps across them.

// OpenStream reserves a slot in the open-file table for name inside
// parentDir and positions its cursor at the first byte of the file's first
// block. It fails with ErrWrongType for a directory and ErrTooManyOpenFiles
// once MaxFileOpen streams are already open.
//
// If name names a symlink, OpenStream dereferences it once against
// parentDir and opens the target instead: there is no loop detection, so a
// symlink whose target is itself a symlink is opened as a symlink, not
// chased further.
func (fsys *FS) OpenStream(name string, parentDir int32) (int32, error) {
	inode := fsys.findInode(name, parentDir)
	if inode == None {
		return None, ErrNotFound
	}
	if fsys.ctl.Inodes[inode].Type == TypeSymlink {
		target, err := fsys.ReadLink(inode)
		if err != nil {
			return None, err
		}
		deref, err := fsys.Resolve(target, parentDir)
		if err != nil {
			return None, err
		}
		inode = deref
	}
	return fsys.openStreamInode(inode)
}

func (fsys *FS) openStreamInode(inode int32) (int32, error) {
	if t := fsys.ctl.Inodes[inode].Type; t != TypeFile && t != TypeSymlink {
		return None, ErrWrongType
	}

	fd := None
	for i := range fsys.ctl.OpenFiles {
		if fsys.ctl.OpenFiles[i].free() {
			fd = int32(i)
			break
		}
	}
	if fd == None {
		return None, ErrTooManyOpenFiles
	}

	block := fsys.ctl.Inodes[inode].Blocks[0]
	fsys.ctl.OpenFiles[fd] = openFile{Inode: inode, Cursor: dataOffset(block)}
	return fd, nil
}

// Close releases fd back to the open-file table.
func (fsys *FS) Close(fd int32) error {
	if err := fsys.checkFD(fd); err != nil {
		return err
	}
	fsys.ctl.OpenFiles[fd] = openFile{Inode: None, Cursor: -1}
	return nil
}

func (fsys *FS) checkFD(fd int32) error {
	if fd < 0 || int(fd) >= MaxFileOpen || fsys.ctl.OpenFiles[fd].free() {
		return ErrInvalidDescriptor
	}
	return nil
}

// blockIndexForCursor returns the index into inode's Blocks array of the
// block that contains cursor.
func (fsys *FS) blockIndexForCursor(inode int32, cursor int64) (int, error) {
	blocks := &fsys.ctl.Inodes[inode].Blocks
	for i, b := range blocks {
		if b == None {
			break
		}
		if cursor >= dataOffset(b) && cursor < dataOffset(b)+BlockSize {
			return i, nil
		}
	}
	return 0, ErrInvalidArgument
}

// Write writes data at fd's current cursor, growing the file by allocating
// new blocks as the cursor crosses the end of the last allocated one. A
// byte is counted as new growth only if the image byte being overwritten
// was itself zero (the same zero-probe the original uses to tell "never
// written" from "written zero", since the block bitmap has no separate
// high-water mark). Growth is reflected in the written file's own Size as
// each byte lands, and then added once more to every directory from the
// file up to the root, matching the original's accounting of directory
// sizes as the sum of what they (transitively) contain.
//
// If a new block is needed and none is free, Write stops and returns the
// bytes it managed to write along with ErrOutOfBlocks. The cursor is then
// left just past the end of the file's last block, outside every block the
// file owns, so a further Read or Write on fd fails with ErrInvalidArgument
// until Seek repositions it.
func (fsys *FS) Write(fd int32, data []byte) (int, error) {
	if err := fsys.checkFD(fd); err != nil {
		return 0, err
	}
	of := &fsys.ctl.OpenFiles[fd]
	inode := of.Inode
	ino := &fsys.ctl.Inodes[inode]
	if ino.Type != TypeFile {
		return 0, ErrWrongType
	}
	if !fsys.hasPermission(inode, 'w') {
		return 0, ErrPermissionDenied
	}

	blockIdx, err := fsys.blockIndexForCursor(inode, of.Cursor)
	if err != nil {
		return 0, err
	}

	cursor := of.Cursor
	grown := int32(0)
	written := 0
	var writeErr error

	for _, b := range data {
		existing, err := fsys.im.readByte(cursor)
		if err != nil {
			writeErr = err
			break
		}
		if existing == 0 {
			grown++
			ino.Size++
		}
		if err := fsys.im.writeByte(cursor, b); err != nil {
			writeErr = err
			break
		}
		written++
		cursor++

		if cursor >= dataOffset(ino.Blocks[blockIdx])+BlockSize {
			blockIdx++
			if blockIdx >= NumBlocks {
				writeErr = ErrOutOfBlocks
				break
			}
			if ino.Blocks[blockIdx] == None {
				newBlock, err := fsys.allocBlock()
				if err != nil {
					writeErr = err
					break
				}
				ino.Blocks[blockIdx] = newBlock
			}
			cursor = dataOffset(ino.Blocks[blockIdx])
		}
	}

	of.Cursor = cursor
	ino.ModifiedAt = currentTime()

	if grown > 0 {
		id := inode
		for id != RootInode {
			id = fsys.ctl.Inodes[id].Parent
			fsys.ctl.Inodes[id].Size += grown
		}
	}

	fsys.logf("wrote %d bytes to inode %d via fd %d", written, inode, fd)
	return written, writeErr
}

// Read copies up to n bytes from fd's current cursor and advances it by the
// number of bytes actually copied. It stops short of n, with no error, if
// it reaches a block boundary whose next entry is unallocated (end of
// file): callers distinguish a short read from a full one by comparing the
// returned slice's length against n, the same information the original
// conveys by stopping at its own "next block is -1" check.
func (fsys *FS) Read(fd int32, n int) ([]byte, error) {
	if err := fsys.checkFD(fd); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrInvalidArgument
	}
	of := &fsys.ctl.OpenFiles[fd]
	inode := of.Inode
	ino := &fsys.ctl.Inodes[inode]
	if !fsys.hasPermission(inode, 'r') {
		return nil, ErrPermissionDenied
	}

	blockIdx, err := fsys.blockIndexForCursor(inode, of.Cursor)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, n)
	cursor := of.Cursor
	for len(out) < n {
		b, err := fsys.im.readByte(cursor)
		if err != nil {
			return out, err
		}
		out = append(out, b)
		cursor++

		if cursor >= dataOffset(ino.Blocks[blockIdx])+BlockSize {
			blockIdx++
			if blockIdx >= NumBlocks || ino.Blocks[blockIdx] == None {
				of.Cursor = cursor
				fsys.logf("read %d bytes from inode %d via fd %d (reached end of file)", len(out), inode, fd)
				return out, nil
			}
			cursor = dataOffset(ino.Blocks[blockIdx])
		}
	}

	of.Cursor = cursor
	fsys.logf("read %d bytes from inode %d via fd %d", len(out), inode, fd)
	return out, nil
}

// Seek Whence values, matching the C original's lseek-derived constants.
const (
	SeekStart   = 0
	SeekEnd     = 1
	SeekCurrent = 2
)

// Seek repositions fd's cursor. SeekStart moves to offset bytes from the
// first byte of the file; SeekEnd moves to size-offset bytes from the
// first byte (an end-relative offset expressed as a positive count back
// from the end); SeekCurrent advances offset bytes from the current
// position. Advancing past the last allocated block is reported as
// ErrInvalidArgument and leaves the cursor at the point reached so far.
func (fsys *FS) Seek(fd int32, offset int64, whence int) error {
	if err := fsys.checkFD(fd); err != nil {
		return err
	}
	if offset < 0 {
		return ErrInvalidArgument
	}
	of := &fsys.ctl.OpenFiles[fd]
	inode := of.Inode
	ino := &fsys.ctl.Inodes[inode]

	var fromCursor int64
	var fromBlock int
	var count int64

	switch whence {
	case SeekStart:
		fromBlock = 0
		fromCursor = dataOffset(ino.Blocks[0])
		count = offset
	case SeekEnd:
		if offset > int64(ino.Size) {
			return ErrInvalidArgument
		}
		fromBlock = 0
		fromCursor = dataOffset(ino.Blocks[0])
		count = int64(ino.Size) - offset
	case SeekCurrent:
		idx, err := fsys.blockIndexForCursor(inode, of.Cursor)
		if err != nil {
			return err
		}
		fromBlock = idx
		fromCursor = of.Cursor
		count = offset
	default:
		return ErrInvalidArgument
	}

	cursor, _, err := fsys.advanceCursor(inode, fromBlock, fromCursor, count)
	of.Cursor = cursor
	return err
}

// advanceCursor walks count bytes forward from (blockIdx, cursor) along
// inode's block list, crossing block boundaries without allocating new
// ones. Reaching an unallocated next block before count is exhausted is an
// error; the cursor returned is the furthest point actually reached.
func (fsys *FS) advanceCursor(inode int32, blockIdx int, cursor int64, count int64) (int64, int, error) {
	blocks := &fsys.ctl.Inodes[inode].Blocks
	remaining := count
	for remaining > 0 {
		blockEnd := dataOffset(blocks[blockIdx]) + BlockSize
		step := remaining
		if cursor+step > blockEnd {
			step = blockEnd - cursor
		}
		cursor += step
		remaining -= step
		if remaining > 0 {
			blockIdx++
			if blockIdx >= NumBlocks || blocks[blockIdx] == None {
				return cursor, blockIdx, ErrInvalidArgument
			}
			cursor = dataOffset(blocks[blockIdx])
		}
	}
	return cursor, blockIdx, nil
}
