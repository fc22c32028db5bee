package filesim

// allocBlock returns the smallest free block index and marks it allocated,
// or ErrOutOfBlocks if the bitmap is full. No coalescing, no defragmentation.
func (fsys *FS) allocBlock() (int32, error) {
	for i := range fsys.ctl.Bitmap {
		if fsys.ctl.Bitmap[i] == 0 {
			fsys.ctl.Bitmap[i] = 1
			fsys.logf("allocated block %d", i)
			return int32(i), nil
		}
	}
	fsys.logf("block allocation failed: no free block")
	return None, ErrOutOfBlocks
}

// freeBlock marks b unallocated. An out-of-range index is reported, not fatal.
func (fsys *FS) freeBlock(b int32) error {
	if b < 0 || int(b) >= NumBlocks {
		fsys.logf("invalid attempt to free block %d", b)
		return ErrInvalidArgument
	}
	fsys.ctl.Bitmap[b] = 0
	fsys.logf("freed block %d", b)
	return nil
}

// allocInode returns the first free inode slot (Size == -1) and marks it
// reserved, or ErrOutOfInodes if the table is full.
func (fsys *FS) allocInode() (int32, error) {
	for i := range fsys.ctl.Inodes {
		if fsys.ctl.Inodes[i].free() {
			fsys.ctl.Inodes[i].Size = 0
			return int32(i), nil
		}
	}
	return None, ErrOutOfInodes
}

// freeInode resets an inode to the free template. Callers must already have
// released its blocks and removed its directory entries.
func (fsys *FS) freeInode(i int32) {
	fsys.ctl.Inodes[i].reset(i)
}
