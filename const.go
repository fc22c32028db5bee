package filesim

// Fixed dimensions of the simulated filesystem. These are compile-time
// constants rather than a loaded configuration: the on-disk control region
// layout is derived directly from them, so changing one changes the image
// format.
const (
	BlockSize     = 512
	NumBlocks     = 1024
	NumInodes     = 256
	NumDirEntries = 256
	MaxFileOpen   = 64
	MaxFileName   = 255
)

// RootInode is the inode index of the filesystem root; it is always its own parent.
const RootInode int32 = 0

// None is the sentinel used throughout the control structures for "no
// inode"/"no block"/"empty slot" (the C original's bare -1).
const None int32 = -1
