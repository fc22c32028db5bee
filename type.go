package filesim

import "io/fs"

// InodeType distinguishes the three inode kinds the simulated filesystem
// knows about, plus the sentinel used for a free inode slot.
type InodeType int32

const (
	// TypeFree marks an inode table slot that holds no object.
	TypeFree InodeType = -1
	// TypeDir marks a directory inode.
	TypeDir InodeType = 0
	// TypeFile marks a regular file inode.
	TypeFile InodeType = 1
	// TypeSymlink marks a symbolic link inode.
	TypeSymlink InodeType = 2
)

func (t InodeType) String() string {
	switch t {
	case TypeFree:
		return "free"
	case TypeDir:
		return "dir"
	case TypeFile:
		return "file"
	case TypeSymlink:
		return "symlink"
	default:
		return "invalid"
	}
}

// Mode returns a fs.FileMode carrying only the type bit, no permissions.
func (t InodeType) Mode() fs.FileMode {
	switch t {
	case TypeDir:
		return fs.ModeDir
	case TypeSymlink:
		return fs.ModeSymlink
	default:
		return 0
	}
}
