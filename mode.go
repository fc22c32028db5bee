package filesim

import "io/fs"

// filesim permission bits are a coarse rwx triple with no owner/group model;
// ModeToUnix/UnixToMode below translate that triple (widened to a regular
// unix mode word) for the FUSE bridge, which needs real S_IF* bits.
// based on: https://golang.org/src/os/stat_linux.go

const (
	sIFMT  = 0xf000
	sIFREG = 0x8000
	sIFDIR = 0x4000
	sIFLNK = 0xa000

	sIRUSR = 0x100
	sIWUSR = 0x80
	sIXUSR = 0x40
)

// Perm is the coarse three-character permission triple carried by every
// inode: position 0 is read, 1 is write, 2 is execute. Each position holds
// either the matching letter or '-'.
type Perm [3]byte

// ParsePerm validates and returns a Perm from a string such as "rw-" or "rwx".
// Only the first three bytes are consulted, matching the C original's
// strncpy(perm, src, 3) truncation.
func ParsePerm(s string) (Perm, error) {
	if len(s) < 3 {
		return Perm{}, ErrInvalidArgument
	}
	var p Perm
	letters := [3]byte{'r', 'w', 'x'}
	for i := 0; i < 3; i++ {
		c := s[i]
		if c != letters[i] && c != '-' {
			return Perm{}, ErrInvalidArgument
		}
		p[i] = c
	}
	return p, nil
}

func (p Perm) String() string {
	return string(p[:])
}

// Has reports whether the permission triple grants the given right
// ('r', 'w', or 'x').
func (p Perm) Has(right byte) bool {
	switch right {
	case 'r':
		return p[0] == 'r'
	case 'w':
		return p[1] == 'w'
	case 'x':
		return p[2] == 'x'
	default:
		return false
	}
}

// unixMode widens the permission triple, duplicated across user/group/other
// since there is no owner/group model, and ORs in the type bit for t.
func (p Perm) unixMode(t InodeType) uint32 {
	var res uint32
	if p.Has('r') {
		res |= sIRUSR | sIRUSR>>3 | sIRUSR>>6
	}
	if p.Has('w') {
		res |= sIWUSR | sIWUSR>>3 | sIWUSR>>6
	}
	if p.Has('x') {
		res |= sIXUSR | sIXUSR>>3 | sIXUSR>>6
	}
	switch t {
	case TypeDir:
		res |= sIFDIR
	case TypeSymlink:
		res |= sIFLNK
	default:
		res |= sIFREG
	}
	return res
}

// FileMode renders the permission triple and inode type as a fs.FileMode.
func FileMode(p Perm, t InodeType) fs.FileMode {
	return UnixToMode(p.unixMode(t))
}

// UnixToMode converts a raw unix mode word (as produced by unixMode) into a
// fs.FileMode, for consumers such as the FUSE bridge that want os/fs types.
func UnixToMode(mode uint32) fs.FileMode {
	res := fs.FileMode(mode & 0777)

	switch mode & sIFMT {
	case sIFDIR:
		res |= fs.ModeDir
	case sIFLNK:
		res |= fs.ModeSymlink
	}

	return res
}

// ModeToUnix converts a fs.FileMode back into a raw unix mode word.
func ModeToUnix(mode fs.FileMode) uint32 {
	res := uint32(mode.Perm())

	switch {
	case mode&fs.ModeDir == fs.ModeDir:
		res |= sIFDIR
	case mode&fs.ModeSymlink == fs.ModeSymlink:
		res |= sIFLNK
	default:
		res |= sIFREG
	}

	return res
}
