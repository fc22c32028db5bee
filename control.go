package filesim

import (
	"bytes"
	"encoding/binary"
)

// Inode is the fixed-size metadata record for one filesystem object. A free
// slot is identified by Size == -1, not by Type, matching the C original's
// convention (see DESIGN.md).
type Inode struct {
	ID          int32
	Type        InodeType
	Size        int32
	CreatedAt   int64
	ModifiedAt  int64
	Permissions Perm
	Blocks      [NumBlocks]int32
	LinkCount   int32
	Parent      int32
}

func (ino *Inode) free() bool { return ino.Size == None }

func (ino *Inode) reset(id int32) {
	*ino = Inode{ID: id, Type: TypeFree, Size: None, Parent: None}
	for i := range ino.Blocks {
		ino.Blocks[i] = None
	}
}

// dirEntry is one (filename, inode) slot of a directory record.
type dirEntry struct {
	Name  [MaxFileName]byte
	Inode int32
}

func (e *dirEntry) empty() bool { return e.Inode == None }

func (e *dirEntry) clear() {
	e.Name = [MaxFileName]byte{}
	e.Inode = None
}

func (e *dirEntry) name() string {
	n := bytes.IndexByte(e.Name[:], 0)
	if n < 0 {
		n = len(e.Name)
	}
	return string(e.Name[:n])
}

// setName copies up to MaxFileName-1 bytes of name in, guaranteeing
// NUL-termination within the field, as the distilled spec requires.
func (e *dirEntry) setName(name string) {
	e.Name = [MaxFileName]byte{}
	n := copy(e.Name[:MaxFileName-1], name)
	e.Name[n] = 0
}

// dirRecord is a fixed-capacity table of directory entries backing one
// directory inode. Entry order carries no meaning.
type dirRecord struct {
	Entries [NumDirEntries]dirEntry
}

func (d *dirRecord) find(name string) int32 {
	for i := range d.Entries {
		if d.Entries[i].Inode != None && d.Entries[i].name() == name {
			return d.Entries[i].Inode
		}
	}
	return None
}

func (d *dirRecord) freeSlot() int32 {
	for i := range d.Entries {
		if d.Entries[i].empty() {
			return int32(i)
		}
	}
	return None
}

func (d *dirRecord) clear() {
	for i := range d.Entries {
		d.Entries[i].clear()
	}
}

// openFile is one slot of the open-file table: the inode it refers to and
// an absolute byte offset into the image file, per §3 of the spec.
type openFile struct {
	Inode  int32
	Cursor int64
}

func (o *openFile) free() bool { return o.Inode == None }

// control is the entire serialized control region, written as a single
// contiguous blob at offset 0 of the image on every save and read back in
// whole on load. ImageHandle/LogHandle are placeholders: the C original
// persisted raw FILE* pointers at these offsets (meaningless once reloaded);
// they are kept, always zero, purely so every field after them lands at the
// same offset the external layout in the spec declares.
type control struct {
	ImageHandle int64
	LogHandle   int64
	Inodes      [NumInodes]Inode
	Root        dirRecord
	Directories [NumInodes]dirRecord
	Bitmap      [NumBlocks]int32
	CurrentDir  int32
	OpenFiles   [MaxFileOpen]openFile
}

// controlSize is the byte length of the serialized control region; data
// blocks begin immediately after it.
var controlSize = binary.Size(control{})

func (c *control) marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(controlSize)
	if err := binary.Write(buf, binary.LittleEndian, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *control) unmarshal(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, c)
}
