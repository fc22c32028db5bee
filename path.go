package filesim

import "strings"

// Resolve turns path (absolute or relative to start) into an inode index.
// An absolute path (leading "/") begins at the root; otherwise resolution
// begins at start. Each "/"-separated token is applied in turn: "." keeps
// the current inode, ".." moves to its parent, anything else is looked up
// as a child name. Empty tokens produced by a trailing slash or repeated
// slashes are ignored. Symbolic links are never dereferenced: Resolve
// returns the inode of the link itself if the path names one.
func (fsys *FS) Resolve(path string, start int32) (int32, error) {
	current := start
	if strings.HasPrefix(path, "/") {
		current = RootInode
	}

	for _, token := range strings.Split(path, "/") {
		switch token {
		case "", ".":
			// no-op: stay in the same directory
		case "..":
			current = fsys.ctl.Inodes[current].Parent
		default:
			next := fsys.findInode(token, current)
			if next == None {
				fsys.logf("path component %q not found under inode %d", token, current)
				return None, ErrNotFound
			}
			current = next
		}
	}
	return current, nil
}

// Abs reconstructs the absolute path of inode by walking Parent back to the
// root and, at each step, finding the matching entry name in the parent's
// directory record. The shell's pwd command and its prompt use it.
func (fsys *FS) Abs(inode int32) (string, error) {
	if inode == RootInode {
		return "/", nil
	}

	var parts []string
	for i := 0; i < NumInodes; i++ {
		if inode == RootInode {
			break
		}
		parent := fsys.ctl.Inodes[inode].Parent
		if parent < 0 || int(parent) >= NumInodes {
			return "", ErrCorrupt
		}
		name, ok := fsys.childName(parent, inode)
		if !ok {
			return "", ErrCorrupt
		}
		parts = append([]string{name}, parts...)
		inode = parent
	}
	if inode != RootInode {
		return "", ErrCorrupt
	}
	return "/" + strings.Join(parts, "/"), nil
}

// childName finds the name under which childInode is registered in dirInode.
func (fsys *FS) childName(dirInode, childInode int32) (string, bool) {
	rec := &fsys.ctl.Directories[dirInode]
	for i := range rec.Entries {
		if rec.Entries[i].Inode == childInode {
			return rec.Entries[i].name(), true
		}
	}
	return "", false
}
