//go:build fuse

// Package fusebridge exposes a filesim namespace through the host kernel's
// FUSE interface, read-only, the same restriction the teacher codebase's
// own FUSE support carries for its (inherently read-only) archive format.
package fusebridge

import (
	"context"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/nvoss/filesim"
)

// node is one FUSE inode, wrapping the namespace inode index it mirrors.
type node struct {
	fusefs.Inode

	fsys  *filesim.FS
	inode int32
}

var (
	_ fusefs.NodeLookuper   = (*node)(nil)
	_ fusefs.NodeReaddirer  = (*node)(nil)
	_ fusefs.NodeGetattrer  = (*node)(nil)
	_ fusefs.NodeOpener     = (*node)(nil)
	_ fusefs.NodeReader     = (*node)(nil)
	_ fusefs.NodeReadlinker = (*node)(nil)
)

// Mount opens its own handle on imagePath — independent of any handle the
// caller already holds — and serves it read-only at mountpoint until the
// returned server is unmounted. The caller owns the server's lifetime: call
// Wait (or Unmount) on it the way any go-fuse server is driven. The image
// handle opened here is released automatically once serving stops, so the
// caller is free to reacquire the advisory lock (§5) right after Wait
// returns without closing anything itself.
func Mount(imagePath, mountpoint string) (*fuse.Server, error) {
	fsys, err := filesim.Open(imagePath)
	if err != nil {
		return nil, err
	}

	root := &node{fsys: fsys, inode: filesim.RootInode}
	server, err := fusefs.Mount(mountpoint, root, &fusefs.Options{
		MountOptions: fuse.MountOptions{
			Name:   "filesim",
			FsName: imagePath,
		},
	})
	if err != nil {
		fsys.Close()
		return nil, err
	}
	go func() {
		server.Wait()
		fsys.Close()
	}()
	return server, nil
}

func (n *node) child(inode int32) *fusefs.Inode {
	ino, err := n.fsys.Stat(inode)
	if err != nil {
		return nil
	}
	mode := uint32(filesim.FileMode(ino.Permissions, ino.Type).Type())
	return n.NewInode(context.Background(), &node{fsys: n.fsys, inode: inode}, fusefs.StableAttr{
		Mode: mode,
		Ino:  uint64(inode) + 1,
	})
}

// Lookup resolves name inside the directory n represents.
func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	entries, err := n.fsys.ReadDir(n.inode)
	if err != nil {
		return nil, syscall.ENOTDIR
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		child := n.child(e.Inode)
		if child == nil {
			return nil, syscall.EIO
		}
		fillAttr(n.fsys, e.Inode, &out.Attr)
		return child, 0
	}
	return nil, syscall.ENOENT
}

// Readdir lists the live entries of the directory n represents.
func (n *node) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	entries, err := n.fsys.ReadDir(n.inode)
	if err != nil {
		return nil, syscall.ENOTDIR
	}

	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		ino, err := n.fsys.Stat(e.Inode)
		if err != nil {
			continue
		}
		list = append(list, fuse.DirEntry{
			Name: e.Name,
			Ino:  uint64(e.Inode) + 1,
			Mode: uint32(filesim.FileMode(ino.Permissions, ino.Type).Type()),
		})
	}
	return fusefs.NewListDirStream(list), 0
}

// Getattr fills out with n's size, mode, and timestamps.
func (n *node) Getattr(ctx context.Context, f fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if !fillAttr(n.fsys, n.inode, &out.Attr) {
		return syscall.ENOENT
	}
	return 0
}

// Open always succeeds: the namespace is read-only, so there is nothing to
// negotiate about write access.
func (n *node) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

// Read serves a byte range of n's file content, looking the content up
// fresh on every call rather than caching an open stream across calls: FUSE
// read handlers are not guaranteed sequential access, and the namespace's
// cursor-based stream API assumes they are.
func (n *node) Read(ctx context.Context, f fusefs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	ino, err := n.fsys.Stat(n.inode)
	if err != nil {
		return nil, syscall.ENOENT
	}
	if off >= int64(ino.Size) {
		return fuse.ReadResultData(nil), 0
	}

	parentEntries, err := n.fsys.ReadDir(ino.Parent)
	if err != nil {
		return nil, syscall.EIO
	}
	var name string
	for _, e := range parentEntries {
		if e.Inode == n.inode {
			name = e.Name
			break
		}
	}
	if name == "" {
		return nil, syscall.ENOENT
	}

	fd, err := n.fsys.OpenStream(name, ino.Parent)
	if err != nil {
		return nil, syscall.EIO
	}
	defer n.fsys.Close(fd)

	if err := n.fsys.Seek(fd, off, filesim.SeekStart); err != nil {
		return nil, syscall.EIO
	}
	want := len(dest)
	if rest := int64(ino.Size) - off; int64(want) > rest {
		want = int(rest)
	}
	data, err := n.fsys.Read(fd, want)
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(data), 0
}

// Readlink returns the target path stored in a symlink inode.
func (n *node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	target, err := n.fsys.ReadLink(n.inode)
	if err != nil {
		return nil, syscall.EINVAL
	}
	return []byte(target), 0
}

func fillAttr(fsys *filesim.FS, inode int32, attr *fuse.Attr) bool {
	ino, err := fsys.Stat(inode)
	if err != nil {
		return false
	}
	attr.Ino = uint64(inode) + 1
	attr.Size = uint64(ino.Size)
	attr.Mode = filesim.ModeToUnix(filesim.FileMode(ino.Permissions, ino.Type))
	attr.Mtime = uint64(ino.ModifiedAt)
	attr.Atime = uint64(ino.ModifiedAt)
	attr.Ctime = uint64(ino.CreatedAt)
	attr.Nlink = uint32(ino.LinkCount)
	return true
}
