package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/nvoss/filesim"
)

// namespace is the subset of filesim.FS that Export and Import need, so
// this package does not depend on the concrete struct. The tests pass a
// real *filesim.FS.
type namespace interface {
	Resolve(path string, start int32) (int32, error)
	ReadDir(dirInode int32) ([]filesim.DirEntry, error)
	Stat(inode int32) (filesim.Inode, error)
	ReadLink(inode int32) (string, error)
	OpenStream(name string, parentDir int32) (int32, error)
	Close(fd int32) error
	Read(fd int32, n int) ([]byte, error)
	Write(fd int32, data []byte) (int, error)
	CreateFile(name string, perm filesim.Perm, parentDir int32) (int32, error)
	CreateDirectory(name string, parentDir int32) (int32, error)
	CreateSymbolicLink(linkName, targetPath string, parentDir int32) (int32, error)
}

// Export walks srcPath (resolved from the namespace root) and writes every
// file, directory, and symlink it contains to w as a codec-wrapped tar
// stream. The subtree's own root is written under the name "." so Import
// can recreate it without assuming a particular mount name.
func Export(fsys namespace, srcPath string, w io.Writer, codec Codec) error {
	h, err := handlerFor(codec)
	if err != nil {
		return err
	}
	cw, err := h.NewWriter(w)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(cw)

	root, err := fsys.Resolve(srcPath, filesim.RootInode)
	if err != nil {
		tw.Close()
		cw.Close()
		return err
	}

	if err := exportTree(fsys, tw, root, "."); err != nil {
		tw.Close()
		cw.Close()
		return err
	}

	if err := tw.Close(); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

func exportTree(fsys namespace, tw *tar.Writer, inode int32, name string) error {
	ino, err := fsys.Stat(inode)
	if err != nil {
		return err
	}

	modTime := time.Unix(ino.ModifiedAt, 0)

	switch ino.Type {
	case filesim.TypeDir:
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     name + "/",
			Mode:     int64(filesim.FileMode(ino.Permissions, ino.Type).Perm()),
			ModTime:  modTime,
		}); err != nil {
			return err
		}

		entries, err := fsys.ReadDir(inode)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := exportTree(fsys, tw, e.Inode, path.Join(name, e.Name)); err != nil {
				return err
			}
		}
		return nil

	case filesim.TypeSymlink:
		target, err := fsys.ReadLink(inode)
		if err != nil {
			return err
		}
		return tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeSymlink,
			Name:     name,
			Linkname: target,
			Mode:     int64(filesim.FileMode(ino.Permissions, ino.Type).Perm()),
			ModTime:  modTime,
		})

	case filesim.TypeFile:
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Size:     int64(ino.Size),
			Mode:     int64(filesim.FileMode(ino.Permissions, ino.Type).Perm()),
			ModTime:  modTime,
		}); err != nil {
			return err
		}
		if ino.Size == 0 {
			return nil
		}

		fd, err := fsys.OpenStream(path.Base(name), ino.Parent)
		if err != nil {
			return err
		}
		defer fsys.Close(fd)

		data, err := fsys.Read(fd, int(ino.Size))
		if err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err

	default:
		return fmt.Errorf("archive: inode %d has unsupported type %s", inode, ino.Type)
	}
}

// Import reads a codec-wrapped tar stream produced by Export and recreates
// its entries under dstPath (resolved from the namespace root), which must
// already exist as a directory.
func Import(fsys namespace, r io.Reader, dstPath string, codec Codec) error {
	h, err := handlerFor(codec)
	if err != nil {
		return err
	}
	cr, err := h.NewReader(r)
	if err != nil {
		return err
	}
	defer cr.Close()

	dst, err := fsys.Resolve(dstPath, filesim.RootInode)
	if err != nil {
		return err
	}

	dirs := map[string]int32{".": dst}
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		clean := path.Clean(hdr.Name)
		if clean == "." {
			continue
		}
		parentName := path.Dir(clean)
		baseName := path.Base(clean)
		parent, ok := dirs[parentName]
		if !ok {
			return fmt.Errorf("archive: entry %q has no known parent directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			idx, err := fsys.CreateDirectory(baseName, parent)
			if err != nil {
				return err
			}
			dirs[clean] = idx

		case tar.TypeSymlink:
			if _, err := fsys.CreateSymbolicLink(baseName, hdr.Linkname, parent); err != nil {
				return err
			}

		case tar.TypeReg:
			perm, err := filesim.ParsePerm(permString(hdr.Mode))
			if err != nil {
				perm = filesim.Perm{'r', 'w', '-'}
			}
			if _, err := fsys.CreateFile(baseName, perm, parent); err != nil {
				return err
			}
			fd, err := fsys.OpenStream(baseName, parent)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(tr)
			if err != nil {
				fsys.Close(fd)
				return err
			}
			if len(data) > 0 {
				if _, err := fsys.Write(fd, data); err != nil {
					fsys.Close(fd)
					return err
				}
			}
			if err := fsys.Close(fd); err != nil {
				return err
			}

		default:
			// unsupported tar entry kinds (devices, fifos, hard links) are
			// silently skipped: the namespace has no inode type for them.
		}
	}
}

func permString(mode int64) string {
	s := []byte("---")
	if mode&0o400 != 0 {
		s[0] = 'r'
	}
	if mode&0o200 != 0 {
		s[1] = 'w'
	}
	if mode&0o100 != 0 {
		s[2] = 'x'
	}
	return string(s)
}
