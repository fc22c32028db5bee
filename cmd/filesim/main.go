// Command filesim runs an interactive shell over a single-file simulated
// filesystem image, the same way the teacher tool's cmd binary drives its
// own image format from the command line.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/nvoss/filesim"
)

const imageName = "filesystem.img"

const usage = `filesim - single-file simulated filesystem shell

Usage:
  filesim [-h] [-i]

Options:
  -h    Show this help message and exit
  -i    Force a fresh image, creating /usr, /home, and /usr/local and
        starting the session in /home

Interactive commands:
  cd <path>                        change directory
  chmod <file> <perms>             change permissions (e.g. rwx, r--)
  cp <src> <newname> <dest_path>   copy a file or directory
  exit                             leave the shell
  help                             show this message
  ln <filename> <linkname> <path>  hard-link filename into path
  ls [path]                        list the current, or given, directory
  mkdir <dir>                      create a directory
  mount <mountpoint>               mount the image read-only over FUSE (build tag "fuse")
  mv <src> <dest_path>             move a file or directory
  pwd                              print the current directory
  remdir <dir>                     recursively remove a directory
  rm <file>                        remove a file
  rfile <filename>                 print a file's contents
  stat <file>                      print inode information
  sym <target> <linkname>          create a symbolic link
  touch <file>                     create an empty file
  wfile <file> <add|rewrite> <text> write to a file
`

func main() {
	help := flag.Bool("h", false, "show help and exit")
	initFresh := flag.Bool("i", false, "force reinitialization of a fresh image")
	flag.Parse()

	if *help {
		fmt.Print(usage)
		os.Exit(0)
	}

	var fsys *filesim.FS
	var err error
	if *initFresh {
		fsys, err = filesim.New(imageName)
	} else {
		fsys, err = filesim.Open(imageName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "filesim: %s\n", err)
		os.Exit(1)
	}
	defer fsys.Close()

	if *initFresh {
		if err := bootstrapFresh(fsys); err != nil {
			fmt.Fprintf(os.Stderr, "filesim: %s\n", err)
			os.Exit(1)
		}
	}

	sh := &shell{fsys: fsys, imagePath: imageName}
	sh.run()
}

// bootstrapFresh lays out the standard initial tree the -i flag promises:
// /usr, /home, /usr/local, with the session starting inside /home.
func bootstrapFresh(fsys *filesim.FS) error {
	home, err := fsys.CreateDirectory("home", filesim.RootInode)
	if err != nil {
		return err
	}
	usr, err := fsys.CreateDirectory("usr", filesim.RootInode)
	if err != nil {
		return err
	}
	if _, err := fsys.CreateDirectory("local", usr); err != nil {
		return err
	}
	fsys.SetCurrentDir(home)
	return fsys.Save()
}

type shell struct {
	fsys      *filesim.FS
	imagePath string
}

func (sh *shell) run() {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt, err := sh.fsys.Abs(sh.fsys.CurrentDir())
		if err != nil {
			prompt = "?"
		}
		fmt.Printf("fs:%s$ ", prompt)

		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if cmd == "exit" {
			return
		}

		if err := sh.dispatch(cmd, args, line); err != nil {
			fmt.Printf("error: %s\n", err)
		}

		if err := sh.fsys.Save(); err != nil {
			fmt.Printf("error saving filesystem: %s\n", err)
		}
	}
}

func (sh *shell) dispatch(cmd string, args []string, line string) error {
	switch cmd {
	case "help":
		fmt.Print(usage)
		return nil
	case "pwd":
		return sh.cmdPwd()
	case "ls":
		return sh.cmdLs(args)
	case "cd":
		return sh.cmdCd(args)
	case "mkdir":
		return sh.cmdMkdir(args)
	case "mount":
		return sh.cmdMount(args)
	case "touch":
		return sh.cmdTouch(args)
	case "rm":
		return sh.cmdRm(args)
	case "remdir":
		return sh.cmdRemdir(args)
	case "cp":
		return sh.cmdCp(args)
	case "mv":
		return sh.cmdMv(args)
	case "ln":
		return sh.cmdLn(args)
	case "sym":
		return sh.cmdSym(args)
	case "rfile":
		return sh.cmdRfile(args)
	case "wfile":
		return sh.cmdWfile(args, line)
	case "stat":
		return sh.cmdStat(args)
	case "chmod":
		return sh.cmdChmod(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (sh *shell) cmdPwd() error {
	abs, err := sh.fsys.Abs(sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	fmt.Println(abs)
	return nil
}

func (sh *shell) cmdLs(args []string) error {
	dir := sh.fsys.CurrentDir()
	if len(args) > 0 {
		target, err := sh.fsys.Resolve(args[0], sh.fsys.CurrentDir())
		if err != nil {
			return err
		}
		dir = target
	}
	entries, err := sh.fsys.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e.Name)
	}
	return nil
}

func (sh *shell) cmdCd(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cd <path>")
	}
	target, err := sh.fsys.Resolve(args[0], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	ino, err := sh.fsys.Stat(target)
	if err != nil {
		return err
	}
	if ino.Type != filesim.TypeDir {
		return filesim.ErrWrongType
	}
	sh.fsys.SetCurrentDir(target)
	return nil
}

func (sh *shell) cmdMkdir(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: mkdir <dir>")
	}
	_, err := sh.fsys.CreateDirectory(args[0], sh.fsys.CurrentDir())
	return err
}

func (sh *shell) cmdTouch(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: touch <file>")
	}
	_, err := sh.fsys.CreateFile(args[0], filesim.Perm{'r', 'w', '-'}, sh.fsys.CurrentDir())
	return err
}

func (sh *shell) cmdRm(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rm <file>")
	}
	return sh.fsys.DeleteFile(args[0], sh.fsys.CurrentDir())
}

func (sh *shell) cmdRemdir(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remdir <dir>")
	}
	return sh.fsys.DeleteDirectory(args[0], sh.fsys.CurrentDir())
}

func (sh *shell) cmdCp(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: cp <src> <newname> <dest_path>")
	}
	dest, err := sh.fsys.Resolve(args[2], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	srcInode, err := sh.fsys.Resolve(args[0], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	ino, err := sh.fsys.Stat(srcInode)
	if err != nil {
		return err
	}
	if ino.Type == filesim.TypeDir {
		_, err = sh.fsys.CopyDirectory(args[0], args[1], sh.fsys.CurrentDir(), dest)
	} else {
		_, err = sh.fsys.CopyFile(args[0], args[1], sh.fsys.CurrentDir(), dest)
	}
	return err
}

func (sh *shell) cmdMv(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: mv <src> <dest_path>")
	}
	dest, err := sh.fsys.Resolve(args[1], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	srcInode, err := sh.fsys.Resolve(args[0], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	ino, err := sh.fsys.Stat(srcInode)
	if err != nil {
		return err
	}
	if ino.Type == filesim.TypeDir {
		return sh.fsys.MoveDirectory(args[0], sh.fsys.CurrentDir(), dest)
	}
	return sh.fsys.MoveFile(args[0], sh.fsys.CurrentDir(), dest)
}

func (sh *shell) cmdLn(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: ln <filename> <linkname> <path>")
	}
	dest, err := sh.fsys.Resolve(args[2], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	return sh.fsys.CreateHardLink(args[1], args[0], sh.fsys.CurrentDir(), dest)
}

func (sh *shell) cmdSym(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: sym <target> <linkname>")
	}
	_, err := sh.fsys.CreateSymbolicLink(args[1], args[0], sh.fsys.CurrentDir())
	return err
}

func (sh *shell) cmdRfile(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rfile <filename>")
	}
	dir, err := sh.fsys.Resolve(path.Dir(args[0]), sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	fd, err := sh.fsys.OpenStream(path.Base(args[0]), dir)
	if err != nil {
		return err
	}
	defer sh.fsys.Close(fd)

	target, err := sh.fsys.Resolve(args[0], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	ino, err := sh.fsys.Stat(target)
	if err != nil {
		return err
	}
	if ino.Type == filesim.TypeSymlink {
		linkTarget, err := sh.fsys.ReadLink(target)
		if err == nil {
			target, err = sh.fsys.Resolve(linkTarget, dir)
		}
		if err == nil {
			ino, err = sh.fsys.Stat(target)
		}
		if err != nil {
			return err
		}
	}

	if err := sh.fsys.Seek(fd, 0, filesim.SeekStart); err != nil {
		return err
	}
	data, err := sh.fsys.Read(fd, int(ino.Size))
	if err != nil {
		return err
	}
	fmt.Printf("contenu du fichier : %s\n", data)
	return nil
}

func (sh *shell) cmdWfile(args []string, line string) error {
	if len(args) < 2 {
		return errors.New("usage: wfile <filename> <add|rewrite> <text>")
	}
	name, mode := args[0], args[1]

	prefix := fmt.Sprintf("wfile %s %s ", name, mode)
	idx := strings.Index(line, prefix)
	var text string
	if idx >= 0 {
		text = line[idx+len(prefix):]
	} else if len(args) > 2 {
		text = strings.Join(args[2:], " ")
	}

	fd, err := sh.fsys.OpenStream(name, sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	defer sh.fsys.Close(fd)

	switch mode {
	case "add":
		if err := sh.fsys.Seek(fd, 0, filesim.SeekEnd); err != nil {
			return err
		}
	case "rewrite":
		if err := sh.fsys.Seek(fd, 0, filesim.SeekStart); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unrecognized write mode %q", mode)
	}

	_, err = sh.fsys.Write(fd, []byte(text))
	return err
}

func (sh *shell) cmdStat(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: stat <file>")
	}
	target, err := sh.fsys.Resolve(args[0], sh.fsys.CurrentDir())
	if err != nil {
		return err
	}
	ino, err := sh.fsys.Stat(target)
	if err != nil {
		return err
	}
	fmt.Printf("inode:       %d\n", ino.ID)
	fmt.Printf("type:        %s\n", ino.Type)
	fmt.Printf("size:        %d\n", ino.Size)
	fmt.Printf("permissions: %s\n", ino.Permissions)
	fmt.Printf("link_count:  %d\n", ino.LinkCount)
	return nil
}

func (sh *shell) cmdChmod(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: chmod <file> <perms>")
	}
	perm, err := filesim.ParsePerm(args[1])
	if err != nil {
		return err
	}
	return sh.fsys.ChangePermissions(args[0], perm, sh.fsys.CurrentDir())
}
