//go:build fuse

package main

import (
	"errors"
	"fmt"

	"github.com/nvoss/filesim"
	"github.com/nvoss/filesim/fusebridge"
)

// cmdMount mounts the current image read-only at mountpoint and blocks
// until the mount is unserved (ctrl-C, or a host `umount`), the same
// blocking-serve shape the teacher's own FUSE-backed cmd binary uses.
//
// fusebridge opens its own handle on the image, so this shell's handle is
// closed first to release the advisory lock (§5) and reopened once serving
// stops; the image is saved before the handle is released and reloaded
// once it is reacquired.
func (sh *shell) cmdMount(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: mount <mountpoint>")
	}

	if err := sh.fsys.Close(); err != nil {
		return err
	}

	server, mountErr := fusebridge.Mount(sh.imagePath, args[0])
	if mountErr == nil {
		fmt.Printf("mounted %s at %s (read-only); serving until unmounted\n", sh.imagePath, args[0])
		server.Wait()
	}

	fsys, err := filesim.Open(sh.imagePath)
	if err != nil {
		return err
	}
	sh.fsys = fsys

	return mountErr
}
