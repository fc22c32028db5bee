//go:build !fuse

package main

import "errors"

// cmdMount reports that this binary was built without the fuse tag, the
// same graceful-degradation shape the teacher uses for a compressor that
// wasn't registered at build time.
func (sh *shell) cmdMount(args []string) error {
	return errors.New("mount: FUSE support was not compiled in (build with -tags fuse)")
}
