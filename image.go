package filesim

import (
	"os"

	"golang.org/x/sys/unix"
)

// image is the byte-addressable host file backing the simulation: a control
// region at offset 0 followed by NumBlocks*BlockSize bytes of data blocks.
// It never interprets the bytes it moves.
type image struct {
	path string
	f    *os.File
}

// dataOffset returns the absolute image offset of the first byte of block b.
func dataOffset(b int32) int64 {
	return int64(controlSize) + int64(b)*BlockSize
}

// openImage opens path for read/write, reporting whether it already existed.
func openImage(path string) (*image, bool, error) {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, err
	}
	return &image{path: path, f: f}, existed, nil
}

// format truncates the image to its full size and zeroes the data region,
// as required at initial format time; the control region is written
// separately by (*FS).Save once the in-memory structures are initialized.
func (im *image) format() error {
	size := int64(controlSize) + int64(NumBlocks)*BlockSize
	if err := im.f.Truncate(size); err != nil {
		return err
	}

	zero := make([]byte, BlockSize)
	for b := int32(0); b < NumBlocks; b++ {
		if _, err := im.f.WriteAt(zero, dataOffset(b)); err != nil {
			return err
		}
	}
	return nil
}

func (im *image) readByte(off int64) (byte, error) {
	var buf [1]byte
	if _, err := im.f.ReadAt(buf[:], off); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (im *image) writeByte(off int64, b byte) error {
	buf := [1]byte{b}
	_, err := im.f.WriteAt(buf[:], off)
	return err
}

// lock acquires an advisory exclusive lock on the image file descriptor,
// mirroring the C original's flock(fd, LOCK_EX). It is the caller's
// responsibility to lock before loading and unlock after saving (§5).
func (im *image) lock() error {
	return unix.Flock(int(im.f.Fd()), unix.LOCK_EX)
}

func (im *image) unlock() error {
	return unix.Flock(int(im.f.Fd()), unix.LOCK_UN)
}

func (im *image) close() error {
	return im.f.Close()
}
