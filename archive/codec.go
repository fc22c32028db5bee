// Package archive moves a subtree of a filesim namespace to and from a host
// tar stream, so a simulated directory can be extracted onto the real
// filesystem or seeded from one. Compression is pluggable the same way the
// teacher codebase's own decompressor table is: Gzip always works, and
// build-tag-gated files register the richer codecs (zstd, xz) used
// elsewhere in the pack.
package archive

import (
	"fmt"
	"io"
)

// Codec identifies the compression wrapped around a tar stream.
type Codec uint16

const (
	Gzip Codec = 1
	XZ   Codec = 2
	ZSTD Codec = 3
)

func (c Codec) String() string {
	switch c {
	case Gzip:
		return "Gzip"
	case XZ:
		return "XZ"
	case ZSTD:
		return "ZSTD"
	}
	return fmt.Sprintf("Codec(%d)", c)
}

// CodecHandler wraps and unwraps a codec's framing around a raw byte
// stream. A codec that is compiled out has no handler registered at all.
type CodecHandler struct {
	NewReader func(io.Reader) (io.ReadCloser, error)
	NewWriter func(io.Writer) (io.WriteCloser, error)
}

var codecs = map[Codec]*CodecHandler{}

// RegisterCodec installs the handler for c, overwriting any previous
// registration. Called from each codec's own init().
func RegisterCodec(c Codec, h *CodecHandler) {
	codecs[c] = h
}

// handlerFor returns the registered handler for c, or an error naming the
// codec if it was not compiled in.
func handlerFor(c Codec) (*CodecHandler, error) {
	h, ok := codecs[c]
	if !ok {
		return nil, fmt.Errorf("archive: codec %s is not available in this build", c)
	}
	return h, nil
}
