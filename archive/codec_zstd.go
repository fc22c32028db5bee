//go:build zstd

package archive

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func init() {
	RegisterCodec(ZSTD, &CodecHandler{
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	})
}
