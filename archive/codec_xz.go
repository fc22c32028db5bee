//go:build xz

package archive

import (
	"io"

	"github.com/ulikunitz/xz"
)

func init() {
	RegisterCodec(XZ, &CodecHandler{
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			rc, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(rc), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
	})
}
