package archive

import (
	"compress/gzip"
	"io"
)

func init() {
	RegisterCodec(Gzip, &CodecHandler{
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
	})
}
