package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// lzma2Codec carries LZMA2 streams in an xz container.
type lzma2Codec struct{}

func (lzma2Codec) ID() ID       { return LZMA2 }
func (lzma2Codec) Name() string { return "LZMA2" }

func (lzma2Codec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma2 compress: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("lzma2 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma2 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (lzma2Codec) Decompress(src []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma2: %v", ErrCorruptData, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: lzma2: %v", ErrCorruptData, err)
	}
	return out, nil
}

func init() {
	register(lzma2Codec{})
}
