package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (*zstdCodec) ID() ID       { return Zstd }
func (*zstdCodec) Name() string { return "ZSTD" }

func (c *zstdCodec) Compress(src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, nil), nil
}

func (c *zstdCodec) Decompress(src []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptData, err)
	}
	return out, nil
}

func init() {
	// EncodeAll/DecodeAll with a nil stream are safe for concurrent use,
	// so one encoder/decoder pair serves the whole process.
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return
	}
	register(&zstdCodec{enc: enc, dec: dec})
}
