package codec

import (
	"fmt"

	"github.com/klauspost/compress/snappy"
)

type snappyCodec struct{}

func (snappyCodec) ID() ID       { return Snappy }
func (snappyCodec) Name() string { return "SNAPPY" }

func (snappyCodec) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) Decompress(src []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %v", ErrCorruptData, err)
	}
	return out, nil
}

func init() {
	register(snappyCodec{})
}
