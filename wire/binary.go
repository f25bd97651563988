package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Little-endian fixed-width and variable-length integer plumbing shared by
// the envelope and the token stream.

func writeUint32(s Sink, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return s.Write(buf[:])
}

func readUint32(src Source) (uint32, error) {
	p, err := src.ReadFull(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func writeFloat64(s Sink, f float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	return s.Write(buf[:])
}

func readFloat64(p []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(p))
}

// writeUvarint writes a variable-length unsigned integer, 7 bits per byte
// with the high bit as continuation flag.
func writeUvarint(s Sink, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return s.Write(buf[:n])
}

// writeVarint writes a zigzag-encoded signed integer, keeping small
// magnitudes small in either sign.
func writeVarint(s Sink, v int64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutVarint(buf[:], v)
	return s.Write(buf[:n])
}

// byteSource is the single-byte read both varint decoders pull from. The
// payload reader implements it over decompressed chunks.
type byteSource interface {
	readByte() (byte, error)
}

func readUvarintFrom(r byteSource) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i == binary.MaxVarintLen64 {
			return 0, fmt.Errorf("%w: uvarint overflows 64 bits", ErrFormat)
		}
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, fmt.Errorf("%w: uvarint overflows 64 bits", ErrFormat)
			}
			return v | uint64(b)<<shift, nil
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
}

func readVarintFrom(r byteSource) (int64, error) {
	uv, err := readUvarintFrom(r)
	if err != nil {
		return 0, err
	}
	// Zigzag decode: (uv >> 1) ^ -(uv & 1)
	return int64(uv>>1) ^ -int64(uv&1), nil
}
