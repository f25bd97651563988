// Package wire implements the brine envelope: a self-describing,
// versioned, optionally compressed and chunked binary encoding of a value
// graph.
//
// Envelope layout:
//
//	magic (4 bytes) | format version (u32 LE) | header length (u32 LE) |
//	CBOR header | chunks | sentinel
//
// The CBOR header carries the producer's VersionInfo, the codec id, and
// the chunk size limit. Each chunk is a uvarint compressed-length prefix
// followed by the compressed bytes of one segment of the token stream;
// segments are compressed independently so very large graphs stream to and
// from a file without materializing the whole payload. A zero-length
// prefix terminates the chunk sequence.
package wire

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/brine/codec"
)

// Magic identifies a brine envelope.
var Magic = [4]byte{'B', 'R', 'N', 'E'}

// Envelope format version.
// v1: initial format
const FormatVersion uint32 = 1

// Header is the decoded envelope header.
type Header struct {
	Producer   VersionInfo `cbor:"producer"`
	Codec      codec.ID    `cbor:"codec"`
	ChunkLimit uint64      `cbor:"chunkLimit"`
}

// cborEncMode is the canonical CBOR encoding mode used for headers, so a
// given header always encodes to the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// writeEnvelopeHeader writes magic, format version, and the CBOR header.
func writeEnvelopeHeader(s Sink, h *Header) error {
	body, err := cborEncMode.Marshal(h)
	if err != nil {
		return fmt.Errorf("wire: marshal header: %w", err)
	}
	if err := s.Write(Magic[:]); err != nil {
		return err
	}
	if err := writeUint32(s, FormatVersion); err != nil {
		return err
	}
	if err := writeUint32(s, uint32(len(body))); err != nil {
		return err
	}
	return s.Write(body)
}

// ReadHeader reads and validates the envelope header, leaving the source
// positioned at the first chunk. Decode calls this internally; it is
// exported for tooling that inspects envelopes without decoding them.
func ReadHeader(src Source) (*Header, error) {
	magic, err := src.ReadFull(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic)
	}
	version, err := readUint32(src)
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d (consumer supports %d)",
			ErrFormat, version, FormatVersion)
	}
	bodyLen, err := readUint32(src)
	if err != nil {
		return nil, err
	}
	body, err := src.ReadFull(int(bodyLen))
	if err != nil {
		return nil, err
	}
	var h Header
	if err := cbor.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("%w: unmarshal header: %v", ErrFormat, err)
	}
	return &h, nil
}

// ChunkInfo describes one chunk frame in an envelope.
type ChunkInfo struct {
	CompressedLen uint64
}

// Inspect reads an envelope's header and chunk layout without
// decompressing or decoding the payload.
func Inspect(src Source) (*Header, []ChunkInfo, error) {
	h, err := ReadHeader(src)
	if err != nil {
		return nil, nil, err
	}
	sb := sourceBytes{src: src}
	var chunks []ChunkInfo
	for {
		n, err := readUvarintFrom(sb)
		if err != nil {
			return nil, nil, err
		}
		if n == 0 {
			return h, chunks, nil
		}
		if n > math.MaxInt {
			return nil, nil, fmt.Errorf("%w: chunk length %d does not fit in memory", ErrFormat, n)
		}
		if _, err := src.ReadFull(int(n)); err != nil {
			return nil, nil, err
		}
		chunks = append(chunks, ChunkInfo{CompressedLen: n})
	}
}

// sourceBytes adapts a Source to single-byte reads for varint decoding of
// chunk length prefixes.
type sourceBytes struct {
	src Source
}

func (s sourceBytes) readByte() (byte, error) {
	p, err := s.src.ReadFull(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}
