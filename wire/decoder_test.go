package wire

import (
	"errors"
	"testing"

	"github.com/chazu/brine/codec"
	"github.com/chazu/brine/value"
)

// craftEnvelope frames a raw, uncompressed token stream into a minimal
// single-chunk envelope so malformed payloads can be fed to Decode.
func craftEnvelope(t *testing.T, h *Header, payload []byte) []byte {
	t.Helper()
	buf := NewBuffer()
	if err := writeEnvelopeHeader(buf, h); err != nil {
		t.Fatalf("writeEnvelopeHeader failed: %v", err)
	}
	if len(payload) > 0 {
		if err := writeUvarint(buf, uint64(len(payload))); err != nil {
			t.Fatalf("writeUvarint failed: %v", err)
		}
		if err := buf.Write(payload); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writeUvarint(buf, 0); err != nil {
		t.Fatalf("writeUvarint failed: %v", err)
	}
	return buf.Bytes()
}

func plainHeader() *Header {
	return &Header{Producer: HostVersion(), Codec: codec.None}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data, err := EncodeBytes(value.Int(1), nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	data[0] = 'X'
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestDecodeRejectsUnsupportedFormatVersion(t *testing.T) {
	data, err := EncodeBytes(value.Int(1), nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// Format version sits right after the 4-byte magic.
	data[4] = 0xFF
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestDecodeRejectsUnknownCodec(t *testing.T) {
	h := &Header{Producer: HostVersion(), Codec: codec.ID(999)}
	data := craftEnvelope(t, h, []byte{tagNil})
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, codec.ErrUnknownCodec) {
		t.Errorf("error = %v, want ErrUnknownCodec", err)
	}
}

func TestDecodeRejectsDanglingRef(t *testing.T) {
	// A back reference to id 5 when no objects have been decoded.
	data := craftEnvelope(t, plainHeader(), []byte{tagRef, 5})
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrDanglingRef) {
		t.Errorf("error = %v, want ErrDanglingRef", err)
	}
}

func TestDecodeSelfRefInsideOwnTable(t *testing.T) {
	// A table may reference itself from its own contents: ids register
	// before the decoder descends.
	payload := []byte{tagTable, 1, 0, tagRef, 0}
	data := craftEnvelope(t, plainHeader(), payload)
	res, err := DecodeBytes(data, HostVersion())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	tab := res.Value.Table()
	if tab.At(0).Table() != tab {
		t.Error("self reference did not resolve to the enclosing table")
	}
}

func TestDecodeRejectsHugeBlobLength(t *testing.T) {
	// A length prefix of 2^63 converts to a negative int; the decoder must
	// reject it instead of slicing with it.
	buf := NewBuffer()
	buf.Write([]byte{tagBytes})
	if err := writeUvarint(buf, uint64(1)<<63); err != nil {
		t.Fatalf("writeUvarint failed: %v", err)
	}
	data := craftEnvelope(t, plainHeader(), buf.Bytes())
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestDecodeRejectsHugeChunkLength(t *testing.T) {
	buf := NewBuffer()
	if err := writeEnvelopeHeader(buf, plainHeader()); err != nil {
		t.Fatalf("writeEnvelopeHeader failed: %v", err)
	}
	if err := writeUvarint(buf, uint64(1)<<63); err != nil {
		t.Fatalf("writeUvarint failed: %v", err)
	}
	data := buf.Bytes()

	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrFormat) {
		t.Errorf("Decode error = %v, want ErrFormat", err)
	}
	if _, _, err := Inspect(NewBufferBytes(data)); !errors.Is(err, ErrFormat) {
		t.Errorf("Inspect error = %v, want ErrFormat", err)
	}
}

func TestDecodeRejectsLengthPastEndOfInput(t *testing.T) {
	// Representable as an int but far beyond the remaining bytes: the
	// decoder must report truncation, not allocate terabytes first.
	buf := NewBuffer()
	buf.Write([]byte{tagBytes})
	if err := writeUvarint(buf, uint64(1)<<40); err != nil {
		t.Fatalf("writeUvarint failed: %v", err)
	}
	data := craftEnvelope(t, plainHeader(), buf.Bytes())
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrTruncated) {
		t.Errorf("error = %v, want ErrTruncated", err)
	}
}

func TestDecodeRejectsMissingSentinel(t *testing.T) {
	// The root value decodes completely, but the envelope ends before its
	// zero-length terminator frame.
	data, err := EncodeBytes(value.Int(7), nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := DecodeBytes(data[:len(data)-1], HostVersion()); !errors.Is(err, ErrTruncated) {
		t.Errorf("error = %v, want ErrTruncated", err)
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	// Token stream ends mid-value with no sentinel.
	data := craftEnvelope(t, plainHeader(), []byte{tagBytes, 10, 'a', 'b'})
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrTruncated) {
		t.Errorf("error = %v, want ErrTruncated", err)
	}
}

func TestDecodeRejectsTruncatedEnvelope(t *testing.T) {
	data, err := EncodeBytes(buildGraph(), &Options{Codec: codec.Snappy})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	for _, cut := range []int{2, 6, 10, len(data) / 2, len(data) - 1} {
		if _, err := DecodeBytes(data[:cut], HostVersion()); !errors.Is(err, ErrTruncated) {
			t.Errorf("cut=%d: error = %v, want ErrTruncated", cut, err)
		}
	}
}

func TestDecodeRejectsCorruptChunk(t *testing.T) {
	data, err := EncodeBytes(buildGraph(), &Options{Codec: codec.Zlib})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// Flip a byte deep inside the compressed chunk.
	data[len(data)-8] ^= 0xFF
	if _, err := DecodeBytes(data, HostVersion()); err == nil {
		t.Error("decode of corrupted zlib chunk succeeded")
	}
}

func TestDecodeUnknownTagWithoutHookFails(t *testing.T) {
	// Tags past the built-in range carry a length-prefixed payload handled
	// by the deserialize hook; without one the decode fails cleanly.
	data := craftEnvelope(t, plainHeader(), []byte{0x0A, 0x03, 1, 2, 3})
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("error = %v, want ErrUnsupportedValue", err)
	}
}

func TestDecodeUnknownTagWithHook(t *testing.T) {
	t.Cleanup(func() { SetHooks(nil, nil) })
	SetHooks(nil, func(payload []byte) (value.Value, error) {
		return value.Bytes(payload), nil
	})

	data := craftEnvelope(t, plainHeader(), []byte{0x0A, 0x03, 1, 2, 3})
	res, err := DecodeBytes(data, HostVersion())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	got := res.Value.Bytes()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("hook payload = %v, want [1 2 3]", got)
	}
}
