package wire

import (
	"fmt"
	"math"
	"os"

	"github.com/chazu/brine/codec"
	"github.com/chazu/brine/value"
)

// Result is a successfully decoded envelope. BytecodeUsable reports
// whether function bytecode in Value was produced by a compatible runtime;
// when false every decoded function still carries its bytecode bytes but
// has its own BytecodeUsable flag cleared, so callers know not to execute
// it. Version incompatibility never fails the decode.
type Result struct {
	Value          value.Value
	Producer       VersionInfo
	BytecodeUsable bool
}

// Decode parses the envelope from source and rebuilds the value graph,
// preserving the sharing topology the producer encoded: objects that
// shared identity at encode time share identity in the result, including
// self-cycles.
//
// consumer identifies the decoding runtime and is compared against the
// envelope's producer to derive BytecodeUsable. Decode either fully
// succeeds or fails with nothing usable; a corrupt envelope never yields a
// partial graph.
func Decode(src Source, consumer VersionInfo) (*Result, error) {
	h, err := ReadHeader(src)
	if err != nil {
		return nil, err
	}
	c, err := codec.Lookup(h.Codec)
	if err != nil {
		return nil, err
	}

	usable := h.Producer.BytecodeCompatible(consumer)
	d := &tokenDecoder{
		r:           &payloadReader{src: src, codec: c},
		deserialize: deserializeHook,
		bytecodeOK:  usable,
	}
	v, err := d.decodeValue()
	if err != nil {
		return nil, err
	}
	if err := d.r.finish(); err != nil {
		return nil, err
	}
	return &Result{Value: v, Producer: h.Producer, BytecodeUsable: usable}, nil
}

// DecodeBytes decodes an in-memory envelope.
func DecodeBytes(data []byte, consumer VersionInfo) (*Result, error) {
	return Decode(NewBufferBytes(data), consumer)
}

// DecodeFile decodes an envelope through a caller-owned open file. The
// handle is read through but never closed.
func DecodeFile(f *os.File, consumer VersionInfo) (*Result, error) {
	return Decode(NewFileSource(f), consumer)
}

// ReadFile decodes the envelope stored at path.
func ReadFile(path string, consumer VersionInfo) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeFile(f, consumer)
}

// ---------------------------------------------------------------------------
// Payload reader
// ---------------------------------------------------------------------------

// payloadReader presents the chunk sequence as one contiguous byte stream,
// decompressing chunks lazily as the token decoder consumes them. Only one
// uncompressed chunk is held in memory at a time.
type payloadReader struct {
	src    Source
	codec  codec.Codec
	cur    []byte
	off    int
	done   bool
	pos    uint64 // uncompressed bytes consumed, for error context
}

// nextChunk reads and decompresses the next chunk frame. Sets done on the
// sentinel.
func (p *payloadReader) nextChunk() error {
	n, err := readUvarintFrom(sourceBytes{src: p.src})
	if err != nil {
		return err
	}
	if n == 0 {
		p.done = true
		return nil
	}
	if n > math.MaxInt {
		return fmt.Errorf("%w: chunk length %d does not fit in memory", ErrFormat, n)
	}
	compressed, err := p.src.ReadFull(int(n))
	if err != nil {
		return err
	}
	p.cur, err = p.codec.Decompress(compressed)
	if err != nil {
		return err
	}
	p.off = 0
	return nil
}

// finish consumes the frames remaining after the last token, through the
// zero-length sentinel. A source that ends before the sentinel was
// truncated even when a complete root value came out of it.
func (p *payloadReader) finish() error {
	for !p.done {
		if err := p.nextChunk(); err != nil {
			return err
		}
	}
	return nil
}

func (p *payloadReader) readByte() (byte, error) {
	for p.off >= len(p.cur) {
		if p.done {
			return 0, fmt.Errorf("%w: token stream ends at offset %d", ErrTruncated, p.pos)
		}
		if err := p.nextChunk(); err != nil {
			return 0, err
		}
	}
	b := p.cur[p.off]
	p.off++
	p.pos++
	return b, nil
}

// read returns exactly n bytes, stitching across chunk boundaries.
func (p *payloadReader) read(n int) ([]byte, error) {
	if avail := len(p.cur) - p.off; avail >= n {
		// Fast path: the whole record is inside the current chunk.
		b := p.cur[p.off : p.off+n]
		p.off += n
		p.pos += uint64(n)
		return b, nil
	}
	// The record length came from an untrusted prefix; let the buffer grow
	// as chunks actually deliver bytes instead of sizing it up front.
	hint := n
	if hint > readStep {
		hint = readStep
	}
	out := make([]byte, 0, hint)
	for len(out) < n {
		if p.off >= len(p.cur) {
			if p.done {
				return nil, fmt.Errorf("%w: want %d bytes at offset %d, token stream ended",
					ErrTruncated, n, p.pos)
			}
			if err := p.nextChunk(); err != nil {
				return nil, err
			}
			continue
		}
		take := n - len(out)
		if avail := len(p.cur) - p.off; take > avail {
			take = avail
		}
		out = append(out, p.cur[p.off:p.off+take]...)
		p.off += take
		p.pos += uint64(take)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Token decoder
// ---------------------------------------------------------------------------

// tokenDecoder replays the token stream, materializing objects and
// resolving back-references. Objects register in encounter order before
// their contents decode, which is what makes cycles resolvable.
type tokenDecoder struct {
	r           *payloadReader
	objs        []value.Value
	deserialize DeserializeHook
	bytecodeOK  bool
}

func (d *tokenDecoder) decodeValue() (value.Value, error) {
	tag, err := d.r.readByte()
	if err != nil {
		return value.Nil, err
	}

	switch tag {
	case tagNil:
		return value.Nil, nil

	case tagTrue:
		return value.Bool(true), nil

	case tagFalse:
		return value.Bool(false), nil

	case tagInt:
		n, err := readVarintFrom(d.r)
		if err != nil {
			return value.Nil, err
		}
		return value.Int(n), nil

	case tagFloat:
		return d.decodeFloat()

	case tagBytes:
		b, err := d.decodeBlob()
		if err != nil {
			return value.Nil, err
		}
		return value.Bytes(b), nil

	case tagTable:
		return d.decodeTable()

	case tagFunction:
		return d.decodeFunction()

	case tagRef:
		id, err := readUvarintFrom(d.r)
		if err != nil {
			return value.Nil, err
		}
		if id >= uint64(len(d.objs)) {
			return value.Nil, fmt.Errorf("%w: id %d at offset %d (only %d objects seen)",
				ErrDanglingRef, id, d.r.pos, len(d.objs))
		}
		return d.objs[id], nil

	default:
		// Extension space: every tag at or above tagOpaque is a
		// length-prefixed payload owned by the hooks.
		payload, err := d.decodeBlob()
		if err != nil {
			return value.Nil, err
		}
		if d.deserialize == nil {
			return value.Nil, fmt.Errorf("%w: cannot decode tag 0x%02x", ErrUnsupportedValue, tag)
		}
		v, err := d.deserialize(payload)
		if err != nil {
			return value.Nil, fmt.Errorf("deserialize hook: %w", err)
		}
		return v, nil
	}
}

func (d *tokenDecoder) decodeFloat() (value.Value, error) {
	b, err := d.r.read(8)
	if err != nil {
		return value.Nil, err
	}
	return value.Float(readFloat64(b)), nil
}

// decodeBlob reads a uvarint length prefix and that many bytes, copying
// them out of the chunk buffer.
func (d *tokenDecoder) decodeBlob() ([]byte, error) {
	n, err := readUvarintFrom(d.r)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt {
		return nil, fmt.Errorf("%w: record length %d at offset %d does not fit in memory",
			ErrFormat, n, d.r.pos)
	}
	b, err := d.r.read(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (d *tokenDecoder) decodeTable() (value.Value, error) {
	arrayLen, err := readUvarintFrom(d.r)
	if err != nil {
		return value.Nil, err
	}
	mapLen, err := readUvarintFrom(d.r)
	if err != nil {
		return value.Nil, err
	}

	// Register before descending so cyclic references resolve.
	t := value.NewTable()
	tv := value.FromTable(t)
	d.objs = append(d.objs, tv)

	for i := uint64(0); i < arrayLen; i++ {
		elem, err := d.decodeValue()
		if err != nil {
			return value.Nil, err
		}
		t.Append(elem)
	}
	for i := uint64(0); i < mapLen; i++ {
		k, err := d.decodeValue()
		if err != nil {
			return value.Nil, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return value.Nil, err
		}
		t.Set(k, v)
	}
	return tv, nil
}

func (d *tokenDecoder) decodeFunction() (value.Value, error) {
	fn := &value.Function{BytecodeUsable: d.bytecodeOK}
	fv := value.FromFunction(fn)
	d.objs = append(d.objs, fv)

	bytecode, err := d.decodeBlob()
	if err != nil {
		return value.Nil, err
	}
	fn.Bytecode = bytecode

	upCount, err := readUvarintFrom(d.r)
	if err != nil {
		return value.Nil, err
	}
	for i := uint64(0); i < upCount; i++ {
		up, err := d.decodeValue()
		if err != nil {
			return value.Nil, err
		}
		fn.Upvalues = append(fn.Upvalues, up)
	}
	return fv, nil
}
