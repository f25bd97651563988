package wire

import (
	"bytes"
	"fmt"
	"os"

	"github.com/chazu/brine/codec"
	"github.com/chazu/brine/value"
)

// Options configures an encode call.
type Options struct {
	// Codec selects the compression applied to each chunk. The zero value
	// is codec.None (identity transform).
	Codec codec.ID

	// ChunkLimit caps the uncompressed size of each chunk in bytes. Zero
	// means unbounded: the whole token stream goes into a single chunk.
	ChunkLimit uint64

	// Producer identifies the encoding runtime. Nil uses HostVersion().
	Producer *VersionInfo
}

// Encode serializes the value graph rooted at root into an envelope
// written to sink. opts may be nil for defaults (no compression, single
// chunk, host version).
//
// Encoding never discards data: function bytecode is always carried, and
// whether the consumer may execute it is decided at decode time. An opaque
// value with no serialize hook installed fails with ErrUnsupportedValue
// before any byte reaches the sink. A serialize hook that fails mid-walk
// has no such guarantee: the header, and with chunking any already-flushed
// chunks, will have reached a streaming sink by then.
func Encode(root value.Value, sink Sink, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	c, err := codec.Lookup(opts.Codec)
	if err != nil {
		return err
	}
	producer := HostVersion()
	if opts.Producer != nil {
		producer = *opts.Producer
	}

	serialize := serializeHook
	if serialize == nil {
		// With chunking enabled, chunks stream to the sink as they fill,
		// so a hookless opaque discovered mid-walk could leave a partial
		// envelope behind. Scan for one up front while nothing has been
		// written yet.
		if err := value.Walk(root, opaqueScan{}); err != nil {
			return err
		}
	}

	h := &Header{Producer: producer, Codec: opts.Codec, ChunkLimit: opts.ChunkLimit}
	if err := writeEnvelopeHeader(sink, h); err != nil {
		return err
	}

	cw := &chunkWriter{sink: sink, codec: c, limit: opts.ChunkLimit}
	enc := &tokenEncoder{w: cw, serialize: serialize}
	if err := value.Walk(root, enc); err != nil {
		return err
	}
	return cw.close()
}

// EncodeBytes serializes root into a fresh in-memory envelope.
func EncodeBytes(root value.Value, opts *Options) ([]byte, error) {
	buf := NewBuffer()
	if err := Encode(root, buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeFile serializes root through a caller-owned open file. The handle
// is written through but never closed.
func EncodeFile(root value.Value, f *os.File, opts *Options) error {
	return Encode(root, NewFileSink(f), opts)
}

// WriteFile serializes root to a new file at path.
func WriteFile(path string, root value.Value, opts *Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeFile(root, f, opts)
}

// ---------------------------------------------------------------------------
// Chunk writer
// ---------------------------------------------------------------------------

// chunkWriter splits the uncompressed token stream into segments of at
// most limit bytes, compresses each independently, and frames them onto
// the sink. Splits happen at byte granularity: a token may straddle a
// chunk boundary, and the decoder's payload reader stitches chunks back
// into one contiguous stream.
type chunkWriter struct {
	sink  Sink
	codec codec.Codec
	limit uint64 // 0 = unbounded single chunk
	seg   bytes.Buffer
}

func (w *chunkWriter) Write(p []byte) error {
	if w.limit == 0 {
		w.seg.Write(p)
		return nil
	}
	for len(p) > 0 {
		room := int(w.limit) - w.seg.Len()
		if room == 0 {
			if err := w.flush(); err != nil {
				return err
			}
			room = int(w.limit)
		}
		take := len(p)
		if take > room {
			take = room
		}
		w.seg.Write(p[:take])
		p = p[take:]
	}
	return nil
}

// flush compresses the current segment and writes one chunk frame.
func (w *chunkWriter) flush() error {
	if w.seg.Len() == 0 {
		return nil
	}
	compressed, err := w.codec.Compress(w.seg.Bytes())
	if err != nil {
		return err
	}
	w.seg.Reset()
	if err := writeUvarint(w.sink, uint64(len(compressed))); err != nil {
		return err
	}
	return w.sink.Write(compressed)
}

// close flushes the trailing segment and writes the sentinel frame.
func (w *chunkWriter) close() error {
	if err := w.flush(); err != nil {
		return err
	}
	return writeUvarint(w.sink, 0)
}

// ---------------------------------------------------------------------------
// Token encoder
// ---------------------------------------------------------------------------

// tokenEncoder serializes walk events into the token stream. Ids assigned
// by the walk are implicit in tag order on the wire.
type tokenEncoder struct {
	w         Sink
	serialize SerializeHook
}

func (e *tokenEncoder) Leaf(v value.Value) error {
	switch v.Kind() {
	case value.KindNil:
		return e.w.Write([]byte{tagNil})
	case value.KindBool:
		if v.Bool() {
			return e.w.Write([]byte{tagTrue})
		}
		return e.w.Write([]byte{tagFalse})
	case value.KindInt:
		if err := e.w.Write([]byte{tagInt}); err != nil {
			return err
		}
		return writeVarint(e.w, v.Int())
	case value.KindFloat:
		if err := e.w.Write([]byte{tagFloat}); err != nil {
			return err
		}
		return writeFloat64(e.w, v.Float())
	case value.KindBytes:
		b := v.Bytes()
		if err := e.w.Write([]byte{tagBytes}); err != nil {
			return err
		}
		if err := writeUvarint(e.w, uint64(len(b))); err != nil {
			return err
		}
		return e.w.Write(b)
	case value.KindOpaque:
		if e.serialize == nil {
			return fmt.Errorf("%w: cannot encode opaque value", ErrUnsupportedValue)
		}
		payload, err := e.serialize(v.Opaque())
		if err != nil {
			return fmt.Errorf("serialize hook: %w", err)
		}
		if err := e.w.Write([]byte{tagOpaque}); err != nil {
			return err
		}
		if err := writeUvarint(e.w, uint64(len(payload))); err != nil {
			return err
		}
		return e.w.Write(payload)
	default:
		return fmt.Errorf("%w: kind %s", ErrUnsupportedValue, v.Kind())
	}
}

func (e *tokenEncoder) EnterTable(id uint64, t *value.Table) error {
	if err := e.w.Write([]byte{tagTable}); err != nil {
		return err
	}
	if err := writeUvarint(e.w, uint64(t.ArrayLen())); err != nil {
		return err
	}
	return writeUvarint(e.w, uint64(t.MapLen()))
}

func (e *tokenEncoder) EnterFunction(id uint64, f *value.Function) error {
	if err := e.w.Write([]byte{tagFunction}); err != nil {
		return err
	}
	if err := writeUvarint(e.w, uint64(len(f.Bytecode))); err != nil {
		return err
	}
	if err := e.w.Write(f.Bytecode); err != nil {
		return err
	}
	return writeUvarint(e.w, uint64(len(f.Upvalues)))
}

func (e *tokenEncoder) Backref(id uint64) error {
	if err := e.w.Write([]byte{tagRef}); err != nil {
		return err
	}
	return writeUvarint(e.w, id)
}

// ---------------------------------------------------------------------------
// Pre-flight opaque scan
// ---------------------------------------------------------------------------

// opaqueScan walks a graph looking for opaque values when no serialize
// hook is installed, so the failure happens before the envelope header is
// written.
type opaqueScan struct{}

func (opaqueScan) Leaf(v value.Value) error {
	if v.IsOpaque() {
		return fmt.Errorf("%w: cannot encode opaque value", ErrUnsupportedValue)
	}
	return nil
}

func (opaqueScan) EnterTable(id uint64, t *value.Table) error       { return nil }
func (opaqueScan) EnterFunction(id uint64, f *value.Function) error { return nil }
func (opaqueScan) Backref(id uint64) error                          { return nil }
