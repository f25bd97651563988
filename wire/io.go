package wire

import (
	"fmt"
	"io"
	"os"
)

// Sink is a byte destination for encoded envelopes.
type Sink interface {
	Write(p []byte) error
}

// Source is a byte origin for decoding. ReadFull either returns exactly n
// bytes or fails; a short read surfaces as ErrTruncated. Callers that want
// to distinguish a clean end of stream from truncation ask AtEOF
// explicitly.
type Source interface {
	ReadFull(n int) ([]byte, error)
	AtEOF() (bool, error)
}

// ---------------------------------------------------------------------------
// In-memory buffer
// ---------------------------------------------------------------------------

// Buffer is a growable in-memory Sink and cursor-based Source. Writes
// append; reads advance a cursor over the accumulated bytes. A Buffer used
// for decoding is typically constructed over existing bytes with
// NewBufferBytes.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer creates an empty buffer for encoding.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferBytes creates a buffer whose read cursor starts at the
// beginning of data. The slice is not copied.
func NewBufferBytes(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) error {
	b.data = append(b.data, p...)
	return nil
}

// ReadFull returns the next n bytes, advancing the cursor.
func (b *Buffer) ReadFull(n int) ([]byte, error) {
	// Compared against the remaining byte count rather than an end offset:
	// b.off+n overflows for the huge n a corrupt length prefix produces.
	if n > len(b.data)-b.off {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d",
			ErrTruncated, n, b.off, len(b.data)-b.off)
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	return p, nil
}

// AtEOF reports whether the cursor has consumed every byte.
func (b *Buffer) AtEOF() (bool, error) {
	return b.off >= len(b.data), nil
}

// Bytes returns the accumulated bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// ---------------------------------------------------------------------------
// File adapters
// ---------------------------------------------------------------------------

// FileSink writes through a caller-owned open file. The adapter neither
// opens nor closes the handle; its lifetime belongs to the caller.
type FileSink struct {
	f *os.File
}

// NewFileSink wraps an open file.
func NewFileSink(f *os.File) *FileSink {
	return &FileSink{f: f}
}

// Write writes p through the file handle.
func (s *FileSink) Write(p []byte) error {
	if _, err := s.f.Write(p); err != nil {
		return fmt.Errorf("write to file: %w", err)
	}
	return nil
}

// FileSource reads from a caller-owned open file. Like FileSink it never
// opens or closes the handle. A one-byte lookahead supports AtEOF without
// disturbing ReadFull.
type FileSource struct {
	f      *os.File
	peeked []byte
}

// NewFileSource wraps an open file.
func NewFileSource(f *os.File) *FileSource {
	return &FileSource{f: f}
}

// readStep caps per-step allocation in FileSource.ReadFull. Lengths come
// from untrusted prefixes, so the buffer grows as bytes actually arrive
// instead of being sized up front.
const readStep = 1 << 20

// ReadFull reads exactly n bytes from the file.
func (s *FileSource) ReadFull(n int) ([]byte, error) {
	hint := n
	if hint > readStep {
		hint = readStep
	}
	p := make([]byte, 0, hint)
	if len(s.peeked) > 0 {
		take := len(s.peeked)
		if take > n {
			take = n
		}
		p = append(p, s.peeked[:take]...)
		s.peeked = s.peeked[take:]
	}
	for len(p) < n {
		step := n - len(p)
		if step > readStep {
			step = readStep
		}
		start := len(p)
		p = append(p, make([]byte, step)...)
		m, err := io.ReadFull(s.f, p[start:])
		p = p[:start+m]
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: want %d bytes, read %d", ErrTruncated, n, len(p))
		}
		if err != nil {
			return nil, fmt.Errorf("read from file: %w", err)
		}
	}
	return p, nil
}

// AtEOF reports whether the file has no bytes left.
func (s *FileSource) AtEOF() (bool, error) {
	if len(s.peeked) > 0 {
		return false, nil
	}
	buf := make([]byte, 1)
	n, err := s.f.Read(buf)
	if n > 0 {
		s.peeked = buf[:n]
		return false, nil
	}
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read from file: %w", err)
	}
	return false, nil
}
