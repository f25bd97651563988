package wire

import "errors"

// Fatal decode/encode conditions. All of them abort the current call; no
// partially rebuilt value graph is ever returned. Version incompatibility
// is deliberately not an error — it degrades to BytecodeUsable=false on
// the Result.
var (
	// ErrFormat marks an unknown or corrupt envelope: bad magic,
	// unsupported format version, or a malformed header or token stream.
	ErrFormat = errors.New("invalid envelope format")

	// ErrTruncated marks a source that ended mid-record.
	ErrTruncated = errors.New("unexpected end of input")

	// ErrDanglingRef marks a back-reference to an object id that has not
	// been materialized yet, which indicates envelope corruption.
	ErrDanglingRef = errors.New("back-reference to unseen object id")

	// ErrUnsupportedValue marks a value that has no built-in wire tag and
	// no installed hook to carry it.
	ErrUnsupportedValue = errors.New("unsupported value: no hook installed")
)
