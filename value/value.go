// Package value defines the tagged value model encoded and decoded by the
// wire package: nil, booleans, integers, floats, byte strings, tables,
// functions, and host-defined opaque values.
//
// Tables and functions are heap objects with reference identity. Two
// structurally equal tables are still distinct values; sharing and cycles
// are expressed through ordinary Go pointers and preserved across
// serialization.
package value

// Kind identifies the variant stored in a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindTable
	KindFunction
	KindOpaque
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Value is a tagged variant. The zero Value is nil.
//
// Integers and floats are kept distinct: a Value holding int64(3) and a
// Value holding float64(3.0) have different kinds and encode with different
// tags, so round-trips never lose the discriminator.
type Value struct {
	kind Kind
	b    bool
	n    int64
	f    float64
	s    []byte
	tab  *Table
	fn   *Function
	op   *Opaque
}

// Nil is the nil value.
var Nil = Value{}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int creates an integer value.
func Int(n int64) Value {
	return Value{kind: KindInt, n: n}
}

// Float creates a float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Bytes creates a byte-string value. The slice is not copied; callers that
// mutate the backing array after construction see the mutation reflected.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, s: b}
}

// String creates a byte-string value from a Go string.
func String(s string) Value {
	return Value{kind: KindBytes, s: []byte(s)}
}

// FromTable creates a table value. Panics if t is nil.
func FromTable(t *Table) Value {
	if t == nil {
		panic("value.FromTable: nil table")
	}
	return Value{kind: KindTable, tab: t}
}

// FromFunction creates a function value. Panics if fn is nil.
func FromFunction(fn *Function) Value {
	if fn == nil {
		panic("value.FromFunction: nil function")
	}
	return Value{kind: KindFunction, fn: fn}
}

// FromOpaque creates an opaque value. Panics if op is nil.
func FromOpaque(op *Opaque) Value {
	if op == nil {
		panic("value.FromOpaque: nil opaque")
	}
	return Value{kind: KindOpaque, op: op}
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNil returns true if v is the nil value.
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// IsTable returns true if v holds a table.
func (v Value) IsTable() bool {
	return v.kind == KindTable
}

// IsFunction returns true if v holds a function.
func (v Value) IsFunction() bool {
	return v.kind == KindFunction
}

// IsOpaque returns true if v holds a host-defined opaque value.
func (v Value) IsOpaque() bool {
	return v.kind == KindOpaque
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Bool returns v as a bool. Panics if v is not a boolean.
func (v Value) Bool() bool {
	if v.kind != KindBool {
		panic("value.Value.Bool: not a boolean")
	}
	return v.b
}

// Int returns v as an int64. Panics if v is not an integer.
func (v Value) Int() int64 {
	if v.kind != KindInt {
		panic("value.Value.Int: not an integer")
	}
	return v.n
}

// Float returns v as a float64. Panics if v is not a float.
func (v Value) Float() float64 {
	if v.kind != KindFloat {
		panic("value.Value.Float: not a float")
	}
	return v.f
}

// Bytes returns the byte-string contents. Panics if v is not a byte string.
func (v Value) Bytes() []byte {
	if v.kind != KindBytes {
		panic("value.Value.Bytes: not a byte string")
	}
	return v.s
}

// Table returns the table pointer. Panics if v is not a table.
func (v Value) Table() *Table {
	if v.kind != KindTable {
		panic("value.Value.Table: not a table")
	}
	return v.tab
}

// Function returns the function pointer. Panics if v is not a function.
func (v Value) Function() *Function {
	if v.kind != KindFunction {
		panic("value.Value.Function: not a function")
	}
	return v.fn
}

// Opaque returns the opaque pointer. Panics if v is not opaque.
func (v Value) Opaque() *Opaque {
	if v.kind != KindOpaque {
		panic("value.Value.Opaque: not opaque")
	}
	return v.op
}

// ---------------------------------------------------------------------------
// Function and Opaque
// ---------------------------------------------------------------------------

// Function is a compiled function: a bytecode blob plus its captured
// variables. Functions participate in reference identity the same way
// tables do.
type Function struct {
	// Bytecode is the compiled body. It is always carried through
	// encode/decode unchanged; whether it is safe to execute is a
	// decode-time decision surfaced through BytecodeUsable.
	Bytecode []byte

	// Upvalues are the captured variables, in slot order. They may
	// reference tables, functions, or the function itself.
	Upvalues []Value

	// BytecodeUsable reports whether Bytecode was produced by a runtime
	// whose bytecode format matches the consumer's. New functions default
	// to usable; the decoder clears the flag on a version mismatch
	// instead of dropping the bytes.
	BytecodeUsable bool
}

// NewFunction creates a function with the given bytecode and no upvalues.
func NewFunction(bytecode []byte) *Function {
	return &Function{Bytecode: bytecode, BytecodeUsable: true}
}

// Opaque wraps a host-defined value the built-in tag set cannot represent.
// The wire package only touches it through the installed hook pair; this
// package never inspects Handle and never tracks opaques for identity.
type Opaque struct {
	Handle any
}

// NewOpaque wraps a host handle.
func NewOpaque(handle any) *Opaque {
	return &Opaque{Handle: handle}
}
