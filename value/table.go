package value

// Table is the aggregate value: a dense array part plus an
// insertion-ordered map part whose keys are themselves Values.
//
// The map part preserves insertion order on iteration so encode output is
// deterministic and a round-trip reproduces the order the producer built.
// Primitive keys (nil, bool, int, float, byte string) are looked up by
// content; table, function, and opaque keys are looked up by pointer
// identity.
type Table struct {
	array []Value

	entries []Entry
	index   map[mapKey]int
}

// Entry is one key/value pair of the map part.
type Entry struct {
	Key   Value
	Value Value
}

// mapKey is the comparable lookup form of a key Value. One of:
// nilKey, bool, int64, float64, string (byte-string content), *Table,
// *Function, *Opaque.
type mapKey any

type nilKey struct{}

func keyOf(k Value) mapKey {
	switch k.kind {
	case KindNil:
		return nilKey{}
	case KindBool:
		return k.b
	case KindInt:
		return k.n
	case KindFloat:
		return k.f
	case KindBytes:
		return string(k.s)
	case KindTable:
		return k.tab
	case KindFunction:
		return k.fn
	case KindOpaque:
		return k.op
	default:
		return nilKey{}
	}
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[mapKey]int)}
}

// ---------------------------------------------------------------------------
// Array part
// ---------------------------------------------------------------------------

// Append adds a value to the end of the array part.
func (t *Table) Append(v Value) {
	t.array = append(t.array, v)
}

// ArrayLen returns the length of the array part.
func (t *Table) ArrayLen() int {
	return len(t.array)
}

// At returns the array element at index i. Panics if out of range.
func (t *Table) At(i int) Value {
	return t.array[i]
}

// SetAt replaces the array element at index i. Panics if out of range.
func (t *Table) SetAt(i int, v Value) {
	t.array[i] = v
}

// Array returns the array part. The slice is shared, not copied.
func (t *Table) Array() []Value {
	return t.array
}

// ---------------------------------------------------------------------------
// Map part
// ---------------------------------------------------------------------------

// Set inserts or replaces the value for key k. A new key is appended to
// the iteration order; replacing an existing key keeps its position.
func (t *Table) Set(k, v Value) {
	mk := keyOf(k)
	if i, ok := t.index[mk]; ok {
		t.entries[i].Value = v
		return
	}
	t.index[mk] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: k, Value: v})
}

// Get returns the value for key k and whether the key is present.
func (t *Table) Get(k Value) (Value, bool) {
	i, ok := t.index[keyOf(k)]
	if !ok {
		return Nil, false
	}
	return t.entries[i].Value, true
}

// Delete removes key k, preserving the insertion order of the remaining
// entries. Returns true if the key was present.
func (t *Table) Delete(k Value) bool {
	mk := keyOf(k)
	i, ok := t.index[mk]
	if !ok {
		return false
	}
	delete(t.index, mk)
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	for j := i; j < len(t.entries); j++ {
		t.index[keyOf(t.entries[j].Key)] = j
	}
	return true
}

// MapLen returns the number of map entries.
func (t *Table) MapLen() int {
	return len(t.entries)
}

// Entries returns the map part in insertion order. The slice is shared,
// not copied.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Len returns the total number of elements, array part plus map part.
func (t *Table) Len() int {
	return len(t.array) + len(t.entries)
}
