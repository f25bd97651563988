package value

// ---------------------------------------------------------------------------
// Reference tracking
// ---------------------------------------------------------------------------

// RefTracker assigns monotonically increasing ids to tables and functions
// by reference identity. The first encounter of an object assigns the next
// id; later encounters of the same pointer return the same id. Structurally
// equal but distinct objects get distinct ids.
type RefTracker struct {
	ids  map[any]uint64
	next uint64
}

// NewRefTracker creates an empty tracker.
func NewRefTracker() *RefTracker {
	return &RefTracker{ids: make(map[any]uint64)}
}

// Track registers the table or function held by v. Returns the object's id
// and whether this was the first encounter. Panics if v is not a table or
// function; opaques and primitives have no identity at this layer.
func (r *RefTracker) Track(v Value) (id uint64, first bool) {
	var key any
	switch v.kind {
	case KindTable:
		key = v.tab
	case KindFunction:
		key = v.fn
	default:
		panic("value.RefTracker.Track: " + v.kind.String() + " has no reference identity")
	}
	if id, ok := r.ids[key]; ok {
		return id, false
	}
	id = r.next
	r.ids[key] = id
	r.next++
	return id, true
}

// Count returns the number of distinct objects tracked.
func (r *RefTracker) Count() int {
	return len(r.ids)
}

// ---------------------------------------------------------------------------
// Graph walk
// ---------------------------------------------------------------------------

// Visitor receives walk events in depth-first order.
//
// For a table, EnterTable is followed by the events of every array element
// in index order, then by key and value events for every map entry in
// insertion order. For a function, EnterFunction is followed by the events
// of every upvalue in slot order. An object already visited produces a
// single Backref event and is not descended into again, so walks over
// cyclic graphs terminate.
type Visitor interface {
	// Leaf is called for nil, booleans, integers, floats, byte strings,
	// and opaque values.
	Leaf(v Value) error

	// EnterTable is called on the first encounter of a table.
	EnterTable(id uint64, t *Table) error

	// EnterFunction is called on the first encounter of a function.
	EnterFunction(id uint64, f *Function) error

	// Backref is called for a repeat encounter of an object already
	// visited under id.
	Backref(id uint64) error
}

// Walk traverses the value graph rooted at root, reporting every node to
// the visitor. Ids are assigned in encounter order starting at zero; the
// same graph always produces the same event sequence.
func Walk(root Value, v Visitor) error {
	return walk(root, v, NewRefTracker())
}

func walk(val Value, v Visitor, refs *RefTracker) error {
	switch val.kind {
	case KindTable:
		id, first := refs.Track(val)
		if !first {
			return v.Backref(id)
		}
		t := val.tab
		if err := v.EnterTable(id, t); err != nil {
			return err
		}
		for _, elem := range t.array {
			if err := walk(elem, v, refs); err != nil {
				return err
			}
		}
		for _, e := range t.entries {
			if err := walk(e.Key, v, refs); err != nil {
				return err
			}
			if err := walk(e.Value, v, refs); err != nil {
				return err
			}
		}
		return nil

	case KindFunction:
		id, first := refs.Track(val)
		if !first {
			return v.Backref(id)
		}
		fn := val.fn
		if err := v.EnterFunction(id, fn); err != nil {
			return err
		}
		for _, up := range fn.Upvalues {
			if err := walk(up, v, refs); err != nil {
				return err
			}
		}
		return nil

	default:
		return v.Leaf(val)
	}
}
