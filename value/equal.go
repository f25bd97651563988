package value

import "bytes"

// Equal reports structural equality of two value graphs. Tables compare by
// array contents and by map entries in insertion order; functions compare
// by bytecode and upvalues; opaques compare by handle pointer. Shared and
// cyclic structure is handled by memoizing object pairs already under
// comparison, so Equal terminates on self-referential graphs.
//
// Equal checks structure, not sharing topology: a graph where two fields
// alias one table compares equal to one where they hold two identical
// copies. Identity preservation is asserted separately with pointer
// comparisons.
func Equal(a, b Value) bool {
	return equal(a, b, make(map[[2]any]bool))
}

func equal(a, b Value, seen map[[2]any]bool) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.n == b.n
	case KindFloat:
		return a.f == b.f
	case KindBytes:
		return bytes.Equal(a.s, b.s)
	case KindOpaque:
		return a.op == b.op

	case KindTable:
		pair := [2]any{a.tab, b.tab}
		if seen[pair] {
			return true
		}
		seen[pair] = true
		ta, tb := a.tab, b.tab
		if len(ta.array) != len(tb.array) || len(ta.entries) != len(tb.entries) {
			return false
		}
		for i := range ta.array {
			if !equal(ta.array[i], tb.array[i], seen) {
				return false
			}
		}
		for i := range ta.entries {
			if !equal(ta.entries[i].Key, tb.entries[i].Key, seen) {
				return false
			}
			if !equal(ta.entries[i].Value, tb.entries[i].Value, seen) {
				return false
			}
		}
		return true

	case KindFunction:
		pair := [2]any{a.fn, b.fn}
		if seen[pair] {
			return true
		}
		seen[pair] = true
		fa, fb := a.fn, b.fn
		if !bytes.Equal(fa.Bytecode, fb.Bytecode) {
			return false
		}
		if len(fa.Upvalues) != len(fb.Upvalues) {
			return false
		}
		for i := range fa.Upvalues {
			if !equal(fa.Upvalues[i], fb.Upvalues[i], seen) {
				return false
			}
		}
		return true

	default:
		return false
	}
}
