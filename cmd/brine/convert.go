package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/brine/value"
)

// JSON is the CLI's surface syntax for value graphs. The mapping is lossy
// in both directions by nature: JSON has no functions, no opaques, no
// non-string keys, and no sharing. It exists so the tool has a readable
// input and output, not as a second wire format.

// valueFromJSON builds a value graph from a JSON document. Objects become
// tables with map parts, arrays become tables with array parts, and
// numbers become ints when they have no fractional part.
func valueFromJSON(data []byte) (value.Value, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return value.Nil, fmt.Errorf("parse JSON: %w", err)
	}
	return fromJSON(doc)
}

func fromJSON(doc any) (value.Value, error) {
	switch v := doc.(type) {
	case nil:
		return value.Nil, nil
	case bool:
		return value.Bool(v), nil
	case string:
		return value.String(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return value.Int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return value.Nil, fmt.Errorf("number %q out of range", v)
		}
		return value.Float(f), nil
	case []any:
		t := value.NewTable()
		for _, elem := range v {
			ev, err := fromJSON(elem)
			if err != nil {
				return value.Nil, err
			}
			t.Append(ev)
		}
		return value.FromTable(t), nil
	case map[string]any:
		t := value.NewTable()
		for _, k := range sortedKeys(v) {
			ev, err := fromJSON(v[k])
			if err != nil {
				return value.Nil, err
			}
			t.Set(value.String(k), ev)
		}
		return value.FromTable(t), nil
	default:
		return value.Nil, fmt.Errorf("unsupported JSON value %T", doc)
	}
}

// jsonFromValue renders a decoded graph as indented JSON. Functions render
// as a small descriptor object; shared tables are rendered at each site
// and cycles are cut with a marker string.
func jsonFromValue(v value.Value) ([]byte, error) {
	doc, err := toJSON(v, make(map[any]bool))
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func toJSON(v value.Value, inProgress map[any]bool) (any, error) {
	switch v.Kind() {
	case value.KindNil:
		return nil, nil
	case value.KindBool:
		return v.Bool(), nil
	case value.KindInt:
		return v.Int(), nil
	case value.KindFloat:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprintf("%v", f), nil
		}
		return f, nil
	case value.KindBytes:
		return string(v.Bytes()), nil

	case value.KindTable:
		t := v.Table()
		if inProgress[t] {
			return "<cycle>", nil
		}
		inProgress[t] = true
		defer delete(inProgress, t)

		if t.MapLen() == 0 {
			arr := make([]any, 0, t.ArrayLen())
			for _, elem := range t.Array() {
				ev, err := toJSON(elem, inProgress)
				if err != nil {
					return nil, err
				}
				arr = append(arr, ev)
			}
			return arr, nil
		}
		obj := make(map[string]any, t.Len())
		for i, elem := range t.Array() {
			ev, err := toJSON(elem, inProgress)
			if err != nil {
				return nil, err
			}
			obj[fmt.Sprintf("[%d]", i)] = ev
		}
		for _, e := range t.Entries() {
			kv, err := toJSON(e.Key, inProgress)
			if err != nil {
				return nil, err
			}
			vv, err := toJSON(e.Value, inProgress)
			if err != nil {
				return nil, err
			}
			obj[fmt.Sprintf("%v", kv)] = vv
		}
		return obj, nil

	case value.KindFunction:
		fn := v.Function()
		if inProgress[fn] {
			return "<cycle>", nil
		}
		inProgress[fn] = true
		defer delete(inProgress, fn)
		ups := make([]any, 0, len(fn.Upvalues))
		for _, up := range fn.Upvalues {
			uv, err := toJSON(up, inProgress)
			if err != nil {
				return nil, err
			}
			ups = append(ups, uv)
		}
		return map[string]any{
			"<function>": map[string]any{
				"bytecodeBytes":  len(fn.Bytecode),
				"bytecodeUsable": fn.BytecodeUsable,
				"upvalues":       ups,
			},
		}, nil

	case value.KindOpaque:
		return "<opaque>", nil

	default:
		return nil, fmt.Errorf("unsupported kind %s", v.Kind())
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic input order: Go map iteration is randomized.
	sort.Strings(keys)
	return keys
}
