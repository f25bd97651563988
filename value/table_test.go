package value

import "testing"

// ---------------------------------------------------------------------------
// Array part
// ---------------------------------------------------------------------------

func TestTableArrayPart(t *testing.T) {
	tab := NewTable()
	tab.Append(Int(10))
	tab.Append(Int(20))

	if tab.ArrayLen() != 2 {
		t.Fatalf("ArrayLen() = %d, want 2", tab.ArrayLen())
	}
	if got := tab.At(1).Int(); got != 20 {
		t.Errorf("At(1) = %d, want 20", got)
	}

	tab.SetAt(0, Int(99))
	if got := tab.At(0).Int(); got != 99 {
		t.Errorf("after SetAt, At(0) = %d, want 99", got)
	}
}

// ---------------------------------------------------------------------------
// Map part
// ---------------------------------------------------------------------------

func TestTableSetGet(t *testing.T) {
	tab := NewTable()
	tab.Set(String("name"), String("brine"))
	tab.Set(Int(7), Bool(true))

	v, ok := tab.Get(String("name"))
	if !ok || string(v.Bytes()) != "brine" {
		t.Errorf("Get(name) = %v, %t", v, ok)
	}
	v, ok = tab.Get(Int(7))
	if !ok || !v.Bool() {
		t.Errorf("Get(7) = %v, %t", v, ok)
	}
	if _, ok := tab.Get(String("missing")); ok {
		t.Error("Get(missing) reported present")
	}
}

func TestTableIntAndFloatKeysDistinct(t *testing.T) {
	tab := NewTable()
	tab.Set(Int(3), String("int"))
	tab.Set(Float(3), String("float"))

	if tab.MapLen() != 2 {
		t.Fatalf("MapLen() = %d, want 2 (int and float keys collided)", tab.MapLen())
	}
	v, _ := tab.Get(Int(3))
	if string(v.Bytes()) != "int" {
		t.Errorf("Get(Int(3)) = %q, want %q", v.Bytes(), "int")
	}
}

func TestTableReferenceKeys(t *testing.T) {
	inner1 := NewTable()
	inner2 := NewTable()
	tab := NewTable()
	tab.Set(FromTable(inner1), Int(1))
	tab.Set(FromTable(inner2), Int(2))

	// Structurally equal but distinct tables are distinct keys.
	if tab.MapLen() != 2 {
		t.Fatalf("MapLen() = %d, want 2", tab.MapLen())
	}
	v, ok := tab.Get(FromTable(inner1))
	if !ok || v.Int() != 1 {
		t.Errorf("Get(inner1) = %v, %t, want 1", v, ok)
	}
}

func TestTableInsertionOrder(t *testing.T) {
	tab := NewTable()
	tab.Set(String("c"), Int(1))
	tab.Set(String("a"), Int(2))
	tab.Set(String("b"), Int(3))
	// Replacing keeps position.
	tab.Set(String("c"), Int(4))

	var keys []string
	for _, e := range tab.Entries() {
		keys = append(keys, string(e.Key.Bytes()))
	}
	want := []string{"c", "a", "b"}
	if len(keys) != len(want) {
		t.Fatalf("Entries() has %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	v, _ := tab.Get(String("c"))
	if v.Int() != 4 {
		t.Errorf("replaced value = %d, want 4", v.Int())
	}
}

func TestTableDelete(t *testing.T) {
	tab := NewTable()
	tab.Set(String("a"), Int(1))
	tab.Set(String("b"), Int(2))
	tab.Set(String("c"), Int(3))

	if !tab.Delete(String("b")) {
		t.Fatal("Delete(b) = false, want true")
	}
	if tab.Delete(String("b")) {
		t.Error("second Delete(b) = true, want false")
	}

	var keys []string
	for _, e := range tab.Entries() {
		keys = append(keys, string(e.Key.Bytes()))
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("keys after delete = %v, want [a c]", keys)
	}

	// Index must be consistent after the shift.
	v, ok := tab.Get(String("c"))
	if !ok || v.Int() != 3 {
		t.Errorf("Get(c) after delete = %v, %t, want 3", v, ok)
	}
}

func TestTableLen(t *testing.T) {
	tab := NewTable()
	tab.Append(Int(1))
	tab.Append(Int(2))
	tab.Set(String("k"), Int(3))
	if tab.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tab.Len())
	}
}
