package wire

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chazu/brine/codec"
	"github.com/chazu/brine/value"
)

func TestOpaqueRoundTripThroughHooks(t *testing.T) {
	t.Cleanup(func() { SetHooks(nil, nil) })

	serializeCalls := 0
	deserializeCalls := 0
	SetHooks(
		func(op *value.Opaque) ([]byte, error) {
			serializeCalls++
			return []byte(op.Handle.(string)), nil
		},
		func(payload []byte) (value.Value, error) {
			deserializeCalls++
			return value.FromOpaque(value.NewOpaque(string(payload))), nil
		},
	)

	root := value.NewTable()
	root.Set(value.String("h"), value.FromOpaque(value.NewOpaque("file descriptor 3")))

	data, err := EncodeBytes(value.FromTable(root), &Options{Codec: codec.LZ4})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	res, err := DecodeBytes(data, HostVersion())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if serializeCalls != 1 {
		t.Errorf("serialize hook called %d times, want 1", serializeCalls)
	}
	if deserializeCalls != 1 {
		t.Errorf("deserialize hook called %d times, want 1", deserializeCalls)
	}

	v, ok := res.Value.Table().Get(value.String("h"))
	if !ok {
		t.Fatal("opaque entry missing after decode")
	}
	if got := v.Opaque().Handle.(string); got != "file descriptor 3" {
		t.Errorf("handle = %q, want %q", got, "file descriptor 3")
	}
}

func TestMissingSerializeHookWritesNothing(t *testing.T) {
	root := value.NewTable()
	root.Append(value.Int(1))
	root.Append(value.FromOpaque(value.NewOpaque(struct{}{})))

	sink := NewBuffer()
	err := Encode(value.FromTable(root), sink, &Options{ChunkLimit: 4})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("error = %v, want ErrUnsupportedValue", err)
	}
	if sink.Len() != 0 {
		t.Errorf("%d bytes reached the sink before the failure, want 0", sink.Len())
	}
}

func TestSerializeHookErrorPropagates(t *testing.T) {
	t.Cleanup(func() { SetHooks(nil, nil) })

	hookErr := errors.New("handle not serializable")
	SetHooks(func(op *value.Opaque) ([]byte, error) {
		return nil, hookErr
	}, nil)

	_, err := EncodeBytes(value.FromOpaque(value.NewOpaque(42)), nil)
	if !errors.Is(err, hookErr) {
		t.Errorf("error = %v, want wrapped hook error", err)
	}
}

func TestDeserializeHookErrorPropagates(t *testing.T) {
	t.Cleanup(func() { SetHooks(nil, nil) })

	hookErr := errors.New("unknown handle tag")
	SetHooks(
		func(op *value.Opaque) ([]byte, error) { return []byte{1}, nil },
		func(payload []byte) (value.Value, error) { return value.Nil, hookErr },
	)

	data, err := EncodeBytes(value.FromOpaque(value.NewOpaque(42)), nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := DecodeBytes(data, HostVersion()); !errors.Is(err, hookErr) {
		t.Errorf("error = %v, want wrapped hook error", err)
	}
}

// Hooks may call back into Encode and Decode: an opaque handle can itself
// hold a value graph serialized as a nested envelope.
func TestReentrantHooks(t *testing.T) {
	t.Cleanup(func() { SetHooks(nil, nil) })

	SetHooks(
		func(op *value.Opaque) ([]byte, error) {
			inner, ok := op.Handle.(value.Value)
			if !ok {
				return nil, fmt.Errorf("unexpected handle %T", op.Handle)
			}
			return EncodeBytes(inner, nil)
		},
		func(payload []byte) (value.Value, error) {
			res, err := DecodeBytes(payload, HostVersion())
			if err != nil {
				return value.Nil, err
			}
			return value.FromOpaque(value.NewOpaque(res.Value)), nil
		},
	)

	inner := value.NewTable()
	inner.Append(value.String("nested"))
	root := value.NewTable()
	root.Append(value.FromOpaque(value.NewOpaque(value.FromTable(inner))))

	data, err := EncodeBytes(value.FromTable(root), nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	res, err := DecodeBytes(data, HostVersion())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	got := res.Value.Table().At(0).Opaque().Handle.(value.Value)
	if string(got.Table().At(0).Bytes()) != "nested" {
		t.Error("nested envelope did not survive the reentrant round trip")
	}
}

func TestSetHooksLastWriterWins(t *testing.T) {
	t.Cleanup(func() { SetHooks(nil, nil) })

	SetHooks(func(op *value.Opaque) ([]byte, error) {
		return nil, errors.New("first hook should be replaced")
	}, nil)
	SetHooks(func(op *value.Opaque) ([]byte, error) {
		return []byte("second"), nil
	}, nil)

	data, err := EncodeBytes(value.FromOpaque(value.NewOpaque(0)), nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("no bytes produced")
	}
}
