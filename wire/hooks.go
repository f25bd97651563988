package wire

import "github.com/chazu/brine/value"

// SerializeHook turns a host-defined opaque value into bytes the encoder
// can carry. DeserializeHook rebuilds a value from those bytes on the
// consumer side. Hooks may themselves call Encode or Decode; no lock is
// held across a hook invocation, so reentrancy on the same goroutine is
// safe.
type (
	SerializeHook   func(op *value.Opaque) ([]byte, error)
	DeserializeHook func(data []byte) (value.Value, error)
)

// The hook registry is process-wide shared mutable state and is not
// synchronized. Installing a serializer without a matching deserializer is
// legal; the mismatch surfaces when a consumer decodes the payload, not at
// install time. Callers running concurrent encode/decode must install
// hooks once, before any concurrent use, and leave the registry alone
// afterwards.
var (
	serializeHook   SerializeHook
	deserializeHook DeserializeHook
)

// SetHooks installs the hook pair, replacing any previously installed
// pair. Last writer wins; there is no unregister operation. Either hook
// may be nil, which removes that direction.
func SetHooks(serialize SerializeHook, deserialize DeserializeHook) {
	serializeHook = serialize
	deserializeHook = deserialize
}
