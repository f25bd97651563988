package wire

// Token stream tags. One tag byte per node, payload following. Ids are
// implicit: the n-th table or function tag materializes object id n-1 on
// both sides, so back-references carry only the id.
//
// Integers and floats have distinct tags; the decoder never coerces one
// into the other. tagOpaque opens the extension space: every tag at or
// above it is a uvarint length-prefixed payload owned by the hook
// registry, which keeps payloads written by newer producers skippable by
// the hook even when the consumer's built-in tag set ends earlier.
const (
	tagNil      byte = 0x00
	tagTrue     byte = 0x01
	tagFalse    byte = 0x02
	tagInt      byte = 0x03 // zigzag varint
	tagFloat    byte = 0x04 // float64, little endian
	tagBytes    byte = 0x05 // uvarint length + bytes
	tagTable    byte = 0x06 // uvarint array len + uvarint map len + contents
	tagFunction byte = 0x07 // uvarint bytecode len + bytecode + uvarint upvalue count + upvalues
	tagRef      byte = 0x08 // uvarint object id
	tagOpaque   byte = 0x09 // uvarint length + hook payload
)
