// Package tagcore implements the tag registry and per-tag exchange engine:
// the kernel-visible concurrency core of tagfd. It owns the set of live
// tags, synchronizes concurrent readers and writers against each one,
// enforces read-latest / blocking-read semantics, and gates tag creation
// behind a single-writer administrative channel.
package tagcore

import "fmt"

// DType is the closed set of payload types a tag may hold. Once a tag is
// created with a given DType, no later write may change it (I1).
type DType byte

const (
	Invalid   DType = 0
	Int8      DType = 2
	Uint8     DType = 3
	Int16     DType = 4
	Uint16    DType = 5
	Int32     DType = 6
	Uint32    DType = 7
	Int64     DType = 8
	Uint64    DType = 9
	Real32    DType = 10
	Real64    DType = 11
	Timestamp DType = 12
	String    DType = 13
)

var dtypeNames = map[DType]string{
	Invalid:   "INVALID",
	Int8:      "INT8",
	Uint8:     "UINT8",
	Int16:     "INT16",
	Uint16:    "UINT16",
	Int32:     "INT32",
	Uint32:    "UINT32",
	Int64:     "INT64",
	Uint64:    "UINT64",
	Real32:    "REAL32",
	Real64:    "REAL64",
	Timestamp: "TIMESTAMP",
	String:    "STRING",
}

// String renders the dtype using the name wire consumers (the relay
// boundary, §6) are expected to see.
func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DTYPE(%d)", byte(d))
}

// Valid reports whether d is one of the closed set of types a tag may be
// created with. Invalid is deliberately excluded: it is the zero value,
// not a creatable type.
func (d DType) Valid() bool {
	_, ok := dtypeNames[d]
	return ok && d != Invalid
}

// Quality is the 16-bit quality word of spec.md §3: the top two bits
// classify trust in the value, the bottom 14 bits are caller-defined.
type Quality uint16

const (
	qualityMask      = 0xC000
	VendorBitsMask   = 0x3FFF
	QualityGood      Quality = 0xC000
	QualityBad       Quality = 0x8000
	QualityDisconn   Quality = 0x4000
	QualityUncertain Quality = 0x0000
)

var qualityNames = map[Quality]string{
	QualityUncertain: "UNCERTAIN",
	QualityBad:       "BAD",
	QualityDisconn:   "DISCONNECTED",
	QualityGood:      "GOOD",
}

// Class returns just the top-two-bit classification, discarding the
// caller-defined vendor bits.
func (q Quality) Class() Quality {
	return Quality(uint16(q) & qualityMask)
}

// VendorBits returns the caller-defined low 14 bits.
func (q Quality) VendorBits() uint16 {
	return uint16(q) & VendorBitsMask
}

// String renders the quality classification by name; when any vendor
// bits are set they follow in hex in parentheses, e.g. "GOOD(0x2a)".
// Use Class().String() for the bare classification name.
func (q Quality) String() string {
	if name, ok := qualityNames[q.Class()]; ok {
		if vb := q.VendorBits(); vb != 0 {
			return fmt.Sprintf("%s(%#x)", name, vb)
		}
		return name
	}
	return fmt.Sprintf("QUALITY(%#x)", uint16(q))
}

// PayloadSize is the width, in bytes, of the payload union (spec.md §3/§6).
const PayloadSize = 16

// StringValueSize is the maximum length of a STRING-typed payload; it is
// not null-terminated at the wire level (§6).
const StringValueSize = 16

// Value is the fixed-size wire record of spec.md §3/§6: a payload union,
// an explicit type discriminant, a monotonic millisecond timestamp, and a
// quality word. It is copied by value throughout the core so that a
// reader never observes a torn mixture of old and new fields (I3).
type Value struct {
	Payload   [PayloadSize]byte
	Dtype     DType
	Timestamp uint64
	Quality   Quality
}
