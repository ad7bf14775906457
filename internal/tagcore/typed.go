package tagcore

import (
	"encoding/binary"
	"math"
)

// The functions in this file give each closed-set dtype a typed
// constructor and accessor over the raw 16-byte payload union
// (spec.md §3), so callers outside internal/wire never need to poke at
// Payload byte offsets directly.

// NewInt8 builds a Value of dtype Int8.
func NewInt8(v int8, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	p[0] = byte(v)
	return Value{Payload: p, Dtype: Int8, Timestamp: ts, Quality: q}
}

// Int8 reads the payload as an int8; the caller is responsible for
// checking Dtype first.
func (v Value) Int8() int8 { return int8(v.Payload[0]) }

func NewUint8(x uint8, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	p[0] = x
	return Value{Payload: p, Dtype: Uint8, Timestamp: ts, Quality: q}
}
func (v Value) Uint8() uint8 { return v.Payload[0] }

func NewInt16(x int16, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint16(p[:2], uint16(x))
	return Value{Payload: p, Dtype: Int16, Timestamp: ts, Quality: q}
}
func (v Value) Int16() int16 { return int16(binary.LittleEndian.Uint16(v.Payload[:2])) }

func NewUint16(x uint16, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint16(p[:2], x)
	return Value{Payload: p, Dtype: Uint16, Timestamp: ts, Quality: q}
}
func (v Value) Uint16() uint16 { return binary.LittleEndian.Uint16(v.Payload[:2]) }

func NewInt32(x int32, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint32(p[:4], uint32(x))
	return Value{Payload: p, Dtype: Int32, Timestamp: ts, Quality: q}
}
func (v Value) Int32() int32 { return int32(binary.LittleEndian.Uint32(v.Payload[:4])) }

func NewUint32(x uint32, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint32(p[:4], x)
	return Value{Payload: p, Dtype: Uint32, Timestamp: ts, Quality: q}
}
func (v Value) Uint32() uint32 { return binary.LittleEndian.Uint32(v.Payload[:4]) }

func NewInt64(x int64, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint64(p[:8], uint64(x))
	return Value{Payload: p, Dtype: Int64, Timestamp: ts, Quality: q}
}
func (v Value) Int64() int64 { return int64(binary.LittleEndian.Uint64(v.Payload[:8])) }

func NewUint64(x uint64, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint64(p[:8], x)
	return Value{Payload: p, Dtype: Uint64, Timestamp: ts, Quality: q}
}
func (v Value) Uint64() uint64 { return binary.LittleEndian.Uint64(v.Payload[:8]) }

func NewReal32(x float32, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint32(p[:4], math.Float32bits(x))
	return Value{Payload: p, Dtype: Real32, Timestamp: ts, Quality: q}
}
func (v Value) Real32() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(v.Payload[:4]))
}

func NewReal64(x float64, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint64(p[:8], math.Float64bits(x))
	return Value{Payload: p, Dtype: Real64, Timestamp: ts, Quality: q}
}
func (v Value) Real64() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(v.Payload[:8]))
}

// NewTimestampValue builds a Value of dtype Timestamp, a 64-bit
// timestamp alias distinct from the record's own Timestamp field
// (spec.md §3): this is a payload carrying a timestamp as data.
func NewTimestampValue(x uint64, ts uint64, q Quality) Value {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint64(p[:8], x)
	return Value{Payload: p, Dtype: Timestamp, Timestamp: ts, Quality: q}
}
func (v Value) TimestampValue() uint64 { return binary.LittleEndian.Uint64(v.Payload[:8]) }

// NewString builds a Value of dtype String. b must be at most
// StringValueSize bytes (spec.md §8 boundary behavior: 16 bytes
// round-trips, 17 is rejected); the remaining payload bytes are zeroed.
func NewString(b []byte, ts uint64, q Quality) (Value, error) {
	if len(b) > StringValueSize {
		return Value{}, ErrBufferTooSmall
	}
	var p [PayloadSize]byte
	copy(p[:], b)
	return Value{Payload: p, Dtype: String, Timestamp: ts, Quality: q}, nil
}

// StringBytes returns the full 16-byte STRING payload, not trimmed of
// trailing zeros — the wire format does not null-terminate (spec.md
// §6), so a trailing zero byte may be meaningful data.
func (v Value) StringBytes() []byte {
	b := make([]byte, StringValueSize)
	copy(b, v.Payload[:])
	return b
}
