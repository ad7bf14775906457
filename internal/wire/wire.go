// Package wire implements the binary record layout and creation-request
// framing of spec.md §6, plus the textual encodings used at the relay
// boundary. It is the "serialization helpers reused at the boundary"
// the spec's budget note (§2) calls out, kept separate from
// internal/tagcore so the core has no notion of byte layout at all.
package wire

import (
	"encoding/binary"

	"github.com/hsnyder/tagfd/internal/tagcore"
)

// RecordSize is the wire size of one value record: a 16-byte payload,
// an 8-byte timestamp, a 2-byte quality word, a 1-byte dtype, padded to
// the record's natural 8-byte alignment (spec.md §6).
const RecordSize = 32

const (
	payloadOff   = 0
	timestampOff = tagcore.PayloadSize
	qualityOff   = timestampOff + 8
	dtypeOff     = qualityOff + 2
)

// Marshal encodes v into a RecordSize-byte wire record. The returned
// slice is always exactly RecordSize bytes; trailing padding bytes are
// zeroed.
func Marshal(v tagcore.Value) []byte {
	buf := make([]byte, RecordSize)
	copy(buf[payloadOff:payloadOff+tagcore.PayloadSize], v.Payload[:])
	binary.LittleEndian.PutUint64(buf[timestampOff:timestampOff+8], v.Timestamp)
	binary.LittleEndian.PutUint16(buf[qualityOff:qualityOff+2], uint16(v.Quality))
	buf[dtypeOff] = byte(v.Dtype)
	return buf
}

// Unmarshal decodes one value record from buf. buf shorter than
// RecordSize fails BUFFER_TOO_SMALL, per spec.md §6 ("short transfers
// fail") and §4.3 (reads/writes transfer exactly one record).
func Unmarshal(buf []byte) (tagcore.Value, error) {
	if len(buf) < RecordSize {
		return tagcore.Value{}, tagcore.ErrBufferTooSmall
	}

	var v tagcore.Value
	copy(v.Payload[:], buf[payloadOff:payloadOff+tagcore.PayloadSize])
	v.Timestamp = binary.LittleEndian.Uint64(buf[timestampOff : timestampOff+8])
	v.Quality = tagcore.Quality(binary.LittleEndian.Uint16(buf[qualityOff : qualityOff+2]))
	v.Dtype = tagcore.DType(buf[dtypeOff])
	return v, nil
}
