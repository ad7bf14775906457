package wire

import (
	"bytes"

	"github.com/hsnyder/tagfd/internal/tagcore"
)

// CreationNameField is the fixed width of the zero-padded,
// null-terminated name field in a creation record (spec.md §6).
const CreationNameField = 256

// CreationRecordSize is the total size of a tag-creation request: one
// action byte, one dtype byte, and the fixed-width name field.
const CreationRecordSize = 1 + 1 + CreationNameField

// MarshalCreation encodes req as a CreationRecordSize-byte wire record.
// name longer than CreationNameField-1 bytes (leaving no room for the
// terminating NUL) fails BUFFER_TOO_SMALL.
func MarshalCreation(req tagcore.CreationRequest) ([]byte, error) {
	if len(req.Name) > CreationNameField-1 {
		return nil, tagcore.ErrBufferTooSmall
	}
	buf := make([]byte, CreationRecordSize)
	buf[0] = req.Action
	buf[1] = byte(req.Dtype)
	copy(buf[2:2+CreationNameField], req.Name)
	return buf, nil
}

// UnmarshalCreation decodes a creation request from buf. Any short
// write is rejected (spec.md §4.4), and the name field's zero padding
// (and anything after the first NUL) is stripped before it reaches
// tagcore's name validation.
func UnmarshalCreation(buf []byte) (tagcore.CreationRequest, error) {
	if len(buf) < CreationRecordSize {
		return tagcore.CreationRequest{}, tagcore.ErrBufferTooSmall
	}

	nameField := buf[2 : 2+CreationNameField]
	if i := bytes.IndexByte(nameField, 0); i >= 0 {
		nameField = nameField[:i]
	}

	return tagcore.CreationRequest{
		Action: buf[0],
		Dtype:  tagcore.DType(buf[1]),
		Name:   string(nameField),
	}, nil
}
