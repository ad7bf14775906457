package wire

import (
	"strings"
	"testing"

	"github.com/hsnyder/tagfd/internal/tagcore"
)

func TestCreationRoundTrip(t *testing.T) {
	req := tagcore.CreationRequest{Action: '+', Dtype: tagcore.Real64, Name: "plant.pump1.flow"}
	buf, err := MarshalCreation(req)
	if err != nil {
		t.Fatalf("MarshalCreation: %v", err)
	}
	if len(buf) != CreationRecordSize {
		t.Fatalf("MarshalCreation() len = %d, want %d", len(buf), CreationRecordSize)
	}

	got, err := UnmarshalCreation(buf)
	if err != nil {
		t.Fatalf("UnmarshalCreation: %v", err)
	}
	if got != req {
		t.Fatalf("round trip = %+v, want %+v", got, req)
	}
}

func TestCreationNameLengthBoundary(t *testing.T) {
	maxName := strings.Repeat("a", CreationNameField-1)
	if _, err := MarshalCreation(tagcore.CreationRequest{Action: '+', Dtype: tagcore.Uint32, Name: maxName}); err != nil {
		t.Fatalf("max-length name rejected: %v", err)
	}

	tooLong := strings.Repeat("a", CreationNameField)
	if _, err := MarshalCreation(tagcore.CreationRequest{Action: '+', Dtype: tagcore.Uint32, Name: tooLong}); err != tagcore.ErrBufferTooSmall {
		t.Fatalf("over-length name: got %v, want ErrBufferTooSmall", err)
	}
}

func TestUnmarshalCreationShortBuffer(t *testing.T) {
	if _, err := UnmarshalCreation(make([]byte, CreationRecordSize-1)); err != tagcore.ErrBufferTooSmall {
		t.Fatalf("short creation buffer = %v, want ErrBufferTooSmall", err)
	}
}

func TestUnmarshalCreationStripsPadding(t *testing.T) {
	buf := make([]byte, CreationRecordSize)
	buf[0] = '+'
	buf[1] = byte(tagcore.Uint32)
	copy(buf[2:], "short")
	// buf[2+len("short"):] is already zero-filled padding.

	got, err := UnmarshalCreation(buf)
	if err != nil {
		t.Fatalf("UnmarshalCreation: %v", err)
	}
	if got.Name != "short" {
		t.Fatalf("Name = %q, want %q (padding stripped)", got.Name, "short")
	}
}
