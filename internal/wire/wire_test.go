package wire

import (
	"bytes"
	"testing"

	"github.com/hsnyder/tagfd/internal/tagcore"
)

func TestMarshalRecordSize(t *testing.T) {
	v := tagcore.NewUint32(42, 1000, tagcore.QualityGood)
	buf := Marshal(v)
	if len(buf) != RecordSize {
		t.Fatalf("Marshal() len = %d, want %d", len(buf), RecordSize)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cases := []tagcore.Value{
		tagcore.NewInt8(-5, 1, tagcore.QualityGood),
		tagcore.NewUint8(250, 2, tagcore.QualityBad),
		tagcore.NewInt16(-1000, 3, tagcore.QualityUncertain),
		tagcore.NewUint16(60000, 4, tagcore.QualityDisconn),
		tagcore.NewInt32(-70000, 5, tagcore.QualityGood),
		tagcore.NewUint32(4000000000, 6, tagcore.QualityGood),
		tagcore.NewInt64(-9000000000000, 7, tagcore.QualityGood),
		tagcore.NewUint64(18000000000000000000, 8, tagcore.QualityGood),
		tagcore.NewReal32(3.25, 9, tagcore.QualityGood),
		tagcore.NewReal64(2.71828, 10, tagcore.QualityGood),
		tagcore.NewTimestampValue(123456789, 11, tagcore.QualityGood),
	}

	for _, v := range cases {
		buf := Marshal(v)
		got, err := Unmarshal(buf)
		if err != nil {
			t.Fatalf("Unmarshal(%v): %v", v.Dtype, err)
		}
		if got != v {
			t.Fatalf("round trip for %v: got %+v, want %+v", v.Dtype, got, v)
		}
	}
}

// Exercises the 16-byte (full) and 0-byte STRING payload boundaries of
// spec.md §8.
func TestMarshalUnmarshalStringBoundary(t *testing.T) {
	full := bytes.Repeat([]byte{0xAB}, tagcore.StringValueSize)
	v, err := tagcore.NewString(full, 20, tagcore.QualityGood)
	if err != nil {
		t.Fatalf("NewString(16 bytes): %v", err)
	}
	got, err := Unmarshal(Marshal(v))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(got.StringBytes(), full) {
		t.Fatalf("STRING round trip = %x, want %x", got.StringBytes(), full)
	}

	empty, err := tagcore.NewString(nil, 21, tagcore.QualityGood)
	if err != nil {
		t.Fatalf("NewString(empty): %v", err)
	}
	got, err = Unmarshal(Marshal(empty))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(got.StringBytes(), make([]byte, tagcore.StringValueSize)) {
		t.Fatalf("empty STRING round trip = %x, want all zero", got.StringBytes())
	}

	if _, err := tagcore.NewString(bytes.Repeat([]byte{1}, tagcore.StringValueSize+1), 22, tagcore.QualityGood); err != tagcore.ErrBufferTooSmall {
		t.Fatalf("NewString(17 bytes) = %v, want ErrBufferTooSmall", err)
	}
}

func TestUnmarshalShortBuffer(t *testing.T) {
	if _, err := Unmarshal(make([]byte, RecordSize-1)); err != tagcore.ErrBufferTooSmall {
		t.Fatalf("Unmarshal(short) = %v, want ErrBufferTooSmall", err)
	}
}

func TestMarshalPreservesQualityVendorBits(t *testing.T) {
	q := tagcore.Quality(0xC000 | 0x00FF)
	v := tagcore.NewUint16(1, 100, q)
	got, err := Unmarshal(Marshal(v))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Quality != q {
		t.Fatalf("quality round trip = %#04x, want %#04x", uint16(got.Quality), uint16(q))
	}
}
