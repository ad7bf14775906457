package wire

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hsnyder/tagfd/internal/tagcore"
)

// humanTimeLayout formats a record timestamp to millisecond precision,
// per spec.md §6/P5.
const humanTimeLayout = "2006-01-02 15:04:05.000"

// formatScalar renders v's payload as a value token, dtype-dependent.
// STRING is hex-encoded so arbitrary (non-printable) byte content
// round-trips exactly through a whitespace-delimited text format.
func formatScalar(v tagcore.Value) (string, error) {
	switch v.Dtype {
	case tagcore.Int8:
		return strconv.FormatInt(int64(v.Int8()), 10), nil
	case tagcore.Uint8:
		return strconv.FormatUint(uint64(v.Uint8()), 10), nil
	case tagcore.Int16:
		return strconv.FormatInt(int64(v.Int16()), 10), nil
	case tagcore.Uint16:
		return strconv.FormatUint(uint64(v.Uint16()), 10), nil
	case tagcore.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10), nil
	case tagcore.Uint32:
		return strconv.FormatUint(uint64(v.Uint32()), 10), nil
	case tagcore.Int64:
		return strconv.FormatInt(v.Int64(), 10), nil
	case tagcore.Uint64:
		return strconv.FormatUint(v.Uint64(), 10), nil
	case tagcore.Real32:
		return strconv.FormatFloat(float64(v.Real32()), 'g', -1, 32), nil
	case tagcore.Real64:
		return strconv.FormatFloat(v.Real64(), 'g', -1, 64), nil
	case tagcore.Timestamp:
		return strconv.FormatUint(v.TimestampValue(), 10), nil
	case tagcore.String:
		return hex.EncodeToString(v.StringBytes()), nil
	default:
		return "", tagcore.ErrDtypeInvalid
	}
}

// parseScalar parses a value token produced by formatScalar back into
// payload bytes for the given dtype, at the given record timestamp and
// quality.
func parseScalar(dtype tagcore.DType, token string, ts uint64, q tagcore.Quality) (tagcore.Value, error) {
	switch dtype {
	case tagcore.Int8:
		n, err := strconv.ParseInt(token, 10, 8)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewInt8(int8(n), ts, q), nil
	case tagcore.Uint8:
		n, err := strconv.ParseUint(token, 10, 8)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewUint8(uint8(n), ts, q), nil
	case tagcore.Int16:
		n, err := strconv.ParseInt(token, 10, 16)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewInt16(int16(n), ts, q), nil
	case tagcore.Uint16:
		n, err := strconv.ParseUint(token, 10, 16)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewUint16(uint16(n), ts, q), nil
	case tagcore.Int32:
		n, err := strconv.ParseInt(token, 10, 32)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewInt32(int32(n), ts, q), nil
	case tagcore.Uint32:
		n, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewUint32(uint32(n), ts, q), nil
	case tagcore.Int64:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewInt64(n, ts, q), nil
	case tagcore.Uint64:
		n, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewUint64(n, ts, q), nil
	case tagcore.Real32:
		f, err := strconv.ParseFloat(token, 32)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewReal32(float32(f), ts, q), nil
	case tagcore.Real64:
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewReal64(f, ts, q), nil
	case tagcore.Timestamp:
		n, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewTimestampValue(n, ts, q), nil
	case tagcore.String:
		b, err := hex.DecodeString(token)
		if err != nil {
			return tagcore.Value{}, err
		}
		return tagcore.NewString(b, ts, q)
	default:
		return tagcore.Value{}, tagcore.ErrDtypeInvalid
	}
}

// EmitMachine renders v in the machine-readable form of spec.md §6:
// "<quality_u16> <timestamp_u64> <value>". This form preserves the
// quality word exactly, vendor bits included.
func EmitMachine(v tagcore.Value) (string, error) {
	scalar, err := formatScalar(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %s", uint16(v.Quality), v.Timestamp, scalar), nil
}

// ParseMachine is the inverse of EmitMachine for a known dtype (the
// machine form carries no dtype token of its own — a consumer is
// expected to already know which tag, and therefore which dtype, a
// line belongs to, the same assumption spec.md §1 makes about readers
// knowing a tag's type in advance).
func ParseMachine(dtype tagcore.DType, line string) (tagcore.Value, error) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) != 3 {
		return tagcore.Value{}, fmt.Errorf("wire: malformed machine-readable line %q", line)
	}
	q, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return tagcore.Value{}, err
	}
	ts, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return tagcore.Value{}, err
	}
	return parseScalar(dtype, fields[2], ts, tagcore.Quality(q))
}

// EmitHuman renders v in the human-readable form of spec.md §6: named
// dtype, a millisecond-precision formatted timestamp, named quality,
// and the scalar value. Unlike EmitMachine, this form only preserves
// the quality *classification* (GOOD/BAD/UNCERTAIN/DISCONNECTED) — the
// caller-defined vendor bits are not rendered, by design, since this
// form is meant for a human reading a log line rather than for a
// program reconstructing the exact wire quality word.
func EmitHuman(v tagcore.Value) (string, error) {
	scalar, err := formatScalar(v)
	if err != nil {
		return "", err
	}
	ts := time.UnixMilli(int64(v.Timestamp)).UTC().Format(humanTimeLayout)
	return fmt.Sprintf("%s %s %s %s", v.Dtype, ts, v.Quality.Class(), scalar), nil
}

// ParseHuman is the inverse of EmitHuman. The dtype token in the line
// is authoritative and is validated against the closed set; the
// recovered quality carries only the classification bits (vendor bits
// come back zero, matching EmitHuman's documented lossiness).
func ParseHuman(line string) (tagcore.Value, error) {
	// The timestamp itself contains one space (date, then time of day),
	// so a well-formed line has five space-separated fields.
	fields := strings.SplitN(strings.TrimSpace(line), " ", 5)
	if len(fields) != 5 {
		return tagcore.Value{}, fmt.Errorf("wire: malformed human-readable line %q", line)
	}

	dtype, ok := dtypeByName[fields[0]]
	if !ok {
		return tagcore.Value{}, tagcore.ErrDtypeInvalid
	}

	t, err := time.Parse(humanTimeLayout, fields[1]+" "+fields[2])
	if err != nil {
		return tagcore.Value{}, err
	}
	ts := uint64(t.UnixMilli())

	q, ok := qualityByName[fields[3]]
	if !ok {
		return tagcore.Value{}, fmt.Errorf("wire: unknown quality name %q", fields[3])
	}

	return parseScalar(dtype, fields[4], ts, q)
}

var dtypeByName = map[string]tagcore.DType{
	"INT8": tagcore.Int8, "UINT8": tagcore.Uint8,
	"INT16": tagcore.Int16, "UINT16": tagcore.Uint16,
	"INT32": tagcore.Int32, "UINT32": tagcore.Uint32,
	"INT64": tagcore.Int64, "UINT64": tagcore.Uint64,
	"REAL32": tagcore.Real32, "REAL64": tagcore.Real64,
	"TIMESTAMP": tagcore.Timestamp, "STRING": tagcore.String,
}

var qualityByName = map[string]tagcore.Quality{
	"UNCERTAIN":    tagcore.QualityUncertain,
	"BAD":          tagcore.QualityBad,
	"DISCONNECTED": tagcore.QualityDisconn,
	"GOOD":         tagcore.QualityGood,
}
