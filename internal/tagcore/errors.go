package tagcore

import "errors"

// Error taxonomy of spec.md §7. Every core operation returns one of these
// sentinels (or nil); none are retried inside the core, and none are
// fatal to it.
var (
	ErrBufferTooSmall    = errors.New("tagfd: buffer too small for one value record")
	ErrAgain             = errors.New("tagfd: nonblocking read has no new value")
	ErrInterrupted       = errors.New("tagfd: blocking read was cancelled")
	ErrTypeMismatch      = errors.New("tagfd: write dtype differs from stored dtype")
	ErrStaleTimestamp    = errors.New("tagfd: write timestamp not strictly greater than stored")
	ErrTransferFault     = errors.New("tagfd: client buffer unreadable or unwritable")
	ErrNameTaken         = errors.New("tagfd: tag name already exists")
	ErrNameInvalid       = errors.New("tagfd: tag name is empty, too long, or contains invalid characters")
	ErrDtypeInvalid      = errors.New("tagfd: unknown data type discriminant")
	ErrCapacityExhausted = errors.New("tagfd: registry is at capacity")
	ErrAdminBusy         = errors.New("tagfd: administrative channel already held")
	ErrOutOfMemory       = errors.New("tagfd: allocation failure")
)

// ErrCode is a stable single-byte encoding of the error taxonomy, used by
// internal/transport to report failures over the wire without sending Go
// error strings across the process boundary.
type ErrCode byte

const (
	CodeOK ErrCode = iota
	CodeBufferTooSmall
	CodeAgain
	CodeInterrupted
	CodeTypeMismatch
	CodeStaleTimestamp
	CodeTransferFault
	CodeNameTaken
	CodeNameInvalid
	CodeDtypeInvalid
	CodeCapacityExhausted
	CodeAdminBusy
	CodeOutOfMemory
	codeUnknown
)

var errToCode = map[error]ErrCode{
	ErrBufferTooSmall:    CodeBufferTooSmall,
	ErrAgain:             CodeAgain,
	ErrInterrupted:       CodeInterrupted,
	ErrTypeMismatch:      CodeTypeMismatch,
	ErrStaleTimestamp:    CodeStaleTimestamp,
	ErrTransferFault:     CodeTransferFault,
	ErrNameTaken:         CodeNameTaken,
	ErrNameInvalid:       CodeNameInvalid,
	ErrDtypeInvalid:      CodeDtypeInvalid,
	ErrCapacityExhausted: CodeCapacityExhausted,
	ErrAdminBusy:         CodeAdminBusy,
	ErrOutOfMemory:       CodeOutOfMemory,
}

var codeToErr = map[ErrCode]error{
	CodeBufferTooSmall:    ErrBufferTooSmall,
	CodeAgain:             ErrAgain,
	CodeInterrupted:       ErrInterrupted,
	CodeTypeMismatch:      ErrTypeMismatch,
	CodeStaleTimestamp:    ErrStaleTimestamp,
	CodeTransferFault:     ErrTransferFault,
	CodeNameTaken:         ErrNameTaken,
	CodeNameInvalid:       ErrNameInvalid,
	CodeDtypeInvalid:      ErrDtypeInvalid,
	CodeCapacityExhausted: ErrCapacityExhausted,
	CodeAdminBusy:         ErrAdminBusy,
	CodeOutOfMemory:       ErrOutOfMemory,
}

// EncodeError maps a core error to its wire code. A nil error encodes to
// CodeOK; an unrecognized error encodes to codeUnknown rather than
// panicking, since the core must never treat a transport-boundary
// mismatch as fatal.
func EncodeError(err error) ErrCode {
	if err == nil {
		return CodeOK
	}
	if code, ok := errToCode[err]; ok {
		return code
	}
	return codeUnknown
}

// DecodeError is the inverse of EncodeError.
func DecodeError(code ErrCode) error {
	if code == CodeOK {
		return nil
	}
	if err, ok := codeToErr[code]; ok {
		return err
	}
	return errors.New("tagfd: unknown error code")
}
