package tagcore

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hsnyder/tagfd/internal/logger"
)

// CreationRequest mirrors the fixed-size wire record of spec.md §6: a
// literal '+' action byte, a dtype byte, and a tag name. The 256-byte
// zero-padded, null-terminated wire encoding is handled by
// internal/wire; by the time a CreationRequest reaches the Admin, Name
// has already been trimmed of padding.
type CreationRequest struct {
	Action byte
	Dtype  DType
	Name   string
}

const creationAction = '+'

// Admin is the single-writer control channel of spec.md §4.4: at most
// one session may hold it open at a time (I6), enforced by a single
// atomic flag rather than a lock, so a crashed holder can never deadlock
// the channel (spec.md §9 "Privileged administrative endpoint").
type Admin struct {
	registry *Registry
	inUse    atomic.Bool
}

// NewAdmin constructs an Admin endpoint bound to registry.
func NewAdmin(registry *Registry) *Admin {
	return &Admin{registry: registry}
}

// AdminSession is the handle returned by a successful Open; it must be
// closed to release the channel. Close is idempotent.
type AdminSession struct {
	admin  *Admin
	token  uuid.UUID
	closed bool
}

// Open attempts the FREE -> BUSY transition (spec.md §4.4). A second
// concurrent Open while BUSY fails with ErrAdminBusy and leaves the
// state unchanged, as the state machine requires.
func (a *Admin) Open() (*AdminSession, error) {
	if !a.inUse.CompareAndSwap(false, true) {
		return nil, ErrAdminBusy
	}
	s := &AdminSession{admin: a, token: uuid.New()}
	logger.Info("admin: session %s opened", s.token)
	return s, nil
}

// Close performs the BUSY -> FREE transition unconditionally, per
// spec.md §9: the flag is cleared even if the session is being
// abandoned abnormally, so a crashed holder cannot wedge the channel.
func (s *AdminSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.admin.inUse.Store(false)
	logger.Info("admin: session %s closed", s.token)
}

// Token returns the session's diagnostic identifier (not part of
// spec.md's state machine — purely for log correlation, see
// SPEC_FULL.md's domain-stack section on google/uuid).
func (s *AdminSession) Token() uuid.UUID { return s.token }

// CreateTag validates req against the Registry's creation rules
// (spec.md §4.2) and, on success, installs the new tag. The admin
// endpoint never reads (spec.md §4.4); this is its only write
// operation.
func (s *AdminSession) CreateTag(req CreationRequest) (TagInfo, error) {
	if req.Action != creationAction {
		return TagInfo{}, ErrNameInvalid
	}
	t, err := s.admin.registry.Create(req.Name, req.Dtype)
	if err != nil {
		return TagInfo{}, err
	}
	return TagInfo{ID: t.id, Name: t.name, Dtype: t.dtype}, nil
}
