package tagcore

import (
	"sync"
	"time"

	"github.com/hsnyder/tagfd/internal/logger"
)

const (
	// MaxNameLength is the upper bound on tag name length, inclusive
	// (spec.md §3/§6).
	MaxNameLength = 255
)

// nameCharsetOK reports whether every byte of name is in the allowed
// charset [A-Za-z0-9._-] (spec.md §6).
func nameCharsetOK(name string) bool {
	for i := 0; i < len(name); i++ {
		b := name[i]
		switch {
		case b >= 'A' && b <= 'Z':
		case b >= 'a' && b <= 'z':
		case b >= '0' && b <= '9':
		case b == '.' || b == '_' || b == '-':
		default:
			return false
		}
	}
	return true
}

// tag is one live entry of the Registry: its identity, name, and Cell.
// Once installed it is never removed or mutated (append-only, §3).
type tag struct {
	id    int
	name  string
	dtype DType
	cell  *Cell
}

// TagInfo is the read-only, client-visible projection of a tag used by
// enumeration and discovery (spec.md §4.2, §6).
type TagInfo struct {
	ID    int
	Name  string
	Dtype DType
}

// Registry owns the process-wide set of live tags: an append-only
// ordered collection bounded by a configured capacity, plus a
// name-to-tag lookup (spec.md §4.2). Creation is expected to be
// serialized by the caller (the Administrative Endpoint, I6); lookup
// and enumeration are safe against concurrent creation via mu, the same
// map-guarding RWMutex discipline the teacher's LockManager applies to
// its own name-keyed lock maps.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	byName   map[string]*tag
	ordered  []*tag
	nextID   int
}

// NewRegistry constructs an empty Registry bounded by capacity (I7).
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		byName:   make(map[string]*tag, capacity),
		ordered:  make([]*tag, 0, capacity),
	}
}

// validateName checks name against I5 (non-empty, ≤255 bytes, charset).
func validateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLength {
		return ErrNameInvalid
	}
	if !nameCharsetOK(name) {
		return ErrNameInvalid
	}
	return nil
}

// Create validates (name non-empty, length, charset, dtype, capacity,
// uniqueness — in that order, per spec.md §4.2) and, on success,
// installs a new tag with a fresh Cell. The append-and-publish sequence
// runs under the write lock so a concurrent Lookup can never observe a
// name that exists but whose Cell is not yet usable (spec.md §4.2
// "Concurrency discipline").
func (r *Registry) Create(name string, dtype DType) (*tag, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, ErrDtypeInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ordered) >= r.capacity {
		return nil, ErrCapacityExhausted
	}
	if _, exists := r.byName[name]; exists {
		return nil, ErrNameTaken
	}

	id := r.nextID
	r.nextID++

	t := &tag{
		id:    id,
		name:  name,
		dtype: dtype,
		cell:  newCell(dtype, nowMillis()),
	}
	r.ordered = append(r.ordered, t)
	r.byName[name] = t

	logger.Info("registry: created tag %q (id=%d, dtype=%s)", name, id, dtype)
	return t, nil
}

// Lookup returns the live tag named name, or nil if none exists.
func (r *Registry) Lookup(name string) *tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// List returns every live tag in creation (insertion) order. Callers
// needing alphabetical order sort externally, per spec.md §4.2.
func (r *Registry) List() []TagInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TagInfo, len(r.ordered))
	for i, t := range r.ordered {
		out[i] = TagInfo{ID: t.id, Name: t.name, Dtype: t.dtype}
	}
	return out
}

// Len returns the current number of live tags.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Snapshot returns the named tag's identity alongside its Cell's
// current value, or ok=false if no such tag is live. This is the read
// SPEC_FULL.md's discovery-service addition exposes at GET
// /tags/{name}: a client can see a tag's current quality and timestamp
// without opening its socket. It reads only already-public data (the
// same record a direct tag read would return) and never mutates
// anything, so it adds no history or ordering guarantee beyond §5's.
func (r *Registry) Snapshot(name string) (TagInfo, Value, bool) {
	r.mu.RLock()
	t := r.byName[name]
	r.mu.RUnlock()
	if t == nil {
		return TagInfo{}, Value{}, false
	}
	return TagInfo{ID: t.id, Name: t.name, Dtype: t.dtype}, t.cell.snapshot(), true
}

// nowMillis returns the current time as milliseconds since the Unix
// epoch, the unit spec.md §3 specifies for a tag's timestamp.
func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
