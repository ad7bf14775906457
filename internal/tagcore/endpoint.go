package tagcore

import (
	"context"

	"github.com/hsnyder/tagfd/internal/logger"
)

// Interest is the readiness mask a caller polls for (spec.md §4.3).
type Interest int

const (
	InterestReadable Interest = 1 << iota
	InterestWritable
)

// Endpoint is a per-client session attached to one tag's Cell: the
// "file-like" read/write/poll contract of spec.md §4.3. It tracks only
// one field of session state, lastSeen, and is not safe for concurrent
// use by multiple goroutines representing the same client — exactly one
// session per open connection, as spec.md §3 describes "endpoint state".
type Endpoint struct {
	tagName  string
	dtype    DType
	cell     *Cell
	lastSeen uint64
}

// OpenEndpoint binds a new session to t's Cell with lastSeen = 0 ("none
// yet", spec.md §3). Open never creates a tag; it only attaches to one
// that already exists in the Registry (spec.md §4.3).
func OpenEndpoint(t *tag) *Endpoint {
	return &Endpoint{tagName: t.name, dtype: t.dtype, cell: t.cell}
}

// Close releases session state. The underlying tag and Cell are
// unaffected — tags persist for the registry's lifetime (spec.md §3
// Lifecycle).
func (e *Endpoint) Close() {
	logger.TraceIf("endpoint", "closed session on %q", e.tagName)
}

// Name returns the name of the tag this session is attached to.
func (e *Endpoint) Name() string { return e.tagName }

// Dtype returns the immutable dtype of the tag this session is attached to.
func (e *Endpoint) Dtype() DType { return e.dtype }

// Read implements spec.md §4.3's read contract and returns the full
// stored Value (record framing is left to internal/wire); nonblocking
// requests fail immediately with ErrAgain instead of suspending. ctx carries
// cancellation for a blocking read (ErrInterrupted on cancel, leaving
// lastSeen unchanged so the caller may retry cleanly).
func (e *Endpoint) Read(ctx context.Context, nonblocking bool) (Value, error) {
	for {
		stamp := e.cell.currentStamp()
		if e.lastSeen == stamp {
			if nonblocking {
				return Value{}, ErrAgain
			}
			if err := e.cell.waitForChange(ctx, e.lastSeen); err != nil {
				return Value{}, err
			}
			continue
		}

		v := e.cell.snapshot()
		e.lastSeen = v.Timestamp
		return v, nil
	}
}

// Write implements spec.md §4.3's write contract: commit candidate into
// the underlying Cell, propagating ErrTypeMismatch / ErrStaleTimestamp.
// A failed write never partially mutates the Cell (spec.md §4.3
// "Failure semantics") because Cell.commit validates entirely under its
// own guard before mutating.
func (e *Endpoint) Write(candidate Value) error {
	return e.cell.commit(candidate)
}

// Poll atomically reports readiness: READABLE iff the session has not
// yet observed the Cell's current timestamp; always WRITABLE (spec.md
// §4.3). When block is true and the session is not yet readable, Poll
// registers the caller on the Cell's change-condition via
// waitForChange, the same primitive Read's blocking path uses, so a
// subsequent commit actually wakes the poller within a bounded delay
// (spec.md P6's second clause) instead of leaving it to busy-poll. ctx
// cancels a pending wait with ErrInterrupted, same as Read.
func (e *Endpoint) Poll(ctx context.Context, block bool) (Interest, error) {
	mask := InterestWritable
	if e.lastSeen != e.cell.currentStamp() {
		return mask | InterestReadable, nil
	}
	if !block {
		return mask, nil
	}
	if err := e.cell.waitForChange(ctx, e.lastSeen); err != nil {
		return mask, err
	}
	return mask | InterestReadable, nil
}
