package tagcore

import (
	"context"
	"sync"

	"github.com/hsnyder/tagfd/internal/logger"
)

// Cell is a per-tag synchronization object: one stored value, a mutual
// exclusion guard, and a waitable condition signaled on every successful
// commit (spec.md §4.1). It has no notion of tag name or identity — that
// is the Registry's responsibility.
//
// The guard and condition are the only suspension points a Cell
// introduces (spec.md §5): acquiring the guard, and waiting inside
// waitForChange. Everything else is wait-free with respect to other
// sessions of the same tag, modulo the guard — the same granular,
// per-key locking discipline the teacher's LockManager applies to each
// entity/tag key rather than through one global lock.
type Cell struct {
	mu     sync.Mutex
	cond   *sync.Cond
	stored Value
}

// newCell constructs a Cell already initialized with dtype, a zeroed
// payload, quality UNCERTAIN, and the given creation timestamp — the
// state spec.md §4.2 requires a freshly-created tag to start in.
func newCell(dtype DType, createdAtMillis uint64) *Cell {
	c := &Cell{
		stored: Value{
			Dtype:     dtype,
			Timestamp: createdAtMillis,
			Quality:   QualityUncertain,
		},
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// commit validates and installs candidate as the cell's stored value.
// Rejecting a dtype change (I1) and a non-increasing timestamp (I2)
// happens entirely under the guard so a failed write never partially
// mutates the cell.
func (c *Cell) commit(candidate Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if candidate.Dtype != c.stored.Dtype {
		return ErrTypeMismatch
	}
	if candidate.Timestamp <= c.stored.Timestamp {
		return ErrStaleTimestamp
	}

	c.stored = candidate
	c.cond.Broadcast()
	logger.TraceIf("cell", "committed value dtype=%s ts=%d", candidate.Dtype, candidate.Timestamp)
	return nil
}

// snapshot returns a full copy of the stored record under the guard, so
// a reader never observes a torn mixture of old and new fields (I3).
func (c *Cell) snapshot() Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stored
}

// currentStamp returns the stored timestamp under the guard.
func (c *Cell) currentStamp() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stored.Timestamp
}

// waitForChange suspends the calling goroutine until the stored
// timestamp differs from lastSeen, releasing the guard while suspended
// and reacquiring it to re-check — the standard sync.Cond contract,
// which is exactly the "releases the guard while suspended" requirement
// of spec.md §4.1.
//
// ctx carries cancellation (spec.md EINTR): a background context never
// cancels, so passing context.Background() blocks indefinitely, same as
// a non-cancellable wait. On cancellation waitForChange returns
// ErrInterrupted without advancing anything — the caller's last_seen is
// untouched so it may retry cleanly (spec.md §5).
func (c *Cell) waitForChange(ctx context.Context, lastSeen uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.cond.Broadcast()
			c.mu.Unlock()
		case <-done:
		}
	}()

	for c.stored.Timestamp == lastSeen {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		default:
		}
		c.cond.Wait()
	}

	select {
	case <-ctx.Done():
		return ErrInterrupted
	default:
	}
	return nil
}
