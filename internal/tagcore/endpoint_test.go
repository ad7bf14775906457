package tagcore

import (
	"context"
	"testing"
	"time"
)

func newTestEndpoint(t *testing.T, dtype DType) (*Registry, *Endpoint) {
	t.Helper()
	r := NewRegistry(10)
	tg, err := r.Create("t", dtype)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Create stamps the cell with the current wall-clock time. Swap in a
	// cell stamped 0 so a fresh session (lastSeen 0) starts with nothing
	// new to read and the small test timestamps below are not stale.
	tg.cell = newCell(dtype, 0)
	return r, OpenEndpoint(tg)
}

func TestEndpointOpenInitialState(t *testing.T) {
	_, ep := newTestEndpoint(t, Uint32)
	if ep.lastSeen != 0 {
		t.Fatalf("lastSeen = %d, want 0 on open", ep.lastSeen)
	}
}

func TestEndpointNonblockingReadEagain(t *testing.T) {
	_, ep := newTestEndpoint(t, Uint32)
	if _, err := ep.Read(context.Background(), true); err != ErrAgain {
		t.Fatalf("Read(nonblocking) on fresh tag = %v, want ErrAgain", err)
	}
}

// S1 blocking read wakes on write, twice in sequence.
func TestEndpointBlockingReadSequence(t *testing.T) {
	r, ep := newTestEndpoint(t, Uint32)
	tg := r.Lookup("t")

	results := make(chan Value, 1)
	errs := make(chan error, 1)
	go func() {
		v, err := ep.Read(context.Background(), false)
		errs <- err
		results <- v
	}()

	time.Sleep(20 * time.Millisecond)
	if err := tg.cell.commit(NewUint32(7, 1000, QualityGood)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := <-errs; err != nil {
		t.Fatalf("first read: %v", err)
	}
	v := <-results
	if v.Uint32() != 7 || v.Timestamp != 1000 {
		t.Fatalf("first read = %+v, want value=7 ts=1000", v)
	}

	go func() {
		v, err := ep.Read(context.Background(), false)
		errs <- err
		results <- v
	}()
	time.Sleep(20 * time.Millisecond)
	if err := tg.cell.commit(NewUint32(8, 1001, QualityGood)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("second read: %v", err)
	}
	v = <-results
	if v.Uint32() != 8 || v.Timestamp != 1001 {
		t.Fatalf("second read = %+v, want value=8 ts=1001", v)
	}
}

// S2 missed updates collapse: the reader only ever observes the newest
// value once it finally reads.
func TestEndpointMissedUpdatesCollapse(t *testing.T) {
	r, ep := newTestEndpoint(t, Uint32)
	tg := r.Lookup("t")

	for i, ts := range []uint64{2000, 2001, 2002} {
		if err := tg.cell.commit(NewUint32(uint32(10+i), ts, QualityGood)); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	v, err := ep.Read(context.Background(), true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v.Uint32() != 12 || v.Timestamp != 2002 {
		t.Fatalf("Read = %+v, want value=12 ts=2002", v)
	}
}

func TestEndpointReadCancelLeavesLastSeenUnchanged(t *testing.T) {
	_, ep := newTestEndpoint(t, Uint32)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() { _, err := ep.Read(ctx, false); errs <- err }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-errs; err != ErrInterrupted {
		t.Fatalf("Read after cancel = %v, want ErrInterrupted", err)
	}
	if ep.lastSeen != 0 {
		t.Fatalf("lastSeen = %d after cancelled read, want unchanged 0", ep.lastSeen)
	}
}

// P6 poll correctness (first clause: the immediate mask).
func TestEndpointPoll(t *testing.T) {
	r, ep := newTestEndpoint(t, Uint32)
	tg := r.Lookup("t")

	if mask, err := ep.Poll(context.Background(), false); err != nil || mask&InterestReadable != 0 {
		t.Fatalf("Poll() on fresh tag = (%v, %v), want not READABLE, nil", mask, err)
	}
	if mask, err := ep.Poll(context.Background(), false); err != nil || mask&InterestWritable == 0 {
		t.Fatalf("Poll() never reports WRITABLE: (%v, %v)", mask, err)
	}

	if err := tg.cell.commit(NewUint32(1, 100, QualityGood)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if mask, err := ep.Poll(context.Background(), false); err != nil || mask&InterestReadable == 0 {
		t.Fatalf("Poll() after commit does not report READABLE: (%v, %v)", mask, err)
	}

	if _, err := ep.Read(context.Background(), true); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if mask, err := ep.Poll(context.Background(), false); err != nil || mask&InterestReadable != 0 {
		t.Fatalf("Poll() after read still reports READABLE: (%v, %v)", mask, err)
	}
}

// P6 poll correctness (second clause): a blocking poller registered on
// the Cell's change-condition is woken within a bounded delay of a
// commit, rather than having to busy-poll.
func TestEndpointBlockingPollWakesOnCommit(t *testing.T) {
	r, ep := newTestEndpoint(t, Uint32)
	tg := r.Lookup("t")

	results := make(chan Interest, 1)
	errs := make(chan error, 1)
	go func() {
		mask, err := ep.Poll(context.Background(), true)
		errs <- err
		results <- mask
	}()

	time.Sleep(20 * time.Millisecond)
	if err := tg.cell.commit(NewUint32(9, 500, QualityGood)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("blocking Poll returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking Poll did not wake within 1s of commit")
	}
	if mask := <-results; mask&InterestReadable == 0 {
		t.Fatalf("blocking Poll() after wake = %v, want READABLE set", mask)
	}
}

func TestEndpointBlockingPollCancel(t *testing.T) {
	_, ep := newTestEndpoint(t, Uint32)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() {
		_, err := ep.Poll(ctx, true)
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-errs; err != ErrInterrupted {
		t.Fatalf("blocking Poll after cancel = %v, want ErrInterrupted", err)
	}
}

func TestEndpointWriteTypeAndStaleErrors(t *testing.T) {
	_, ep := newTestEndpoint(t, Real64)

	if err := ep.Write(NewInt32(1, 100, QualityGood)); err != ErrTypeMismatch {
		t.Fatalf("wrong dtype write = %v, want ErrTypeMismatch", err)
	}
	if err := ep.Write(NewReal64(1.5, 100, QualityGood)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := ep.Write(NewReal64(2.5, 100, QualityGood)); err != ErrStaleTimestamp {
		t.Fatalf("equal-timestamp write = %v, want ErrStaleTimestamp", err)
	}
}
