package tagcore

import (
	"sync"
	"testing"
)

// S6 admin exclusivity: only one session may be open at a time; a
// second Open fails with ErrAdminBusy and the first session's state is
// untouched by the failed attempt.
func TestAdminExclusivity(t *testing.T) {
	r := NewRegistry(10)
	a := NewAdmin(r)

	s1, err := a.Open()
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}

	if _, err := a.Open(); err != ErrAdminBusy {
		t.Fatalf("second Open = %v, want ErrAdminBusy", err)
	}

	s1.Close()

	s2, err := a.Open()
	if err != nil {
		t.Fatalf("Open after close: %v", err)
	}
	s2.Close()
}

func TestAdminOpenConcurrentOnlyOneWins(t *testing.T) {
	r := NewRegistry(10)
	a := NewAdmin(r)

	const n = 16
	var wg sync.WaitGroup
	successes := make(chan *AdminSession, n)
	failures := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := a.Open()
			if err != nil {
				failures <- err
				return
			}
			successes <- s
		}()
	}
	wg.Wait()
	close(successes)
	close(failures)

	if len(successes) != 1 {
		t.Fatalf("got %d successful opens out of %d concurrent attempts, want exactly 1", len(successes), n)
	}
	for err := range failures {
		if err != ErrAdminBusy {
			t.Fatalf("failed open returned %v, want ErrAdminBusy", err)
		}
	}
	for s := range successes {
		s.Close()
	}
}

func TestAdminCloseIdempotent(t *testing.T) {
	r := NewRegistry(10)
	a := NewAdmin(r)

	s, err := a.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()
	s.Close() // must not panic or double-release

	if _, err := a.Open(); err != nil {
		t.Fatalf("Open after idempotent double-close: %v", err)
	}
}

func TestAdminCreateTagValidation(t *testing.T) {
	r := NewRegistry(10)
	a := NewAdmin(r)

	s, err := a.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.CreateTag(CreationRequest{Action: 'x', Dtype: Uint32, Name: "foo"}); err != ErrNameInvalid {
		t.Fatalf("bad action byte: got %v, want ErrNameInvalid", err)
	}

	info, err := s.CreateTag(CreationRequest{Action: creationAction, Dtype: Uint32, Name: "foo"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if info.Name != "foo" || info.Dtype != Uint32 {
		t.Fatalf("CreateTag info = %+v, want name=foo dtype=Uint32", info)
	}

	if _, err := s.CreateTag(CreationRequest{Action: creationAction, Dtype: Uint32, Name: "foo"}); err != ErrNameTaken {
		t.Fatalf("duplicate via admin: got %v, want ErrNameTaken", err)
	}

	if r.Lookup("foo") == nil {
		t.Fatal("tag created via admin session not visible in registry")
	}
}
