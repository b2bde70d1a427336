package core_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/verbyflow/signaling/internal/core"
	"github.com/verbyflow/signaling/internal/domain"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	m.Run()
}

// fakeConn records every frame pushed to it.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestRegisterLastWins(t *testing.T) {
	reg := core.NewConnRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	reg.Register("alice", first)
	reg.Register("alice", second)

	got, ok := reg.Resolve("alice")
	if !ok {
		t.Fatal("expected alice to resolve")
	}
	if got != core.Conn(second) {
		t.Error("expected the most recent registration to win")
	}
	if reg.Count() != 1 {
		t.Errorf("expected a single entry, got %d", reg.Count())
	}
}

func TestResolveMissing(t *testing.T) {
	reg := core.NewConnRegistry()
	if _, ok := reg.Resolve("nobody"); ok {
		t.Error("expected miss for unknown identity")
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	reg := core.NewConnRegistry()
	reg.Register("bob", &fakeConn{})

	reg.Unregister("bob")
	reg.Unregister("bob")
	reg.Unregister("never-registered")

	if _, ok := reg.Resolve("bob"); ok {
		t.Error("expected bob to be gone")
	}
}

func TestConcurrentRegisterSameIdentity(t *testing.T) {
	reg := core.NewConnRegistry()
	const n = 64
	conns := make([]*fakeConn, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		conns[i] = &fakeConn{}
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			reg.Register("carol", c)
		}(conns[i])
	}
	wg.Wait()

	got, ok := reg.Resolve("carol")
	if !ok {
		t.Fatal("expected carol to resolve")
	}
	found := false
	for _, c := range conns {
		if got == core.Conn(c) {
			found = true
			break
		}
	}
	if !found {
		t.Error("resolved handle is not one of the registered connections")
	}
}

func TestConcurrentDistinctIdentities(t *testing.T) {
	reg := core.NewConnRegistry()
	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Register(domain.Identity(fmt.Sprintf("user-%d", i)), &fakeConn{})
		}(i)
	}
	wg.Wait()

	if reg.Count() != n {
		t.Fatalf("expected %d entries, got %d", n, reg.Count())
	}
	for i := 0; i < n; i++ {
		if _, ok := reg.Resolve(domain.Identity(fmt.Sprintf("user-%d", i))); !ok {
			t.Errorf("user-%d did not resolve", i)
		}
	}
}
