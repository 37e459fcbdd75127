package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnsureInstance_UnknownModel(t *testing.T) {
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, &fakeAdapter{})
	if err := e.EnsureInstance(context.Background(), "missing.gguf"); !IsModelNotFound(err) {
		t.Fatalf("expected model-not-found, got %v", err)
	}
}

func TestEnsureInstance_EmptyID(t *testing.T) {
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, &fakeAdapter{})
	if err := e.EnsureInstance(context.Background(), ""); !IsModelNotFound(err) {
		t.Fatalf("expected model-not-found for empty id, got %v", err)
	}
}

func TestEnsureInstance_Idempotent(t *testing.T) {
	ad := &fakeAdapter{}
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, ad)
	for i := 0; i < 3; i++ {
		if err := e.EnsureInstance(context.Background(), "m.gguf"); err != nil {
			t.Fatalf("ensure %d: %v", i, err)
		}
	}
	if ad.starts != 1 {
		t.Fatalf("expected a single session start, got %d", ad.starts)
	}
	if !e.Ready() {
		t.Fatalf("engine should be ready after ensure")
	}
}

// gatedAdapter blocks inside Start until its gate is closed, so tests can
// hold a session load open while more ensures arrive.
type gatedAdapter struct {
	starts int32
	gate   chan struct{}
}

func (a *gatedAdapter) Start(modelPath string, params InferParams) (InferSession, error) {
	atomic.AddInt32(&a.starts, 1)
	<-a.gate
	return &fakeSession{out: " ok"}, nil
}

func TestEnsureInstance_ConcurrentFirstLoadStartsOnce(t *testing.T) {
	ad := &gatedAdapter{gate: make(chan struct{})}
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, ad)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.EnsureInstance(context.Background(), "m.gguf")
		}(i)
	}

	// One load in flight; the other ensure must wait instead of starting a
	// second session.
	waitUntil(t, time.Second, func() bool { return atomic.LoadInt32(&ad.starts) == 1 })
	close(ad.gate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("ensure %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&ad.starts); got != 1 {
		t.Fatalf("session started %d times, want 1", got)
	}
	if !e.Ready() {
		t.Fatalf("engine should be ready after concurrent ensures")
	}
}

func TestEnsureInstance_StartErrorMarksError(t *testing.T) {
	loadErr := errors.New("mmap failed")
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, &fakeAdapter{startErr: loadErr})
	if err := e.EnsureInstance(context.Background(), "m.gguf"); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	snap := e.Snapshot()
	if snap.State != StateError || snap.Err == "" {
		t.Fatalf("expected error snapshot, got %+v", snap)
	}
	if e.Ready() {
		t.Fatalf("engine must not be ready after a load failure")
	}
}

func TestEnsureInstance_PublishesEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, &fakeAdapter{})
	e.SetEventPublisher(pub)
	if err := e.EnsureInstance(context.Background(), "m.gguf"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	var sawStart, sawReady bool
	for _, ev := range pub.Events() {
		switch ev.Name {
		case "ensure_start":
			sawStart = true
		case "ensure_ready":
			sawReady = true
		}
	}
	if !sawStart || !sawReady {
		t.Fatalf("missing lifecycle events: %+v", pub.Events())
	}
}
