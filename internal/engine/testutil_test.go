package engine

import (
	"context"
	"sync/atomic"

	"korrektor/pkg/types"
)

// fakeAdapter satisfies InferenceAdapter and records Start calls.
type fakeAdapter struct {
	starts   int32
	startErr error
	session  *fakeSession
}

func (a *fakeAdapter) Start(modelPath string, params InferParams) (InferSession, error) {
	atomic.AddInt32(&a.starts, 1)
	if a.startErr != nil {
		return nil, a.startErr
	}
	if a.session == nil {
		a.session = &fakeSession{out: " ok"}
	}
	return a.session, nil
}

// fakeSession emits its configured continuation token by token. When block is
// set, Generate waits on it before returning so tests can hold the in-flight
// slot open.
type fakeSession struct {
	out        string
	err        error
	block      chan struct{}
	closed     int32
	lastParams InferParams
}

func (s *fakeSession) Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error) {
	s.lastParams = params
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return FinalResult{}, ctx.Err()
		}
	}
	if s.err != nil {
		return FinalResult{}, s.err
	}
	if err := onToken(s.out); err != nil {
		return FinalResult{}, err
	}
	return FinalResult{Content: s.out, FinishReason: "stop"}, nil
}

func (s *fakeSession) Close() error {
	atomic.AddInt32(&s.closed, 1)
	return nil
}

func newTestEngine(cfg EngineConfig, ad InferenceAdapter) *Engine {
	e := NewWithConfig(cfg)
	if ad != nil {
		e.SetInferenceAdapter(ad)
	}
	return e
}

func testRegistry(ids ...string) []types.Model {
	models := make([]types.Model, 0, len(ids))
	for _, id := range ids {
		models = append(models, types.Model{ID: id, Name: id, Path: "/does/not/exist/" + id})
	}
	return models
}
