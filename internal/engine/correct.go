package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"korrektor/internal/corrector"
	"korrektor/pkg/types"
)

// Correct resolves the target model, ensures its instance, and runs one
// grammar correction through the corrector bound to that model.
func (e *Engine) Correct(ctx context.Context, req types.CorrectRequest) (types.CorrectResponse, error) {
	modelID, err := e.resolveModelID(req.Model)
	if err != nil {
		return types.CorrectResponse{}, err
	}
	start := time.Now()
	cor := e.correctorFor(modelID)
	out, err := cor.CorrectN(ctx, req.Text, req.MaxNewTokens)
	if err != nil {
		return types.CorrectResponse{}, err
	}
	atomic.AddUint64(&e.correctionsTotal, 1)
	return types.CorrectResponse{
		ID:         uuid.NewString(),
		Original:   req.Text,
		Corrected:  out,
		Changed:    out != req.Text,
		Model:      modelID,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

// Generator returns a corrector.Generator bound to one model id. Each call
// to Generate ensures the instance, passes admission, and runs a single
// greedy generation against the shared session.
func (e *Engine) Generator(modelID string) corrector.Generator {
	return boundGenerator{e: e, modelID: modelID}
}

type boundGenerator struct {
	e       *Engine
	modelID string
}

func (g boundGenerator) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	e := g.e
	if err := e.EnsureInstance(ctx, g.modelID); err != nil {
		return "", err
	}
	release, err := e.beginGeneration(ctx, g.modelID)
	if err != nil {
		return "", err
	}
	defer release()

	e.mu.RLock()
	inst := e.instances[g.modelID]
	e.mu.RUnlock()
	if inst == nil || inst.session == nil {
		return "", ErrDependencyUnavailable("model session not loaded")
	}

	params := e.baseParams()
	if maxNewTokens > 0 {
		params.MaxTokens = maxNewTokens
	}
	var b strings.Builder
	onTok := func(tok string) error {
		b.WriteString(tok)
		return nil
	}
	final, err := inst.session.Generate(ctx, prompt, params, onTok)
	if err != nil {
		return "", err
	}
	if final.Content != "" {
		return final.Content, nil
	}
	return b.String(), nil
}

// correctorFor returns the corrector bound to modelID, creating it on first use.
func (e *Engine) correctorFor(modelID string) *corrector.Corrector {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.correctors == nil {
		e.correctors = make(map[string]*corrector.Corrector)
	}
	if c, ok := e.correctors[modelID]; ok {
		return c
	}
	opts := []corrector.Option{}
	if e.maxNewTokens > 0 {
		opts = append(opts, corrector.WithMaxNewTokens(e.maxNewTokens))
	}
	if e.cacheTTL > 0 {
		opts = append(opts, corrector.WithCache(e.cacheTTL))
	}
	c := corrector.New(boundGenerator{e: e, modelID: modelID}, opts...)
	e.correctors[modelID] = c
	return c
}
