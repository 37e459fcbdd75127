package engine

import (
	"sync"
	"time"

	"korrektor/internal/corrector"
	"korrektor/pkg/types"
)

// Engine owns the model registry, per-model instances, and the corrector
// components bound to them. The expensive shared resource (a loaded model)
// is initialized once per model and reused by many stateless calls.
type Engine struct {
	mu           sync.RWMutex
	state        State
	err          string
	registry     []types.Model
	budgetMB     int
	marginMB     int
	defaultModel string
	instances    map[string]*Instance
	usedEstMB    int

	// Queue config
	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration

	// Generation defaults
	maxNewTokens int
	temperature  float64
	cacheTTL     time.Duration

	adapter    InferenceAdapter
	publisher  EventPublisher
	correctors map[string]*corrector.Corrector

	startTime        time.Time
	evictionsTotal   uint64
	correctionsTotal uint64
}

// New constructs an Engine with package defaults for queueing and generation.
func New(reg []types.Model, budgetMB, marginMB int, defaultModel string) *Engine {
	return NewWithConfig(EngineConfig{
		Registry:     reg,
		BudgetMB:     budgetMB,
		MarginMB:     marginMB,
		DefaultModel: defaultModel,
	})
}

// SetInferenceAdapter replaces the model runtime adapter. Must be called
// before the first correction.
func (e *Engine) SetInferenceAdapter(a InferenceAdapter) {
	e.mu.Lock()
	e.adapter = a
	e.mu.Unlock()
}

// SetEventPublisher installs a lifecycle event sink (nil restores the no-op).
func (e *Engine) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	e.mu.Lock()
	e.publisher = p
	e.mu.Unlock()
}

// Ready reports whether at least one instance can serve corrections.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == StateError {
		return false
	}
	for _, inst := range e.instances {
		if inst.State == StateReady {
			return true
		}
	}
	return false
}

// ListModels returns a copy of the registry.
func (e *Engine) ListModels() []types.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]types.Model, len(e.registry))
	copy(out, e.registry)
	return out
}

// DefaultModel returns the configured default model id.
func (e *Engine) DefaultModel() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaultModel
}
