package engine

import (
	"context"
	"strings"
	"time"
)

// EnsureInstance ensures a model instance is loaded and marked ready
// according to current resource budgeting and readiness state. The model
// session is started exactly once and reused by subsequent corrections.
func (e *Engine) EnsureInstance(ctx context.Context, modelID string) error {
	if modelID == "" {
		return modelNotFoundError{id: "(unspecified)"}
	}
	e.publisher.Publish(Event{Name: "ensure_start", ModelID: modelID})

	e.mu.RLock()
	inst, ok := e.instances[modelID]
	ready := ok && inst != nil && inst.State == StateReady
	e.mu.RUnlock()
	if ready {
		e.mu.Lock()
		if inst2, ok2 := e.instances[modelID]; ok2 && inst2 != nil && inst2.State == StateReady {
			inst2.LastUsed = time.Now()
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
		// State changed in between; continue with the ensure path.
	}

	mdl, ok := e.getModelByID(modelID)
	if !ok {
		e.publisher.Publish(Event{Name: "ensure_model_not_found", ModelID: modelID})
		return ErrModelNotFound(modelID)
	}
	reqMB := e.estimateMemMB(mdl)

	// Evict until it fits budget + margin, if a budget is configured
	if e.budgetMB > 0 {
		if err := e.evictUntilFits(reqMB); err != nil {
			e.publisher.Publish(Event{Name: "ensure_budget_fail", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
			return err
		}
	}

	e.mu.Lock()
	e.state = StateLoading
	e.err = ""
	inst, existed := e.instances[modelID]
	addedNow := false
	if !existed || inst == nil {
		inst = &Instance{
			ID:       modelID,
			State:    StateLoading,
			LastUsed: time.Now(),
			EstMemMB: reqMB,
			genCh:    make(chan struct{}, 1),
			queueCh:  make(chan struct{}, e.maxQueueDepth),
		}
		e.instances[modelID] = inst
		addedNow = true
	} else {
		inst.State = StateLoading
		inst.EstMemMB = reqMB
		inst.LastUsed = time.Now()
	}
	adapter := e.adapter
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		e.failInstance(modelID, err.Error())
		return err
	}

	// Load the model session once. This is the expensive step; everything
	// after it is a stateless call against the shared session. Concurrent
	// first requests serialize on the per-instance load latch: the second
	// waits here and finds the session already set.
	inst.loadMu.Lock()
	e.mu.RLock()
	loaded := inst.session != nil
	e.mu.RUnlock()
	if !loaded {
		if adapter == nil {
			inst.loadMu.Unlock()
			err := ErrDependencyUnavailable("inference adapter not initialized")
			e.failInstance(modelID, err.Error())
			return err
		}
		if strings.TrimSpace(mdl.Path) == "" {
			inst.loadMu.Unlock()
			e.failInstance(modelID, "empty model path")
			return ErrModelNotFound(modelID)
		}
		sess, err := adapter.Start(mdl.Path, e.baseParams())
		if err != nil {
			inst.loadMu.Unlock()
			e.failInstance(modelID, err.Error())
			e.publisher.Publish(Event{Name: "ensure_load_error", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
			return err
		}
		e.mu.Lock()
		inst.session = sess
		e.mu.Unlock()
	}
	inst.loadMu.Unlock()

	e.mu.Lock()
	if addedNow {
		e.usedEstMB += reqMB
	}
	inst.State = StateReady
	inst.LastUsed = time.Now()
	e.state = StateReady
	e.mu.Unlock()
	e.publisher.Publish(Event{Name: "ensure_ready", ModelID: modelID})
	return nil
}

// baseParams returns the greedy generation parameters shared by all sessions.
func (e *Engine) baseParams() InferParams {
	return InferParams{
		Temperature: float32(e.temperature),
		MaxTokens:   e.maxNewTokens,
	}.greedy()
}

// failInstance records an error state for the engine and the instance.
func (e *Engine) failInstance(modelID, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateError
	e.err = msg
	if inst := e.instances[modelID]; inst != nil {
		inst.State = StateError
	}
}
