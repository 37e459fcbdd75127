package engine

import (
	"sync/atomic"
	"time"

	"korrektor/pkg/types"
)

// Snapshot returns a read-only view of the engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{State: e.state, Err: e.err}
}

// Status builds a detailed status response for /status.
func (e *Engine) Status() types.StatusResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()
	resp := types.StatusResponse{
		BudgetMB:         e.budgetMB,
		UsedMB:           e.usedEstMB,
		MarginMB:         e.marginMB,
		LastError:        e.err,
		State:            string(e.state),
		UptimeSeconds:    int64(time.Since(e.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
		EvictionsTotal:   e.evictionsTotal,
		CorrectionsTotal: atomic.LoadUint64(&e.correctionsTotal),
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(e.instances))
	warmups := 0
	draining := 0
	for _, inst := range e.instances {
		if inst.State == StateLoading {
			warmups++
		}
		if inst.State == StateDraining {
			draining++
		}
		resp.Instances = append(resp.Instances, types.InstanceStatus{
			ModelID:       inst.ID,
			State:         string(inst.State),
			LastUsed:      inst.LastUsed.Unix(),
			EstMemMB:      inst.EstMemMB,
			QueueLen:      len(inst.queueCh),
			Inflight:      len(inst.genCh),
			MaxQueueDepth: cap(inst.queueCh),
		})
	}
	resp.WarmupsInProgress = warmups
	resp.DrainingCount = draining
	return resp
}
