package engine

import "time"

// evictUntilFits removes LRU idle instances until required MB fits budget + margin.
func (e *Engine) evictUntilFits(requiredMB int) error {
	deadline := time.Now().Add(1 * time.Second)
	for {
		e.mu.Lock()
		fits := (e.usedEstMB + requiredMB + e.marginMB) <= e.budgetMB
		if fits {
			e.mu.Unlock()
			return nil
		}
		// Pick LRU idle instance (no in-flight and no queued requests)
		var lru *Instance
		for _, inst := range e.instances {
			if len(inst.genCh) > 0 || len(inst.queueCh) > 0 {
				// active or has queued work; cannot evict without cancelation
				continue
			}
			if lru == nil || inst.LastUsed.Before(lru.LastUsed) {
				lru = inst
			}
		}
		if lru == nil {
			// nothing to evict
			e.mu.Unlock()
			return nil
		}
		delete(e.instances, lru.ID)
		e.usedEstMB -= lru.EstMemMB
		if e.usedEstMB < 0 {
			e.usedEstMB = 0
		}
		e.evictionsTotal++
		sess := lru.session
		e.mu.Unlock()
		if sess != nil {
			_ = sess.Close()
		}
		e.publisher.Publish(Event{Name: "evicted", ModelID: lru.ID})

		if time.Now().After(deadline) {
			return nil
		}
		// loop to re-check
	}
}
