package engine

import (
	"time"

	"korrektor/pkg/types"
)

// Defaults applied when corresponding EngineConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 5 * time.Second
	defaultTemperature   = 0.1
)

// EngineConfig encapsulates all tunables for Engine construction.
type EngineConfig struct {
	Registry      []types.Model
	BudgetMB      int
	MarginMB      int
	DefaultModel  string
	MaxQueueDepth int
	MaxWait       time.Duration
	DrainTimeout  time.Duration
	// Generation defaults
	MaxNewTokens int
	Temperature  float64
	CacheTTL     time.Duration
	// llama.cpp configuration (no envs; set by callers)
	CtxSize int
	Threads int
}

// NewWithConfig constructs an Engine from EngineConfig.
func NewWithConfig(cfg EngineConfig) *Engine {
	e := &Engine{
		state:        StateLoading,
		registry:     cfg.Registry,
		budgetMB:     cfg.BudgetMB,
		marginMB:     cfg.MarginMB,
		defaultModel: cfg.DefaultModel,
		instances:    make(map[string]*Instance),
		publisher:    noopPublisher{},
		cacheTTL:     cfg.CacheTTL,
	}
	if cfg.MaxQueueDepth <= 0 {
		e.maxQueueDepth = defaultMaxQueueDepth
	} else {
		e.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		e.maxWait = defaultMaxWait
	} else {
		e.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		e.drainTimeout = defaultDrainTimeout
	} else {
		e.drainTimeout = cfg.DrainTimeout
	}
	if cfg.MaxNewTokens > 0 {
		e.maxNewTokens = cfg.MaxNewTokens
	}
	if cfg.Temperature > 0 {
		e.temperature = cfg.Temperature
	} else {
		e.temperature = defaultTemperature
	}
	// In-process llama adapter by default; callers may swap in a server-backed
	// adapter with SetInferenceAdapter.
	e.adapter = NewLlamaAdapter(cfg.CtxSize, cfg.Threads)
	e.startTime = time.Now()
	return e
}
