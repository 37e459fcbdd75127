package types

// CorrectRequest represents a grammar correction request payload.
type CorrectRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: qwen2.5-3b-q4_k_m.gguf
	Model string `json:"model,omitempty" example:"qwen2.5-3b-q4_k_m.gguf"`
	// Required German text to check for grammar and spelling errors.
	// example: Die Kinder spielt im Garten.
	Text string `json:"text" example:"Die Kinder spielt im Garten."`
	// Maximum number of new tokens to generate. Defaults to the server setting.
	// example: 100
	MaxNewTokens int `json:"max_new_tokens,omitempty" example:"100"`
}

// CorrectResponse is the result of a single correction.
type CorrectResponse struct {
	// Unique identifier for this correction.
	// example: 8f7b6a0e-3c51-4d28-9a6d-50f2f1d6a111
	ID string `json:"id" example:"8f7b6a0e-3c51-4d28-9a6d-50f2f1d6a111"`
	// The input text, unchanged.
	// example: Die Kinder spielt im Garten.
	Original string `json:"original" example:"Die Kinder spielt im Garten."`
	// The corrected text, or the extraction error sentinel when the model
	// output did not contain the expected marker.
	// example: Die Kinder spielen im Garten.
	Corrected string `json:"corrected" example:"Die Kinder spielen im Garten."`
	// Whether the corrected text differs from the original (byte comparison).
	// example: true
	Changed bool `json:"changed" example:"true"`
	// Model that produced the correction.
	// example: qwen2.5-3b-q4_k_m.gguf
	Model string `json:"model" example:"qwen2.5-3b-q4_k_m.gguf"`
	// Wall-clock duration of the correction in milliseconds.
	// example: 412
	DurationMS int64 `json:"duration_ms" example:"412"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InstanceStatus summarizes a loaded model instance for /status.
type InstanceStatus struct {
	// ID of the model this instance serves.
	// example: qwen2.5-3b-q4_k_m.gguf
	ModelID string `json:"model_id" example:"qwen2.5-3b-q4_k_m.gguf"`
	// Current lifecycle state of the instance (e.g., loading, ready, draining).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this instance served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Estimated memory usage in MB.
	// example: 2100
	EstMemMB int `json:"est_mem_mb" example:"2100"`
	// Current queue length for incoming requests.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of in-flight requests currently being processed.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loaded/managed instances.
	Instances []InstanceStatus `json:"instances"`
	// Memory budget in MB across all instances.
	// example: 8192
	BudgetMB int `json:"budget_mb" example:"8192"`
	// Estimated used memory in MB.
	// example: 2048
	UsedMB int `json:"used_est_mb" example:"2048"`
	// Reserved memory margin in MB.
	// example: 512
	MarginMB int `json:"margin_mb" example:"512"`
	// Overall engine state (e.g., loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last error observed by the engine (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of evictions performed to free memory.
	// example: 2
	EvictionsTotal uint64 `json:"evictions_total" example:"2"`
	// Total number of corrections served since start.
	// example: 120
	CorrectionsTotal uint64 `json:"corrections_total" example:"120"`
	// Number of instances currently warming up (loading).
	// example: 1
	WarmupsInProgress int `json:"warmups_in_progress" example:"1"`
	// Number of instances currently draining (unload in progress).
	// example: 0
	DrainingCount int `json:"draining_count" example:"0"`
}
