package types

// Model represents a discoverable or loadable LLM model on disk.
type Model struct {
	// Stable identifier for the model.
	// example: qwen2.5-3b-q4_k_m.gguf
	ID string `json:"id" example:"qwen2.5-3b-q4_k_m.gguf"`
	// Human-friendly name.
	// example: Qwen2.5 3B (Q4)
	Name string `json:"name" example:"Qwen2.5 3B (Q4)"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/qwen2.5-3b-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/models/qwen2.5-3b-q4_k_m.gguf"`
	// Quantization level or variant string, derived from the filename when possible.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Optional family (e.g., qwen, llama, mistral).
	// example: qwen
	Family string `json:"family,omitempty" example:"qwen"`
}
