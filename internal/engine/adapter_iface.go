package engine

import "context"

// InferenceAdapter abstracts the model runtime used by the Engine.
// Concrete implementations (e.g., llama.cpp) should satisfy this interface.
type InferenceAdapter interface {
	// Start loads the model at the given path and prepares a reusable session
	// with the given base parameters.
	Start(modelPath string, params InferParams) (InferSession, error)
}

// InferSession represents a loaded model serving one generation at a time.
type InferSession interface {
	// Generate streams tokens for the given prompt using the given
	// parameters. The onToken callback is invoked for each token.
	// Implementations must return when the context is canceled.
	Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error)
	// Close releases any resources associated with the session.
	Close() error
}

// InferParams captures generation parameters passed to the adapter.
type InferParams struct {
	Temperature   float32
	TopP          float32
	TopK          int
	MaxTokens     int
	Stop          []string
	Seed          int
	RepeatPenalty float32
}

// greedy constrains params to deterministic decoding: the highest-probability
// token is taken at every step regardless of temperature.
func (p InferParams) greedy() InferParams {
	p.TopK = 1
	p.TopP = 0
	return p
}

// FinalResult summarizes the generation after streaming.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
