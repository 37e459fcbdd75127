package corrector

import (
	"context"
	"strings"
)

// Marker separates the instruction prompt from the generated correction in the
// decoded output. Extraction takes everything after its first occurrence.
const Marker = "Korrigiert:"

// ErrNoCorrection is the sentinel result returned when the decoded output does
// not contain the marker. It is a normal result value, never an error: a
// malformed generation must not crash the caller.
const ErrNoCorrection = "Error: Model did not produce a valid correction."

// promptTemplate is the fixed German instruction prompt. The sentence is
// embedded after the "Original:" label and the prompt ends with the bare
// marker so the model continues from that point.
const promptTemplate = "Du bist ein Grammatik- und Rechtschreibhilfe-Tool für Deutsch. Überprüfe den folgenden deutschen Satz auf Fehler und gib die korrigierte Version zurück.\n    \nOriginal: "

// DefaultMaxNewTokens caps generation length when the caller does not supply one.
const DefaultMaxNewTokens = 100

// Generator produces a model continuation for a prompt. Implementations run
// one deterministic (greedy) generation capped at maxNewTokens and return the
// generated continuation text only, without the prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, maxNewTokens int) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	return f(ctx, prompt, maxNewTokens)
}

// BuildPrompt renders the instruction prompt for one sentence.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(promptTemplate) + len(text) + len(Marker) + 1)
	b.WriteString(promptTemplate)
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(Marker)
	return b.String()
}

// Extract returns the text after the first occurrence of the marker, trimmed
// of surrounding whitespace. When the marker is absent it degrades to the
// ErrNoCorrection sentinel instead of failing.
func Extract(decoded string) string {
	_, after, ok := strings.Cut(decoded, Marker)
	if !ok {
		return ErrNoCorrection
	}
	return strings.TrimSpace(after)
}

// Corrector corrects German grammar and spelling by prompting an injected
// generator and extracting the marked continuation. It is stateless apart
// from an optional result cache and safe for concurrent use when the
// generator is.
type Corrector struct {
	gen          Generator
	maxNewTokens int
	cache        *resultCache
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithMaxNewTokens overrides the default generation cap.
func WithMaxNewTokens(n int) Option {
	return func(c *Corrector) {
		if n > 0 {
			c.maxNewTokens = n
		}
	}
}

// New constructs a Corrector around the given generator.
func New(gen Generator, opts ...Option) *Corrector {
	c := &Corrector{gen: gen, maxNewTokens: DefaultMaxNewTokens}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct runs one correction with the configured generation cap.
func (c *Corrector) Correct(ctx context.Context, text string) (string, error) {
	return c.CorrectN(ctx, text, c.maxNewTokens)
}

// CorrectN runs one correction capped at maxNewTokens new tokens.
//
// The decoded output is the prompt plus the continuation, mirroring a full
// detokenization pass; the marker therefore sits at the prompt tail and the
// correction follows it. Generator failures surface as errors; a missing
// marker degrades to the ErrNoCorrection sentinel result.
func (c *Corrector) CorrectN(ctx context.Context, text string, maxNewTokens int) (string, error) {
	if maxNewTokens <= 0 {
		maxNewTokens = c.maxNewTokens
	}
	if c.cache != nil {
		if out, ok := c.cache.get(text); ok {
			return out, nil
		}
	}
	prompt := BuildPrompt(text)
	continuation, err := c.gen.Generate(ctx, prompt, maxNewTokens)
	if err != nil {
		return "", err
	}
	out := Extract(prompt + continuation)
	if c.cache != nil && out != ErrNoCorrection {
		c.cache.put(text, out)
	}
	return out, nil
}
