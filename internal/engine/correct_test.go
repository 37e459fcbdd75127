package engine

import (
	"context"
	"testing"

	"korrektor/internal/corrector"
	"korrektor/pkg/types"
)

func TestCorrect_ReturnsExtractedCorrection(t *testing.T) {
	ad := &fakeAdapter{session: &fakeSession{out: " Die Kinder spielen im Garten."}}
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf"), DefaultModel: "m.gguf"}, ad)

	resp, err := e.Correct(context.Background(), types.CorrectRequest{Text: "Die Kinder spielt im Garten."})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if resp.Corrected != "Die Kinder spielen im Garten." {
		t.Fatalf("corrected=%q", resp.Corrected)
	}
	if !resp.Changed {
		t.Fatalf("expected changed=true: %+v", resp)
	}
	if resp.Model != "m.gguf" || resp.Original != "Die Kinder spielt im Garten." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID == "" {
		t.Fatalf("expected a correction id")
	}
}

func TestCorrect_UnchangedInput(t *testing.T) {
	ad := &fakeAdapter{session: &fakeSession{out: " Ich habe gestern ein Buch gekauft."}}
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf"), DefaultModel: "m.gguf"}, ad)

	resp, err := e.Correct(context.Background(), types.CorrectRequest{Text: "Ich habe gestern ein Buch gekauft."})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if resp.Changed {
		t.Fatalf("expected changed=false: %+v", resp)
	}
}

func TestCorrect_UnknownModel(t *testing.T) {
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf"), DefaultModel: "m.gguf"}, &fakeAdapter{})
	_, err := e.Correct(context.Background(), types.CorrectRequest{Model: "nope.gguf", Text: "x"})
	if !IsModelNotFound(err) {
		t.Fatalf("expected model-not-found, got %v", err)
	}
}

func TestCorrect_NoDefaultModel(t *testing.T) {
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf")}, &fakeAdapter{})
	_, err := e.Correct(context.Background(), types.CorrectRequest{Text: "x"})
	if !IsModelNotFound(err) {
		t.Fatalf("expected model-not-found for unspecified model, got %v", err)
	}
}

func TestCorrect_SessionLoadedOnce(t *testing.T) {
	ad := &fakeAdapter{session: &fakeSession{out: " ok"}}
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf"), DefaultModel: "m.gguf"}, ad)

	for i := 0; i < 3; i++ {
		if _, err := e.Correct(context.Background(), types.CorrectRequest{Text: "Satz"}); err != nil {
			t.Fatalf("correct %d: %v", i, err)
		}
	}
	if ad.starts != 1 {
		t.Fatalf("expected one session start, got %d", ad.starts)
	}
}

func TestCorrect_StubAdapterFailsFast(t *testing.T) {
	// Default build without the llama tag: the in-process adapter must refuse
	// to run rather than mock a correction.
	e := NewWithConfig(EngineConfig{Registry: testRegistry("m.gguf"), DefaultModel: "m.gguf"})
	_, err := e.Correct(context.Background(), types.CorrectRequest{Text: "x"})
	if err == nil {
		t.Fatalf("expected an error from the stub adapter")
	}
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency-unavailable, got %v", err)
	}
}

func TestGenerator_PassesMaxNewTokens(t *testing.T) {
	ad := &fakeAdapter{session: &fakeSession{out: " ok"}}
	e := newTestEngine(EngineConfig{Registry: testRegistry("m.gguf"), DefaultModel: "m.gguf", MaxNewTokens: 64}, ad)

	gen := e.Generator("m.gguf")
	out, err := gen.Generate(context.Background(), corrector.BuildPrompt("Satz"), 12)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != " ok" {
		t.Fatalf("out=%q", out)
	}
	if got := ad.session.lastParams; got.MaxTokens != 12 || got.TopK != 1 {
		t.Fatalf("expected greedy params with cap 12, got %+v", got)
	}
}
