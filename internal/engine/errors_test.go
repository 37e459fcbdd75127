package engine

import (
	"errors"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	if !IsModelNotFound(ErrModelNotFound("x")) {
		t.Fatal("IsModelNotFound")
	}
	if !IsTooBusy(tooBusyError{modelID: "x"}) {
		t.Fatal("IsTooBusy")
	}
	if !IsDependencyUnavailable(ErrDependencyUnavailable("no runtime")) {
		t.Fatal("IsDependencyUnavailable")
	}
	other := errors.New("boring")
	if IsModelNotFound(other) || IsTooBusy(other) || IsDependencyUnavailable(other) {
		t.Fatal("helpers must not match arbitrary errors")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := ErrModelNotFound("m.gguf").Error(); got != "model not found: m.gguf" {
		t.Fatalf("got %q", got)
	}
	if got := (tooBusyError{modelID: "m.gguf"}).Error(); got != "too busy: m.gguf" {
		t.Fatalf("got %q", got)
	}
}
