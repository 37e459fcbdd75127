// Package engine provides lifecycle, admission, and generation coordination
// for model instances backing the corrector. It is structured into small
// files by concern:
//
//   - engine.go: core Engine type, constructor, simple getters.
//   - config.go: EngineConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Instance, Snapshot).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound).
//   - helpers.go: small utilities (model lookup, memory estimation).
//   - admission.go: per-instance queueing and generation admission.
//   - ensure.go: EnsureInstance lifecycle and session loading.
//   - evict.go: eviction logic to fit within the memory budget.
//   - correct.go: the correction entry point and generator binding.
//   - status.go: Status/Snapshot reporting helpers.
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp adapter, enabled with
//     `-tags=llama` (adapter_llama.go, llama_cgo.go). A no-CGO stub compiles
//     when the tag is not set (adapter_llama_stub.go) and fails fast instead
//     of mocking.
//   - External llama server: adapter_server.go talks to a running llama.cpp
//     server over its OpenAI-compatible completion endpoint; install it with
//     SetInferenceAdapter.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (New/NewWithConfig, Ready, ListModels, Status,
// Correct, Unload, Close). Internal types are subject to change.
package engine
