package engine

import (
	"korrektor/internal/common/fsutil"
	"korrektor/pkg/types"
)

// getModelByID finds a model in the registry by id.
func (e *Engine) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range e.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// estimateMemMB estimates resident memory from the model file size.
func (e *Engine) estimateMemMB(mdl types.Model) int {
	return fsutil.FileSizeMB(mdl.Path)
}

// resolveModelID applies the default model when the request leaves it empty.
func (e *Engine) resolveModelID(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	e.mu.RLock()
	def := e.defaultModel
	e.mu.RUnlock()
	if def == "" {
		return "", modelNotFoundError{id: "(unspecified)"}
	}
	return def, nil
}
