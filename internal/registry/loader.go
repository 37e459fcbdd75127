package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"korrektor/internal/common/fsutil"
	"korrektor/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a registry from filenames.
// ID is the full filename (including extension); Path is the absolute file path.
// Quant and Family are best-effort parsed from the filename.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		// Use full filename as ID (e.g., "qwen2.5-3b-q4_k_m.gguf")
		p := filepath.Join(abs, name)
		models = append(models, types.Model{
			ID:     name,
			Name:   name,
			Path:   p,
			Quant:  parseQuant(name),
			Family: parseFamily(name),
		})
	}
	return models, nil
}

// quantRe matches common GGUF quantization suffixes like Q4_K_M, Q8_0, F16.
var quantRe = regexp.MustCompile(`(?i)\b(q[0-9]+(?:_[a-z0-9]+)*|f16|f32|bf16)\b`)

func parseQuant(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	norm := strings.NewReplacer("-", " ", ".", " ").Replace(base)
	if m := quantRe.FindString(norm); m != "" {
		return strings.ToUpper(m)
	}
	return ""
}

// knownFamilies is an ordered list so more specific names win (e.g., tinyllama
// before llama).
var knownFamilies = []string{"tinyllama", "qwen", "llama", "mistral", "phi", "gemma"}

func parseFamily(filename string) string {
	lower := strings.ToLower(filename)
	for _, f := range knownFamilies {
		if strings.Contains(lower, f) {
			return f
		}
	}
	return ""
}
