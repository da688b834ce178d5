package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// loadRawConfig reads a YAML config file into the untyped form Setup
// validates. Relative roots are resolved against the config's directory.
func loadRawConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if roots, ok := raw["roots"].([]any); ok {
		base := filepath.Dir(path)
		resolved := make([]any, len(roots))
		for i, r := range roots {
			s, ok := r.(string)
			if ok && !filepath.IsAbs(s) {
				resolved[i] = filepath.Join(base, s)
				continue
			}
			resolved[i] = r
		}
		raw["roots"] = resolved
	}
	return raw, nil
}
