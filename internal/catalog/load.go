package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a catalog document from path, merges each record against the
// document's defaults, expands placeholders using hostname and secrets, and
// returns the assembled Catalog.
//
// Record order is preserved only in that later duplicate ids overwrite
// earlier ones; callers that care about authorship should keep ids unique.
func Load(path, hostname string, secrets map[string]string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	services := make(map[string]ServiceConfig, len(file.Services))
	for _, rec := range file.Services {
		if rec.ID == "" {
			return nil, fmt.Errorf("catalog file %s: service record missing id", path)
		}
		merged := mergeDefaults(rec, file.Defaults)
		merged = expandPlaceholders(merged, hostname, secrets)
		services[merged.ID] = toServiceConfig(merged)
	}

	return New(services), nil
}
