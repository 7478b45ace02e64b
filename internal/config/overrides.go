package config

import (
	"fmt"
	"strings"
)

const envPrefix = "LAZYCVS_"

// parseCLIConfigOverrides parses --config key=value pairs into the map
// shape apply expects. Repeated keys become lists.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, override := range overrides {
		key, value, ok := strings.Cut(override, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config override: %q, expected format: key=value", override)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}

		switch existing := result[key].(type) {
		case nil:
			result[key] = value
		case string:
			result[key] = []any{existing, value}
		case []any:
			result[key] = append(existing, value)
		}
	}

	return result, nil
}

// envOverrides maps LAZYCVS_CVS_COMMAND=... style variables to config keys.
func envOverrides(environ []string) map[string]any {
	result := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		if key == "" {
			continue
		}
		result[key] = value
	}
	return result
}
