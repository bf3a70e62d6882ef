package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
)

// OverrideCache persists the viewer's manual travel-time overrides
// (order id to minutes) between restarts, until the server confirms them.
type OverrideCache struct {
	path string
}

func NewOverrideCache(path string) *OverrideCache {
	return &OverrideCache{path: path}
}

func (c *OverrideCache) Load() (map[string]int, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to read override cache: %w", err)
	}

	overrides := map[string]int{}
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse override cache: %w", err)
	}
	return overrides, nil
}

func (c *OverrideCache) Save(overrides map[string]int) error {
	data, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal overrides: %w", err)
	}
	return writeAtomic(c.path, data)
}
