// Package jsonfile implements the file-backed repositories. State is a
// whole JSON document rewritten on every save; writes go to a temp file
// in the same directory and are renamed into place so a crash mid-write
// cannot corrupt the previous state.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"catering-dispatch/internal/domain"
)

type OrderRepository struct {
	path string
}

func NewOrderRepository(path string) *OrderRepository {
	return &OrderRepository{path: path}
}

// Load reads the entire order collection. A missing file is an empty
// collection, not an error.
func (r *OrderRepository) Load() ([]*domain.Order, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var orders []*domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to parse orders file: %w", err)
	}
	return orders, nil
}

// Save rewrites the whole collection atomically.
func (r *OrderRepository) Save(orders []*domain.Order) error {
	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal orders: %w", err)
	}
	return writeAtomic(r.path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
