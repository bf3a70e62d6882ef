package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"

	"catering-dispatch/internal/domain"
)

// DriverRepository loads the read-only driver roster. The roster is
// maintained by the administrative side of the system, never written here.
type DriverRepository struct {
	path string
}

func NewDriverRepository(path string) *DriverRepository {
	return &DriverRepository{path: path}
}

func (r *DriverRepository) Load() ([]domain.Driver, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read drivers file: %w", err)
	}

	var drivers []domain.Driver
	if err := json.Unmarshal(data, &drivers); err != nil {
		return nil, fmt.Errorf("failed to parse drivers file: %w", err)
	}
	return drivers, nil
}

// Save exists for the seeder only; the running server never writes the roster.
func (r *DriverRepository) Save(drivers []domain.Driver) error {
	data, err := json.MarshalIndent(drivers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal drivers: %w", err)
	}
	return writeAtomic(r.path, data)
}
