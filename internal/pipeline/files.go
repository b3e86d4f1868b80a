package pipeline

import (
	"fmt"
	"os"

	"github.com/jszwec/csvutil"

	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
)

// WriteWardCSV writes the full ward list as a flat table, header included,
// overwriting any prior run.
func WriteWardCSV(path string, wards []domain.Ward) error {
	data, err := csvutil.Marshal(wards)
	if err != nil {
		return fmt.Errorf("marshal ward list: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write ward list: %w", err)
	}
	return nil
}

// ReadWardCSV loads the ward list written by the enumeration stage.
func ReadWardCSV(path string) ([]domain.Ward, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ward list: %w", err)
	}
	var wards []domain.Ward
	if err := csvutil.Unmarshal(data, &wards); err != nil {
		return nil, fmt.Errorf("parse ward list: %w", err)
	}
	return wards, nil
}
