// Package validate checks query parameters shared by the HTTP handlers.
package validate

import (
	"fmt"

	"github.com/timewise/timewise/internal/model"
)

// DateParam parses an optional YYYY-MM-DD query parameter; empty yields the zero Date.
func DateParam(name, v string) (model.Date, error) {
	if v == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return model.Date{}, fmt.Errorf("%s must be a date (YYYY-MM-DD)", name)
	}
	return d, nil
}

// Range checks that from is not after to when both are set.
func Range(from, to model.Date) error {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("from must not be after to")
	}
	return nil
}
