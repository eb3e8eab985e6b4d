package validate

import (
	"testing"
	"time"

	"github.com/timewise/timewise/internal/model"
)

func TestDateParamAndRange(t *testing.T) {
	d, err := DateParam("from", "")
	if err != nil || !d.IsZero() {
		t.Fatalf("empty param: got %v, %v", d, err)
	}
	d, err = DateParam("from", "2024-03-01")
	if err != nil || !d.Equal(model.NewDate(2024, time.March, 1)) {
		t.Fatalf("got %v, %v", d, err)
	}
	if _, err := DateParam("from", "03/01/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
	if err := Range(model.NewDate(2024, time.March, 2), model.NewDate(2024, time.March, 1)); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if err := Range(model.NewDate(2024, time.March, 1), model.Date{}); err != nil {
		t.Fatalf("open range: %v", err)
	}
}
