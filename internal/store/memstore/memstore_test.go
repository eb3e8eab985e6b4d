package memstore

import (
	"testing"

	"github.com/timewise/timewise/internal/store"
	"github.com/timewise/timewise/internal/store/storetest"
)

func TestMemStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
