package classifier

import (
	"sync/atomic"

	"NewsIntel/internal/domain"
)

// ActiveModel holds the currently active snapshot behind an atomic pointer.
// The training path swaps in a complete snapshot; readers observe either the
// old or the new value, never a partial update.
type ActiveModel struct {
	current atomic.Pointer[domain.ModelSnapshot]
}

// NewActiveModel starts with the given snapshot, which may be nil when no
// model has been trained yet.
func NewActiveModel(snap *domain.ModelSnapshot) *ActiveModel {
	m := &ActiveModel{}
	if snap != nil {
		m.current.Store(snap)
	}
	return m
}

// Load returns the active snapshot, or nil before the first activation.
func (m *ActiveModel) Load() *domain.ModelSnapshot {
	return m.current.Load()
}

// Swap atomically replaces the active snapshot.
func (m *ActiveModel) Swap(snap *domain.ModelSnapshot) {
	m.current.Store(snap)
}
