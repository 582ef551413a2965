package ports

import "gaggimate-dashboard/internal/domain/model"

// StateStore holds the latest state snapshot pushed by Home Assistant.
type StateStore interface {
	Get(entityID string) (model.EntityState, bool)
	EntityIDs() []string
	Upsert(state model.EntityState) error
	Replace(states []model.EntityState) error
	Delete(entityID string) error
	Subscribe() Subscription
}

// Subscription delivers a signal whenever the snapshot changed. Signals are
// coalesced, so a receiver only learns that something changed.
type Subscription interface {
	C() <-chan struct{}
	Close()
}
