// Package registry keeps the list of card types this process offers. Cards
// are registered explicitly at start-up.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

var ErrDuplicateCard = errors.New("card type already registered")

type CardInfo struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Preview          bool   `json:"preview"`
	DocumentationURL string `json:"documentationURL,omitempty"`
	EditorType       string `json:"editor,omitempty"`
}

type Registry struct {
	mu    sync.RWMutex
	cards []CardInfo
}

func New() *Registry {
	return &Registry{}
}

// Register adds a card type. Types are unique.
func (r *Registry) Register(info CardInfo) error {
	if info.Type == "" {
		return errors.New("card type is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.Type == info.Type {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, info.Type)
		}
	}
	r.cards = append(r.cards, info)
	return nil
}

// List returns the registered cards in registration order.
func (r *Registry) List() []CardInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CardInfo, len(r.cards))
	copy(out, r.cards)
	return out
}
