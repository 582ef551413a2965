package ports

import (
	"context"
	"errors"

	"gaggimate-dashboard/internal/domain/model"
)

// HomeAssistantPort is everything the card needs from the host platform.
type HomeAssistantPort interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
	ListEntities(ctx context.Context) ([]model.RegistryEntry, error)
	GetStates(ctx context.Context) ([]model.EntityState, error)
	CallService(ctx context.Context, call model.ServiceCall) error
	Configure(url, token string)
	IsConfigured() bool
}

// ErrNotConfigured is returned when no Home Assistant URL or token is set.
var ErrNotConfigured = errors.New("Home Assistant not configured")
