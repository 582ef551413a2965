package ports

import (
	"context"
	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/domain/presentation"
	"gaggimate-dashboard/internal/domain/registry"
)

// CardPort is what the dashboard surface drives.
type CardPort interface {
	View() presentation.View
	Roles() model.RoleMap
	Config() model.CardConfig
	Do(ctx context.Context, action string, value string) error
}

// EditorPort backs the configuration form.
type EditorPort interface {
	Config() model.CardConfig
	Devices(ctx context.Context) []model.Device
	Entities(ctx context.Context) []string
	Update(ctx context.Context, field string, value interface{}) (model.CardConfig, error)
	Replace(ctx context.Context, cfg model.CardConfig) error
}

// CardCatalog lists the registered card types.
type CardCatalog interface {
	List() []registry.CardInfo
}

// StateFeed lets the surface follow snapshot changes.
type StateFeed interface {
	Subscribe() Subscription
}
