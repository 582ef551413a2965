package ports

import (
	"context"
	"gaggimate-dashboard/internal/domain/model"
)

type ConfigRepository interface {
	Get(ctx context.Context) (model.CardConfig, error)
	Save(ctx context.Context, config model.CardConfig) error
}
