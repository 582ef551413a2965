package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/ports"

	"github.com/go-logr/logr"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
)

const DefaultBrand = "gaggimate"

var ErrUnknownField = errors.New("unknown config field")

var editorFields = map[string]struct{}{
	"device_id":     {},
	"entity":        {},
	"name":          {},
	"show_profile":  {},
	"show_weight":   {},
	"show_controls": {},
}

// ConfigSink receives every replacement config emitted by the editor.
type ConfigSink interface {
	Config() model.CardConfig
	SetConfig(ctx context.Context, cfg model.CardConfig)
}

// EditorService backs the configuration form. Every change produces a full
// replacement config, which is persisted and then handed to the card.
type EditorService struct {
	haPort ports.HomeAssistantPort
	store  ports.StateStore
	repo   ports.ConfigRepository
	card   ConfigSink
	brand  string
	logger logr.Logger
}

func NewEditorService(haPort ports.HomeAssistantPort, store ports.StateStore, repo ports.ConfigRepository, card ConfigSink, brand string, logger logr.Logger) *EditorService {
	if brand == "" {
		brand = DefaultBrand
	}
	return &EditorService{
		haPort: haPort,
		store:  store,
		repo:   repo,
		card:   card,
		brand:  strings.ToLower(brand),
		logger: logger.WithName("editor"),
	}
}

func (s *EditorService) Config() model.CardConfig {
	return s.card.Config()
}

// Devices lists the registry devices whose manufacturer, model or name
// mentions the brand. Lookup errors give an empty list.
func (s *EditorService) Devices(ctx context.Context) []model.Device {
	if !s.haPort.IsConfigured() {
		return []model.Device{}
	}
	devices, err := s.haPort.ListDevices(ctx)
	if err != nil {
		s.logger.Error(err, "error loading devices")
		return []model.Device{}
	}
	out := []model.Device{}
	for _, d := range devices {
		if s.matches(d.Manufacturer) || s.matches(d.Model) || s.matches(d.Name) {
			out = append(out, d)
		}
	}
	return out
}

// Entities lists the entity ids in the snapshot that mention the brand.
func (s *EditorService) Entities(ctx context.Context) []string {
	out := []string{}
	for _, id := range s.store.EntityIDs() {
		if s.matches(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *EditorService) matches(v string) bool {
	return v != "" && strings.Contains(strings.ToLower(v), s.brand)
}

// Update sets a single field and emits the resulting config. Field names are
// accepted in any case style ("showProfile", "show-profile"). Setting a field
// to its current value emits nothing.
func (s *EditorService) Update(ctx context.Context, field string, value interface{}) (model.CardConfig, error) {
	key := strcase.ToSnake(field)
	if _, ok := editorFields[key]; !ok {
		return model.CardConfig{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	current := s.card.Config()
	next := current
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &next,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return current, err
	}
	if err := decoder.Decode(map[string]interface{}{key: value}); err != nil {
		return current, fmt.Errorf("%w: field %s: %v", model.ErrInvalidConfig, key, err)
	}
	if next == current {
		return current, nil
	}
	return next, s.emit(ctx, next)
}

// Replace emits a whole config as given.
func (s *EditorService) Replace(ctx context.Context, cfg model.CardConfig) error {
	return s.emit(ctx, cfg)
}

func (s *EditorService) emit(ctx context.Context, cfg model.CardConfig) error {
	if err := s.repo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.logger.Info("config changed", "device_id", cfg.DeviceID, "entity", cfg.Entity, "name", cfg.Name)
	s.card.SetConfig(ctx, cfg)
	return nil
}
