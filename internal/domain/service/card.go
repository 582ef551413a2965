package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/domain/presentation"
	"gaggimate-dashboard/internal/domain/registry"
	"gaggimate-dashboard/internal/domain/resolver"
	"gaggimate-dashboard/internal/ports"

	"github.com/adhocore/gronx"
	"github.com/go-logr/logr"
	"github.com/iancoleman/strcase"
)

const (
	CardType   = "gaggimate-card"
	EditorType = "gaggimate-card-editor"
)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrInvalidSchedule = errors.New("invalid refresh schedule")
)

// CardInfo describes the card for the card registry.
func CardInfo() registry.CardInfo {
	return registry.CardInfo{
		Type:             CardType,
		Name:             "GaggiMate Card",
		Description:      "A custom card for controlling GaggiMate espresso machines",
		Preview:          true,
		DocumentationURL: "https://github.com/DevNullGamer/GaggiMate_HA_card",
		EditorType:       EditorType,
	}
}

// CardService owns the resolved role map of one card and turns user actions
// into Home Assistant service calls.
type CardService struct {
	haPort   ports.HomeAssistantPort
	store    ports.StateStore
	specs    []resolver.RoleSpec
	schedule string
	logger   logr.Logger

	mu sync.RWMutex
	// generation is bumped on every config replacement; a resolution started
	// under an older generation is discarded.
	generation uint64
	config     model.CardConfig
	roles      model.RoleMap
	device     *model.Device

	subMu sync.Mutex
	subs  map[*resolvedSub]struct{}
}

func NewCardService(haPort ports.HomeAssistantPort, store ports.StateStore, cfg model.CardConfig, logger logr.Logger) *CardService {
	return &CardService{
		haPort: haPort,
		store:  store,
		specs:  resolver.DefaultRoleSpecs(),
		config: cfg,
		roles:  model.RoleMap{},
		subs:   map[*resolvedSub]struct{}{},
		logger: logger.WithName("card"),
	}
}

// SetRefreshSchedule makes Run re-resolve the mapping on a cron schedule.
// An empty expression disables periodic re-resolution.
func (s *CardService) SetRefreshSchedule(expr string) error {
	if expr != "" {
		gron := gronx.New()
		if !gron.IsValid(expr) {
			return fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
		}
	}
	s.mu.Lock()
	s.schedule = expr
	s.mu.Unlock()
	return nil
}

// Connect resolves the mapping for the current config.
func (s *CardService) Connect(ctx context.Context) model.RoleMap {
	return s.Resolve(ctx)
}

// Run follows the state store until ctx is done. A change in the snapshot
// triggers resolution only while no mapping exists.
func (s *CardService) Run(ctx context.Context) {
	sub := s.store.Subscribe()
	defer sub.Close()

	s.mu.RLock()
	schedule := s.schedule
	s.mu.RUnlock()

	var tick <-chan time.Time
	if schedule != "" {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		tick = ticker.C
	}
	gron := gronx.New()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.C():
			s.OnStatesChanged(ctx)
		case now := <-tick:
			due, err := gron.IsDue(schedule, now.Truncate(time.Minute))
			if err != nil {
				s.logger.Error(err, "refresh schedule")
				continue
			}
			if due {
				s.logger.V(1).Info("scheduled re-resolution")
				s.Resolve(ctx)
			}
		}
	}
}

// OnStatesChanged re-resolves while the mapping is still empty.
func (s *CardService) OnStatesChanged(ctx context.Context) {
	s.mu.RLock()
	empty := s.roles.Empty()
	configured := s.config.Configured()
	s.mu.RUnlock()
	if empty && configured {
		s.Resolve(ctx)
	}
}

// SetConfig replaces the config and re-resolves.
func (s *CardService) SetConfig(ctx context.Context, cfg model.CardConfig) {
	s.mu.Lock()
	s.generation++
	s.config = cfg
	s.roles = model.RoleMap{}
	s.device = nil
	s.mu.Unlock()
	s.Resolve(ctx)
}

// Resolve recomputes the whole mapping and swaps it in. Failures leave an
// empty mapping behind.
func (s *CardService) Resolve(ctx context.Context) model.RoleMap {
	s.mu.RLock()
	cfg, gen := s.config, s.generation
	s.mu.RUnlock()

	roles, device, err := s.resolve(ctx, cfg)
	if err != nil {
		s.logger.Error(err, "error fetching device entities", "device_id", cfg.DeviceID, "entity", cfg.Entity)
		roles, device = model.RoleMap{}, nil
	}

	s.mu.Lock()
	if gen != s.generation {
		s.logger.V(1).Info("dropping stale resolution", "generation", gen)
		current := s.roles.Clone()
		s.mu.Unlock()
		return current
	}
	s.roles = roles
	s.device = device
	s.mu.Unlock()

	s.logger.V(1).Info("resolved entities", "roles", len(roles))
	s.notifyResolved()
	return roles.Clone()
}

// Subscribe signals every time a resolution swaps in a new mapping.
// Signals are coalesced.
func (s *CardService) Subscribe() ports.Subscription {
	sub := &resolvedSub{c: make(chan struct{}, 1), card: s}
	s.subMu.Lock()
	s.subs[sub] = struct{}{}
	s.subMu.Unlock()
	return sub
}

func (s *CardService) notifyResolved() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for sub := range s.subs {
		select {
		case sub.c <- struct{}{}:
		default:
		}
	}
}

type resolvedSub struct {
	c    chan struct{}
	card *CardService
}

func (r *resolvedSub) C() <-chan struct{} { return r.c }

func (r *resolvedSub) Close() {
	r.card.subMu.Lock()
	delete(r.card.subs, r)
	r.card.subMu.Unlock()
}

func (s *CardService) resolve(ctx context.Context, cfg model.CardConfig) (model.RoleMap, *model.Device, error) {
	if !s.haPort.IsConfigured() || !cfg.Configured() {
		return model.RoleMap{}, nil, nil
	}

	if cfg.DeviceID != "" {
		devices, err := s.haPort.ListDevices(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list devices: %w", err)
		}
		var device *model.Device
		for i := range devices {
			if devices[i].ID == cfg.DeviceID {
				device = &devices[i]
				break
			}
		}
		if device == nil {
			return model.RoleMap{}, nil, nil
		}
		entries, err := s.haPort.ListEntities(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list entities: %w", err)
		}
		return resolver.ResolveRoles(resolver.DeviceCandidates(cfg.DeviceID, entries), s.specs), device, nil
	}

	if _, ok := resolver.BaseName(cfg.Entity); !ok {
		return model.RoleMap{}, nil, nil
	}
	ids := s.store.EntityIDs()
	if len(ids) == 0 {
		states, err := s.haPort.GetStates(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("get states: %w", err)
		}
		if err := s.store.Replace(states); err != nil {
			return nil, nil, err
		}
		ids = s.store.EntityIDs()
	}
	return resolver.ResolveRoles(resolver.SeedCandidates(cfg.Entity, ids), s.specs), nil, nil
}

func (s *CardService) Config() model.CardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *CardService) Roles() model.RoleMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles.Clone()
}

func (s *CardService) Device() *model.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.device == nil {
		return nil
	}
	d := *s.device
	return &d
}

// View renders the card against the current snapshot.
func (s *CardService) View() presentation.View {
	s.mu.RLock()
	in := presentation.Input{
		Roles:     s.roles.Clone(),
		States:    s.store,
		Config:    s.config,
		Device:    s.device,
		Connected: s.haPort.IsConfigured(),
	}
	s.mu.RUnlock()
	return presentation.BuildView(in)
}

// Do runs a named action. Action names are matched in kebab case, so
// "startBrew" and "start_brew" both mean "start-brew".
func (s *CardService) Do(ctx context.Context, action string, value string) error {
	switch strcase.ToKebab(action) {
	case presentation.ActionPower:
		return s.TogglePower(ctx)
	case presentation.ActionMode:
		return s.SelectMode(ctx, value)
	case presentation.ActionProfile:
		return s.SelectProfile(ctx, value)
	case presentation.ActionTargetTemperature:
		return s.SetTargetTemperature(ctx, value)
	case presentation.ActionStartBrew:
		return s.press(ctx, model.RoleStartBrew)
	case presentation.ActionStopBrew:
		return s.press(ctx, model.RoleStopBrew)
	case presentation.ActionStartSteam:
		return s.press(ctx, model.RoleStartSteam)
	case presentation.ActionFlush:
		return s.press(ctx, model.RoleFlush)
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

func (s *CardService) TogglePower(ctx context.Context) error {
	return s.call(ctx, model.RoleMachineActive, "switch", "toggle", nil)
}

func (s *CardService) SelectMode(ctx context.Context, option string) error {
	return s.call(ctx, model.RoleModeSelect, "select", "select_option", map[string]interface{}{"option": option})
}

func (s *CardService) SelectProfile(ctx context.Context, option string) error {
	return s.call(ctx, model.RoleProfileSelect, "select", "select_option", map[string]interface{}{"option": option})
}

// SetTargetTemperature drops values that are not finite numbers.
func (s *CardService) SetTargetTemperature(ctx context.Context, raw string) error {
	temp, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		s.logger.V(1).Info("ignoring non-numeric target temperature", "value", raw)
		return nil
	}
	return s.call(ctx, model.RoleTargetTempNumber, "number", "set_value", map[string]interface{}{"value": temp})
}

func (s *CardService) StartBrew(ctx context.Context) error  { return s.press(ctx, model.RoleStartBrew) }
func (s *CardService) StopBrew(ctx context.Context) error   { return s.press(ctx, model.RoleStopBrew) }
func (s *CardService) StartSteam(ctx context.Context) error { return s.press(ctx, model.RoleStartSteam) }
func (s *CardService) Flush(ctx context.Context) error      { return s.press(ctx, model.RoleFlush) }

func (s *CardService) press(ctx context.Context, role model.Role) error {
	return s.call(ctx, role, "button", "press", nil)
}

// call is a no-op when the role did not resolve.
func (s *CardService) call(ctx context.Context, role model.Role, domain, service string, data map[string]interface{}) error {
	s.mu.RLock()
	entityID, ok := s.roles.Get(role)
	s.mu.RUnlock()
	if !ok {
		s.logger.V(1).Info("role not resolved, skipping", "role", role)
		return nil
	}
	call := model.ServiceCall{Domain: domain, Service: service, EntityID: entityID, Data: data}
	if err := s.haPort.CallService(ctx, call); err != nil {
		s.logger.Error(err, "service call failed", "domain", domain, "service", service, "entity_id", entityID)
		return fmt.Errorf("%s.%s: %w", domain, service, err)
	}
	return nil
}
