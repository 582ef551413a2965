package service

import (
	"context"
	"sync"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/ports"

	"github.com/stretchr/testify/mock"
)

type MockHAPort struct {
	mock.Mock
}

func (m *MockHAPort) ListDevices(ctx context.Context) ([]model.Device, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Device), args.Error(1)
}

func (m *MockHAPort) ListEntities(ctx context.Context) ([]model.RegistryEntry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.RegistryEntry), args.Error(1)
}

func (m *MockHAPort) GetStates(ctx context.Context) ([]model.EntityState, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.EntityState), args.Error(1)
}

func (m *MockHAPort) CallService(ctx context.Context, call model.ServiceCall) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockHAPort) Configure(url, token string) {
	m.Called(url, token)
}

func (m *MockHAPort) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockConfigRepo struct {
	mock.Mock
}

func (m *MockConfigRepo) Get(ctx context.Context) (model.CardConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CardConfig), args.Error(1)
}

func (m *MockConfigRepo) Save(ctx context.Context, cfg model.CardConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// fakeStore keeps states in insertion order.
type fakeStore struct {
	mu     sync.Mutex
	ids    []string
	states map[string]model.EntityState
	subs   []*fakeSub
}

func newFakeStore(states ...model.EntityState) *fakeStore {
	s := &fakeStore{states: map[string]model.EntityState{}}
	_ = s.Replace(states)
	return s
}

func (s *fakeStore) Get(id string) (model.EntityState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	return st, ok
}

func (s *fakeStore) EntityIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func (s *fakeStore) Upsert(st model.EntityState) error {
	s.mu.Lock()
	if _, ok := s.states[st.EntityID]; !ok {
		s.ids = append(s.ids, st.EntityID)
	}
	s.states[st.EntityID] = st
	subs := append([]*fakeSub(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub.c <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *fakeStore) Replace(states []model.EntityState) error {
	s.mu.Lock()
	s.ids = nil
	s.states = map[string]model.EntityState{}
	s.mu.Unlock()
	for _, st := range states {
		_ = s.Upsert(st)
	}
	return nil
}

func (s *fakeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	for i, known := range s.ids {
		if known == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) Subscribe() ports.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &fakeSub{c: make(chan struct{}, 1)}
	s.subs = append(s.subs, sub)
	return sub
}

type fakeSub struct {
	c chan struct{}
}

func (f *fakeSub) C() <-chan struct{} { return f.c }
func (f *fakeSub) Close()             {}
