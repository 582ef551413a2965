// Package memstore keeps the live Home Assistant state snapshot in a go-memdb
// table and notifies subscribers when it changes.
package memstore

import (
	"fmt"
	"sync"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/ports"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const tableState = "state"

type stateRecord struct {
	EntityID   string
	// Seq is the zero padded insertion number, so the index sorts in
	// insertion order.
	Seq        string
	State      string
	Attributes map[string]interface{}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableState: {
				Name: tableState,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "EntityID"},
					},
					"seq": {
						Name:    "seq",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Seq"},
					},
				},
			},
		},
	}
}

// Store implements ports.StateStore. EntityIDs come back in the order the
// entities were first seen, which for a Replace is the order Home Assistant
// listed them.
type Store struct {
	db *memdb.MemDB
	// seq is only touched inside write transactions, which memdb serializes.
	seq uint64

	mu   sync.Mutex
	subs map[uuid.UUID]*subscription
}

var _ ports.StateStore = (*Store)(nil)

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create state db: %w", err)
	}
	return &Store{db: db, subs: map[uuid.UUID]*subscription{}}, nil
}

func (s *Store) Get(entityID string) (model.EntityState, bool) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tableState, "id", entityID)
	if err != nil || raw == nil {
		return model.EntityState{}, false
	}
	return toState(raw.(*stateRecord)), true
}

func (s *Store) EntityIDs() []string {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tableState, "seq")
	if err != nil {
		return nil
	}
	var ids []string
	for obj := it.Next(); obj != nil; obj = it.Next() {
		ids = append(ids, obj.(*stateRecord).EntityID)
	}
	return ids
}

// Upsert keeps an entity's position when it is already known.
func (s *Store) Upsert(state model.EntityState) error {
	txn := s.db.Txn(true)
	if err := s.insert(txn, state); err != nil {
		txn.Abort()
		return fmt.Errorf("upsert %s: %w", state.EntityID, err)
	}
	txn.Commit()
	s.notify()
	return nil
}

// Replace swaps the whole snapshot in one transaction.
func (s *Store) Replace(states []model.EntityState) error {
	txn := s.db.Txn(true)
	if _, err := txn.DeleteAll(tableState, "id"); err != nil {
		txn.Abort()
		return fmt.Errorf("clear states: %w", err)
	}
	for _, st := range states {
		if err := s.insert(txn, st); err != nil {
			txn.Abort()
			return fmt.Errorf("insert %s: %w", st.EntityID, err)
		}
	}
	txn.Commit()
	s.notify()
	return nil
}

// Delete drops an entity. Unknown ids are not an error.
func (s *Store) Delete(entityID string) error {
	txn := s.db.Txn(true)
	n, err := txn.DeleteAll(tableState, "id", entityID)
	if err != nil {
		txn.Abort()
		return fmt.Errorf("delete %s: %w", entityID, err)
	}
	txn.Commit()
	if n > 0 {
		s.notify()
	}
	return nil
}

func (s *Store) insert(txn *memdb.Txn, st model.EntityState) error {
	rec := toRecord(st)
	existing, err := txn.First(tableState, "id", st.EntityID)
	if err != nil {
		return err
	}
	if existing != nil {
		rec.Seq = existing.(*stateRecord).Seq
	} else {
		s.seq++
		rec.Seq = fmt.Sprintf("%020d", s.seq)
	}
	return txn.Insert(tableState, rec)
}

func (s *Store) Subscribe() ports.Subscription {
	sub := &subscription{id: uuid.New(), c: make(chan struct{}, 1), store: s}
	s.mu.Lock()
	s.subs[sub.id] = sub
	s.mu.Unlock()
	return sub
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub.c <- struct{}{}:
		default:
		}
	}
}

type subscription struct {
	id    uuid.UUID
	c     chan struct{}
	store *Store
	once  sync.Once
}

func (s *subscription) C() <-chan struct{} { return s.c }

func (s *subscription) Close() {
	s.once.Do(func() {
		s.store.mu.Lock()
		delete(s.store.subs, s.id)
		s.store.mu.Unlock()
	})
}

func toRecord(st model.EntityState) *stateRecord {
	return &stateRecord{
		EntityID:   st.EntityID,
		State:      st.State,
		Attributes: st.Attributes,
	}
}

func toState(r *stateRecord) model.EntityState {
	return model.EntityState{EntityID: r.EntityID, State: r.State, Attributes: r.Attributes}
}
