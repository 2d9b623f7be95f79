package memory

import (
	"context"
	"fmt"
	"sync"

	"carledger/internal/core"
	ports "carledger/internal/export"
)

// Store is an in-memory RecordExporter used in tests and when no
// spreadsheet is configured.
type Store struct {
	mu       sync.Mutex
	vehicles map[string]core.Vehicle
	expenses map[string]core.Expense
}

var _ ports.RecordExporter = (*Store)(nil)

func New() *Store {
	return &Store{
		vehicles: make(map[string]core.Vehicle),
		expenses: make(map[string]core.Expense),
	}
}

func (s *Store) UpsertVehicle(_ context.Context, v core.Vehicle) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
	return fmt.Sprintf("mem:vehicle:%s", v.ID), nil
}

func (s *Store) UpsertExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	return fmt.Sprintf("mem:expense:%s", e.ID), nil
}

func (s *Store) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vehicles, id)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expenses, id)
	return nil
}

// Vehicle returns the stored vehicle by id, if present.
func (s *Store) Vehicle(id string) (core.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	return v, ok
}

// Expense returns the stored expense by id, if present.
func (s *Store) Expense(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	return e, ok
}

// Len reports the number of stored vehicles and expenses.
func (s *Store) Len() (vehicles, expenses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vehicles), len(s.expenses)
}
