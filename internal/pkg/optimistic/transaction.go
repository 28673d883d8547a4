// Package optimistic applies local changes ahead of a remote write and
// restores the previous value when the write fails.
package optimistic

import (
	"context"
	"errors"
	"sync"
)

var ErrNotPending = errors.New("optimistic transaction is not pending")

type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	}
	return "unknown"
}

// Store holds the locally visible value. Reads and writes return copies made by clone.
type Store[T any] struct {
	mu    sync.Mutex
	value T
	clone func(T) T
}

// NewStore creates a store. A nil clone copies values by assignment.
func NewStore[T any](initial T, clone func(T) T) *Store[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Store[T]{value: clone(initial), clone: clone}
}

func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.value)
}

func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = s.clone(v)
}

// Begin snapshots the current value and replaces it with apply(current).
func (s *Store[T]) Begin(apply func(T) T) *Tx[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone(s.value)
	s.value = apply(s.clone(s.value))
	return &Tx[T]{
		store:      s,
		snapshot:   snapshot,
		optimistic: s.clone(s.value),
		state:      StatePending,
	}
}

// Tx is one optimistic change. It is settled exactly once by Commit or Rollback.
type Tx[T any] struct {
	mu         sync.Mutex
	store      *Store[T]
	snapshot   T
	optimistic T
	state      State
}

func (tx *Tx[T]) State() State {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.state
}

// Optimistic returns the value applied locally when the transaction began.
func (tx *Tx[T]) Optimistic() T {
	return tx.store.clone(tx.optimistic)
}

// Snapshot returns the value the store held before the transaction.
func (tx *Tx[T]) Snapshot() T {
	return tx.store.clone(tx.snapshot)
}

// Commit keeps the optimistic value.
func (tx *Tx[T]) Commit() error {
	return tx.settle(StateCommitted, nil)
}

// CommitWith replaces the local value with the one confirmed by the remote side.
func (tx *Tx[T]) CommitWith(confirmed T) error {
	return tx.settle(StateCommitted, &confirmed)
}

// Rollback restores the snapshot as a whole.
func (tx *Tx[T]) Rollback() error {
	return tx.settle(StateRolledBack, &tx.snapshot)
}

func (tx *Tx[T]) settle(next State, value *T) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state != StatePending {
		return ErrNotPending
	}
	if value != nil {
		tx.store.Set(*value)
	}
	tx.state = next
	return nil
}

// Run applies change locally, calls remote with the optimistic value and
// settles the transaction with its outcome. On failure the store holds the
// snapshot again and the remote error is returned.
func Run[T any](ctx context.Context, store *Store[T], change func(T) T, remote func(context.Context, T) (T, error)) (T, *Tx[T], error) {
	tx := store.Begin(change)

	confirmed, err := remote(ctx, tx.Optimistic())
	if err != nil {
		_ = tx.Rollback()
		return tx.Snapshot(), tx, err
	}
	_ = tx.CommitWith(confirmed)
	return store.Get(), tx, nil
}
