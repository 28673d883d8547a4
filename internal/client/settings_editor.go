package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/optimistic"
)

// SettingsAPI is the part of Client a settings editor needs.
type SettingsAPI interface {
	GetSettings(ctx context.Context) (*availability.Settings, error)
	UpdateSettings(ctx context.Context, patch availability.Patch) (*availability.Settings, error)
}

// SettingsEditor keeps a local copy of the owner's settings and applies
// updates optimistically.
type SettingsEditor struct {
	api   SettingsAPI
	store *optimistic.Store[availability.Settings]

	mu    sync.Mutex
	state optimistic.State
}

func NewSettingsEditor(api SettingsAPI, initial availability.Settings) *SettingsEditor {
	return &SettingsEditor{
		api:   api,
		store: optimistic.NewStore(initial, availability.Settings.Clone),
	}
}

// OpenSettingsEditor loads the current settings from the server.
func OpenSettingsEditor(ctx context.Context, api SettingsAPI) (*SettingsEditor, error) {
	s, err := api.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return NewSettingsEditor(api, *s), nil
}

// Settings returns a copy of the locally visible settings.
func (e *SettingsEditor) Settings() availability.Settings {
	return e.store.Get()
}

// State is the outcome of the latest update.
func (e *SettingsEditor) State() optimistic.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Update applies patch locally, then sends it. When the server rejects it the
// local settings are restored and the error wraps ErrOptimisticConflict.
func (e *SettingsEditor) Update(ctx context.Context, patch availability.Patch) (availability.Settings, error) {
	if patch.IsEmpty() {
		return e.store.Get(), nil
	}

	e.setState(optimistic.StatePending)
	current, tx, err := optimistic.Run(ctx, e.store, patch.Apply,
		func(ctx context.Context, _ availability.Settings) (availability.Settings, error) {
			saved, err := e.api.UpdateSettings(ctx, patch)
			if err != nil {
				return availability.Settings{}, err
			}
			return *saved, nil
		})
	e.setState(tx.State())
	if err != nil {
		return current, fmt.Errorf("%w: %w", ErrOptimisticConflict, err)
	}
	return current, nil
}

func (e *SettingsEditor) setState(s optimistic.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}
