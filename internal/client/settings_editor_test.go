package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/optimistic"
)

type fakeSettingsAPI struct {
	saved   availability.Settings
	err     error
	calls   int
	visible availability.Settings
	editor  *SettingsEditor
}

func (f *fakeSettingsAPI) GetSettings(context.Context) (*availability.Settings, error) {
	s := f.saved.Clone()
	return &s, nil
}

func (f *fakeSettingsAPI) UpdateSettings(_ context.Context, patch availability.Patch) (*availability.Settings, error) {
	f.calls++
	if f.editor != nil {
		f.visible = f.editor.Settings()
	}
	if f.err != nil {
		return nil, f.err
	}
	f.saved = patch.Apply(f.saved)
	s := f.saved.Clone()
	return &s, nil
}

func ptr[T any](v T) *T { return &v }

func TestSettingsEditor_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted", func(t *testing.T) {
		api := &fakeSettingsAPI{saved: availability.DefaultSettings("owner-1")}
		editor, err := OpenSettingsEditor(ctx, api)
		require.NoError(t, err)
		api.editor = editor

		got, err := editor.Update(ctx, availability.Patch{MinimumNoticeHours: ptr(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, got.MinimumNoticeHours)
		assert.Equal(t, 4, api.visible.MinimumNoticeHours, "change is visible before the server answers")
		assert.Equal(t, 4, editor.Settings().MinimumNoticeHours)
		assert.Equal(t, optimistic.StateCommitted, editor.State())
	})

	t.Run("Rejected Restores Previous Settings", func(t *testing.T) {
		before := availability.DefaultSettings("owner-1")
		before.BufferMinutes = 5
		api := &fakeSettingsAPI{saved: before, err: newAPIError(400, "invalid timezone")}
		editor := NewSettingsEditor(api, before)
		api.editor = editor

		_, err := editor.Update(ctx, availability.Patch{
			Timezone: ptr("Mars/Olympus"),
			Template: availability.WeeklyTemplate{
				availability.Monday: {IsEnabled: false, Slots: []availability.TimeRange{}},
			},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOptimisticConflict)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "could not save your availability, changes were reverted", UserMessage(err))

		assert.Equal(t, "Mars/Olympus", api.visible.Timezone)
		assert.False(t, api.visible.Template[availability.Monday].IsEnabled)

		assert.Equal(t, before, editor.Settings())
		assert.Equal(t, optimistic.StateRolledBack, editor.State())
	})

	t.Run("Empty Patch Is Not Sent", func(t *testing.T) {
		api := &fakeSettingsAPI{saved: availability.DefaultSettings("owner-1")}
		editor := NewSettingsEditor(api, api.saved)

		got, err := editor.Update(ctx, availability.Patch{})
		require.NoError(t, err)
		assert.Zero(t, api.calls)
		assert.Equal(t, api.saved, got)
		assert.Equal(t, optimistic.StateIdle, editor.State())
	})
}
