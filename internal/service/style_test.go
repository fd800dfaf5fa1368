package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mapstyle/internal/db"
	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []db.HistoryEntry
}

func (m *memRecorder) Record(_ context.Context, e db.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Night Mode", "night_mode"},
		{"  Cyber-Punk 2077 ", "cyber-punk_2077"},
		{"Café!", "caf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateID(tt.name))
		})
	}
}

func TestStyleServiceCRUD(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bus := NewEventBus()
	events := bus.Subscribe()
	rec := &memRecorder{}
	svc := NewStyleService(dir, WithBus(bus), WithHistory(rec))

	created, err := svc.Create(ctx, SavedStyle{
		Name:  "Night Mode",
		Style: "s.t%3Awater%7Cs.e%3Ageometry%7Cp.c%3A%23000000,",
	})
	require.NoError(t, err)
	assert.Equal(t, "night_mode", created.ID)
	assert.Equal(t, "m", created.Layer)
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#000000", created.Style)
	assert.False(t, created.UpdatedAt.IsZero())

	ev := <-events
	assert.Equal(t, Event{Resource: ResourceStyles, Action: ActionCreated, ID: "night_mode"}, ev)

	_, err = svc.Create(ctx, SavedStyle{Name: "Night Mode"})
	assert.True(t, errors.IsCode(err, errors.ErrAlreadyExists))

	updated, err := svc.Update(ctx, "night_mode", SavedStyle{Name: "Night", Layer: "p", Style: created.Style})
	require.NoError(t, err)
	assert.Equal(t, "night_mode", updated.ID)
	assert.Equal(t, "p", updated.Layer)

	applied, err := svc.ApplyRule(ctx, "night_mode", "road", "geometry", style.Properties{Color: "ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#000000,s.t:road|s.e:geometry|p.c:#ff0000", applied.Style)

	// A second service instance reads what the first persisted.
	reloaded := NewStyleService(dir)
	got, ok := reloaded.Get("night_mode")
	require.True(t, ok)
	assert.Equal(t, applied.Style, got.Style)
	assert.Len(t, reloaded.List(), 1)

	require.NoError(t, svc.Delete(ctx, "night_mode"))
	assert.Empty(t, svc.List())
	assert.True(t, errors.IsCode(svc.Delete(ctx, "night_mode"), errors.ErrNotFound))

	actions := make([]string, 0, len(rec.entries))
	for _, e := range rec.entries {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{ActionCreated, ActionUpdated, ActionApplied, ActionDeleted}, actions)
	assert.Equal(t, "road", rec.entries[2].Feature)
}

func TestStyleServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewStyleService(t.TempDir())

	tests := []struct {
		name  string
		input SavedStyle
		code  errors.ErrorCode
	}{
		{"blank name", SavedStyle{Name: "  "}, errors.ErrInvalidInput},
		{"unknown layer", SavedStyle{Name: "x", Layer: "zz"}, errors.ErrInvalidInput},
		{"no usable id", SavedStyle{Name: "!!!"}, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}

	_, err := svc.Update(ctx, "missing", SavedStyle{Name: "x"})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	_, err = svc.ApplyRule(ctx, "missing", "water", "geometry", style.Properties{Color: "#fff"})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestStyleServiceApplyIncompleteSelection(t *testing.T) {
	ctx := context.Background()
	svc := NewStyleService(t.TempDir())
	_, err := svc.Create(ctx, SavedStyle{Name: "base"})
	require.NoError(t, err)

	_, err = svc.ApplyRule(ctx, "base", "", "geometry", style.Properties{Color: "#fff"})
	assert.True(t, errors.IsCode(err, errors.ErrIncompleteSelection))
}

func TestStyleServiceStorageFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	rec := &memRecorder{}
	svc := NewStyleService(t.TempDir(), WithHistory(rec))
	saved, err := svc.Create(ctx, SavedStyle{Name: "night", Style: "s.t:water|s.e:geometry|p.c:#000000"})
	require.NoError(t, err)
	recorded := len(rec.entries)

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	svc.dataDir = blocker

	tests := []struct {
		name string
		run  func() error
	}{
		{"create", func() error {
			_, err := svc.Create(ctx, SavedStyle{Name: "day"})
			return err
		}},
		{"update", func() error {
			_, err := svc.Update(ctx, "night", SavedStyle{Name: "night", Style: "s.t:poi|s.e:all|p.v:off"})
			return err
		}},
		{"apply rule", func() error {
			_, err := svc.ApplyRule(ctx, "night", "road", "geometry", style.Properties{Color: "#ff0000"})
			return err
		}},
		{"delete", func() error {
			return svc.Delete(ctx, "night")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrStorage), err.Error())

			_, ok := svc.Get("day")
			assert.False(t, ok)
			got, ok := svc.Get("night")
			require.True(t, ok)
			assert.Equal(t, saved, got)
			assert.Len(t, svc.List(), 1)
		})
	}
	assert.Len(t, rec.entries, recorded)
}

func TestStyleServiceNullStylesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.json"), []byte("null"), 0o644))

	svc := NewStyleService(dir)
	assert.Empty(t, svc.List())

	created, err := svc.Create(context.Background(), SavedStyle{Name: "night"})
	require.NoError(t, err)
	got, ok := svc.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "night", got.Name)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()
	assert.Equal(t, 1, bus.Subscribers())

	bus.Unsubscribe(ch)
	bus.Unsubscribe(ch)
	assert.Equal(t, 0, bus.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	// Publishing with no subscribers must not block.
	bus.Publish(Event{Resource: ResourceStyles, Action: ActionCreated})
}
