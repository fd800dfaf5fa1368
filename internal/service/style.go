package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-mapstyle/internal/db"
	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/logging"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

// Recorder receives a history entry for every change. *db.History
// implements it.
type Recorder interface {
	Record(ctx context.Context, e db.HistoryEntry) error
}

// StyleService manages saved styles.
type StyleService struct {
	dataDir string
	styles  map[string]SavedStyle
	mu      sync.RWMutex

	bus     *EventBus
	history Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// StyleOption configures a StyleService.
type StyleOption func(*StyleService)

// WithBus publishes change events on bus.
func WithBus(bus *EventBus) StyleOption {
	return func(s *StyleService) { s.bus = bus }
}

// WithHistory records every change with r.
func WithHistory(r Recorder) StyleOption {
	return func(s *StyleService) { s.history = r }
}

// NewStyleService creates a style service backed by dataDir/styles.json.
func NewStyleService(dataDir string, opts ...StyleOption) *StyleService {
	s := &StyleService{
		dataDir: dataDir,
		styles:  make(map[string]SavedStyle),
		log:     logging.GetLogger("styles"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loadFromDisk()
	return s
}

// List returns all saved styles ordered by ID.
func (s *StyleService) List() []SavedStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]SavedStyle, 0, len(s.styles))
	for _, v := range s.styles {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Get returns a saved style by ID.
func (s *StyleService) Get(id string) (SavedStyle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.styles[id]
	return st, ok
}

// Create adds a saved style. The ID is derived from the name when empty.
func (s *StyleService) Create(ctx context.Context, st SavedStyle) (SavedStyle, error) {
	st, err := s.normalize(st)
	if err != nil {
		return SavedStyle{}, err
	}
	if st.ID == "" {
		st.ID = generateID(st.Name)
	}
	if st.ID == "" {
		return SavedStyle{}, errors.Newf(errors.ErrInvalidInput, "cannot derive an id from name %q", st.Name)
	}

	s.mu.Lock()
	if _, exists := s.styles[st.ID]; exists {
		s.mu.Unlock()
		return SavedStyle{}, errors.Newf(errors.ErrAlreadyExists, "style %q already exists", st.ID).
			WithDetail("id", st.ID)
	}
	s.styles[st.ID] = st
	err = s.persist(st.ID, SavedStyle{}, false)
	s.mu.Unlock()
	if err != nil {
		return SavedStyle{}, err
	}

	s.changed(ctx, ActionCreated, st, "", "")
	return st, nil
}

// Update replaces a saved style by ID.
func (s *StyleService) Update(ctx context.Context, id string, st SavedStyle) (SavedStyle, error) {
	st, err := s.normalize(st)
	if err != nil {
		return SavedStyle{}, err
	}
	st.ID = id

	s.mu.Lock()
	prev, exists := s.styles[id]
	if !exists {
		s.mu.Unlock()
		return SavedStyle{}, notFound(id)
	}
	s.styles[id] = st
	err = s.persist(id, prev, true)
	s.mu.Unlock()
	if err != nil {
		return SavedStyle{}, err
	}

	s.changed(ctx, ActionUpdated, st, "", "")
	return st, nil
}

// Delete removes a saved style by ID.
func (s *StyleService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	st, exists := s.styles[id]
	if !exists {
		s.mu.Unlock()
		return notFound(id)
	}
	delete(s.styles, id)
	err := s.persist(id, st, true)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.changed(ctx, ActionDeleted, st, "", "")
	return nil
}

// ApplyRule encodes p for (feature, element) and merges it into the saved
// style, replacing any rule with the same selectors.
func (s *StyleService) ApplyRule(ctx context.Context, id, feature, element string, p style.Properties) (SavedStyle, error) {
	s.mu.Lock()
	st, exists := s.styles[id]
	if !exists {
		s.mu.Unlock()
		return SavedStyle{}, notFound(id)
	}
	merged, err := style.Apply(st.Style, feature, element, p)
	if err != nil {
		s.mu.Unlock()
		return SavedStyle{}, err
	}
	prev := st
	st.Style = merged
	st.UpdatedAt = s.now()
	s.styles[id] = st
	err = s.persist(id, prev, true)
	s.mu.Unlock()
	if err != nil {
		return SavedStyle{}, err
	}

	s.changed(ctx, ActionApplied, st, feature, element)
	return st, nil
}

// normalize validates st and rewrites its style string to the canonical
// decoded form.
func (s *StyleService) normalize(st SavedStyle) (SavedStyle, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return SavedStyle{}, errors.New(errors.ErrInvalidInput, "name is required")
	}
	if st.Layer == "" {
		st.Layer = style.DefaultLayer
	}
	if !style.IsLayer(st.Layer) {
		return SavedStyle{}, errors.Newf(errors.ErrInvalidInput, "unknown layer %q", st.Layer).
			WithDetail("layer", st.Layer)
	}
	raw, err := tileurl.Unescape(st.Style)
	if err != nil {
		s.log.Warn().Err(err).Str("style", raw).Msg("storing undecodable style as is")
	}
	st.Style = style.Parse(raw).String()
	st.UpdatedAt = s.now()
	return st, nil
}

func (s *StyleService) changed(ctx context.Context, action string, st SavedStyle, feature, element string) {
	s.log.Debug().Str("action", action).Str("id", st.ID).Msg("style changed")
	if s.bus != nil {
		s.bus.Publish(Event{Resource: ResourceStyles, Action: action, ID: st.ID})
	}
	if s.history == nil {
		return
	}
	entry := db.HistoryEntry{
		At:      st.UpdatedAt,
		Action:  action,
		StyleID: st.ID,
		Layer:   st.Layer,
		Feature: feature,
		Element: element,
		Style:   st.Style,
	}
	if action == ActionDeleted {
		entry.At = s.now()
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("id", st.ID).Msg("failed to record history")
	}
}

func notFound(id string) error {
	return errors.Newf(errors.ErrNotFound, "style %q not found", id).WithDetail("id", id)
}

// configFile returns the path to the saved styles file.
func (s *StyleService) configFile() string {
	return filepath.Join(s.dataDir, "styles.json")
}

// loadFromDisk loads saved styles. A missing or unreadable file starts empty.
func (s *StyleService) loadFromDisk() {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return
	}

	var styles map[string]SavedStyle
	if err := json.Unmarshal(data, &styles); err != nil {
		s.log.Warn().Err(err).Str("file", s.configFile()).Msg("ignoring invalid styles file")
		return
	}
	if styles != nil {
		s.styles = styles
	}
}

// persist saves the styles after a change to id. On failure the entry is
// restored to prev, or removed when it did not exist. The caller holds the
// write lock.
func (s *StyleService) persist(id string, prev SavedStyle, existed bool) error {
	err := s.saveToDisk()
	if err == nil {
		return nil
	}
	if existed {
		s.styles[id] = prev
	} else {
		delete(s.styles, id)
	}
	return err
}

// saveToDisk persists saved styles. The caller holds the write lock.
func (s *StyleService) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to create data directory")
	}

	data, err := json.MarshalIndent(s.styles, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to encode styles")
	}

	if err := os.WriteFile(s.configFile(), data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to write styles")
	}
	return nil
}

// generateID creates a URL-safe ID from a name.
func generateID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = strings.ReplaceAll(id, " ", "_")
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
