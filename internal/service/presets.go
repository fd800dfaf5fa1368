package service

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

//go:embed presets.yaml
var builtinPresets []byte

// PresetService serves the built-in presets plus any loaded from a file.
type PresetService struct {
	presets []Preset
	byID    map[string]int
}

// NewPresetService loads the built-in presets and, if extraFile is set,
// merges the presets defined there. Extra presets with a built-in id
// replace it in place.
func NewPresetService(extraFile string) (*PresetService, error) {
	s := &PresetService{byID: make(map[string]int)}
	if err := s.add(builtinPresets, "built-in presets"); err != nil {
		return nil, err
	}
	if extraFile == "" {
		return s, nil
	}
	data, err := os.ReadFile(extraFile)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfig, "failed to read presets file %s", extraFile)
	}
	if err := s.add(data, extraFile); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PresetService) add(data []byte, source string) error {
	var presets []Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return errors.Wrapf(err, errors.ErrConfig, "failed to parse %s", source)
	}
	for _, p := range presets {
		if p.ID == "" {
			return errors.Newf(errors.ErrConfig, "%s: preset without id", source)
		}
		if p.Layer == "" {
			p.Layer = style.DefaultLayer
		}
		if !style.IsLayer(p.Layer) {
			return errors.Newf(errors.ErrConfig, "%s: preset %q has unknown layer %q", source, p.ID, p.Layer)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		p.Style = style.Parse(p.Style).String()
		if i, ok := s.byID[p.ID]; ok {
			s.presets[i] = p
			continue
		}
		s.byID[p.ID] = len(s.presets)
		s.presets = append(s.presets, p)
	}
	return nil
}

// List returns all presets in definition order.
func (s *PresetService) List() []Preset {
	out := make([]Preset, len(s.presets))
	copy(out, s.presets)
	return out
}

// Get returns a preset by ID.
func (s *PresetService) Get(id string) (Preset, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Preset{}, false
	}
	return s.presets[i], true
}
