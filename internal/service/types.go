// Package service contains the stateful parts of the style editor: saved
// styles, presets and the change event bus.
package service

import "time"

// SavedStyle is a named style string persisted on disk.
type SavedStyle struct {
	ID          string    `json:"id,omitempty" doc:"Unique style identifier" example:"night_mode"`
	Name        string    `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"Night mode"`
	Description string    `json:"description,omitempty" maxLength:"500" doc:"Free text description"`
	Layer       string    `json:"layer,omitempty" doc:"Base layer (lyrs parameter)" example:"m" default:"m"`
	Style       string    `json:"style" doc:"Style string, raw or percent-encoded" example:"s.t:water|s.e:geometry|p.c:#2196f3"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" doc:"Last modification time"`
}

// Preset is a ready-made style shipped with the editor.
type Preset struct {
	ID     string `json:"id" yaml:"id" doc:"Preset identifier" example:"dark"`
	Name   string `json:"name" yaml:"name" doc:"Display name" example:"Dark"`
	Layer  string `json:"layer" yaml:"layer" doc:"Base layer the preset is designed for" example:"m"`
	Accent string `json:"accent,omitempty" yaml:"accent" doc:"Highlight color of the preset button" example:"blue"`
	Style  string `json:"style" yaml:"style" doc:"Style string"`
}
