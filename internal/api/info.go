package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// InfoHandler reports how the server is set up.
type InfoHandler struct {
	dataDir      string
	configSource string
	dbOK         bool
}

func NewInfoHandler(dataDir, configSource string, dbOK bool) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, configSource: configSource, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir" doc:"Data directory path"`
	Config   string   `json:"config,omitempty" doc:"Config file in use, empty for defaults"`
	DB       bool     `json:"db" doc:"Whether the history database is available"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"codec", "tile-url", "presets", "saved-styles", "editor"}
	if h.dbOK {
		features = append(features, "history")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "plat-mapstyle",
		Version:  Version,
		DataDir:  h.dataDir,
		Config:   h.configSource,
		DB:       h.dbOK,
		Features: features,
	}}, nil
}
