package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-mapstyle/internal/api"
	"github.com/joeblew999/plat-mapstyle/internal/api/editor"
	"github.com/joeblew999/plat-mapstyle/internal/config"
	"github.com/joeblew999/plat-mapstyle/internal/db"
	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/logging"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
	"github.com/joeblew999/plat-mapstyle/web"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Optional web/ directory; templates are embedded when empty
	App     *config.Config
}

// Server is the map style HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	links    *humastar.Links
	history  *db.History
	services *api.Services
	bus      *service.EventBus
	renderer *humastar.Renderer
	log      zerolog.Logger
}

// New creates a new server. Failures to open the history database or the
// web templates are logged and leave that part disabled.
func New(cfg Config) *Server {
	log := logging.GetLogger("server")
	if cfg.App == nil {
		app, err := config.Load("")
		if err != nil {
			log.Warn().Err(err).Msg("failed to load config, using defaults")
			app = config.Default()
		}
		cfg.App = app
	}

	mux := http.NewServeMux()
	links := humastar.NewLinks()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-mapstyle API", api.Version)
	humaConfig.Info.Description = "Map style editor API: encode styler rules, merge them into style strings and build styled tile URLs."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humago.New(mux, humaConfig),
		links:   links,
		bus:     service.NewEventBus(),
		log:     log,
	}

	if cfg.App.History.Enabled {
		s.history = s.openHistory()
	}

	app := cfg.App
	urls := tileurl.New(app.Tile.Prefix, logging.GetLogger("tileurl"))
	preview := maptile.New(app.Preview.X, app.Preview.Y, maptile.Zoom(app.Preview.Z))

	presets, err := service.NewPresetService(app.Presets.File)
	if err != nil {
		log.Warn().Err(err).Str("file", app.Presets.File).Msg("failed to load extra presets, using built-ins")
		presets, _ = service.NewPresetService("")
	}

	opts := []service.StyleOption{service.WithBus(s.bus)}
	if s.history != nil {
		opts = append(opts, service.WithHistory(s.history))
	}
	s.services = &api.Services{
		Styles:       service.NewStyleService(cfg.DataDir, opts...),
		Presets:      presets,
		URLs:         urls,
		PreviewTile:  preview,
		DefaultLayer: app.Tile.DefaultLayer,
	}

	s.renderer = s.loadRenderer()
	s.routes()
	return s
}

func (s *Server) openHistory() *db.History {
	conn, err := db.Get(db.Config{DataDir: s.config.DataDir, DBName: s.config.App.History.DBName})
	if err != nil {
		s.log.Warn().Err(err).Msg("history disabled: failed to open duckdb")
		return nil
	}
	h, err := db.NewHistory(context.Background(), conn)
	if err != nil {
		s.log.Warn().Err(err).Msg("history disabled")
		return nil
	}
	return h
}

func (s *Server) loadRenderer() *humastar.Renderer {
	if s.config.WebDir != "" {
		dir := filepath.Join(s.config.WebDir, "templates")
		r, err := humastar.NewDirRenderer(dir)
		if err == nil {
			s.log.Info().Str("dir", dir).Msg("loaded templates")
			return r
		}
		s.log.Warn().Err(err).Str("dir", dir).Msg("failed to load templates, using embedded")
	}
	r, err := humastar.NewRenderer(web.Templates())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to parse embedded templates")
		return nil
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the OpenAPI document of the REST and editor routes.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.history == nil {
		return nil
	}
	return db.Close()
}

func (s *Server) routes() {
	// REST routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.config.App.Source, s.history != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.history).RegisterRoutes(s.humaAPI)

	// Editor SSE routes using Huma + Datastar SDK
	var ed *editor.Handler
	if s.renderer != nil {
		deps := editor.Deps{
			Renderer:     s.renderer,
			URLs:         s.services.URLs,
			PreviewTile:  s.services.PreviewTile,
			DefaultLayer: s.services.DefaultLayer,
			Presets:      s.services.Presets,
			Styles:       s.services.Styles,
			Bus:          s.bus,
		}
		if s.history != nil {
			deps.History = s.history
		}
		ed = editor.New(deps)
		ed.RegisterRoutes(s.humaAPI)
	}

	api.RegisterLinks(s.links)
	s.links.Build(s.humaAPI)

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Page routes
	if ed != nil {
		s.mux.HandleFunc("/editor", ed.ServePage)
	}
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range s.links.Root() {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-mapstyle",
		"status":  "running",
		"editor":  "/editor",
		"docs":    "/docs",
	})
}
