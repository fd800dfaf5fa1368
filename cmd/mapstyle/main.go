package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-mapstyle/internal/config"
	"github.com/joeblew999/plat-mapstyle/internal/logging"
	"github.com/joeblew999/plat-mapstyle/internal/server"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

// Options defines all CLI flags and env vars for the style editor.
// Flags: --host, --port, --data-dir, --web-dir, --config, --verbose
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR, ...
type Options struct {
	Host    string `doc:"Host to bind to" default:"0.0.0.0"`
	Port    int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir string `doc:"Directory for saved styles and history" default:".data"`
	WebDir  string `doc:"Path to web/ directory, embedded templates when empty"`
	Config  string `doc:"Path to mapstyle.toml, searched in XDG config dirs when empty" short:"c"`
	Verbose int    `doc:"Log verbosity: 0 warn, 1 info, 2 debug, 3 trace" default:"0"`
}

// setup configures logging and loads the domain config. Errors are fatal.
func setup(opts *Options) *config.Config {
	logging.SetupLogger(opts.Verbose)
	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newServer(opts *Options, cfg *config.Config) *server.Server {
	return server.New(server.Config{
		Host:    opts.Host,
		Port:    fmt.Sprintf("%d", opts.Port),
		DataDir: opts.DataDir,
		WebDir:  opts.WebDir,
		App:     cfg,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var srv *server.Server

		hooks.OnStart(func() {
			cfg := setup(opts)
			srv = newServer(opts, cfg)

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-mapstyle server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			if cfg.Source != "" {
				fmt.Printf("  Config:  %s\n", cfg.Source)
			}
			fmt.Println()
			fmt.Printf("  Editor:  %s/editor\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatal().Err(err).Msg("Server error")
			}
		})

		hooks.OnStop(func() {
			if srv != nil {
				srv.Close()
			}
		})
	})

	cli.Root().Use = "mapstyle"
	cli.Root().Short = "Map style editor: build styled map tile URLs"
	cli.Root().Version = "0.1.0"

	cli.Root().AddCommand(specCommand(), urlCommand(), mergeCommand(), explainCommand())
	cli.Run()
}

// spec subcommand: export OpenAPI spec
func specCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			cfg := setup(opts)
			cfg.History.Enabled = false
			srv := newServer(opts, cfg)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	cmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	return cmd
}

// url subcommand: print the tile URL of a style
func urlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the tile URL and a preview tile URL for a style",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			cfg := setup(opts)
			layer, _ := cmd.Flags().GetString("layer")
			styleStr, _ := cmd.Flags().GetString("style")
			if layer == "" {
				layer = cfg.Tile.DefaultLayer
			}
			if !style.IsLayer(layer) {
				fmt.Fprintf(os.Stderr, "Unknown layer %q\n", layer)
				os.Exit(1)
			}

			tile := maptile.New(cfg.Preview.X, cfg.Preview.Y, maptile.Zoom(cfg.Preview.Z))
			if cmd.Flags().Changed("lon") || cmd.Flags().Changed("lat") {
				lon, _ := cmd.Flags().GetFloat64("lon")
				lat, _ := cmd.Flags().GetFloat64("lat")
				zoom, _ := cmd.Flags().GetInt("zoom")
				tile = tileurl.TileAt(lon, lat, zoom)
			}

			u := tileurl.New(cfg.Tile.Prefix, logging.GetLogger("tileurl")).Build(layer, styleStr)
			fmt.Println(u)
			fmt.Println(tileurl.Preview(u, tile))
		}),
	}
	cmd.Flags().StringP("layer", "l", "", "Base layer (default from config)")
	cmd.Flags().StringP("style", "s", "", "Style string, raw or percent-encoded")
	cmd.Flags().Float64("lon", 0, "Preview the tile at this longitude")
	cmd.Flags().Float64("lat", 0, "Preview the tile at this latitude")
	cmd.Flags().Int("zoom", 15, "Zoom of the --lon/--lat preview tile")
	return cmd
}

// merge subcommand: apply one rule to a style
func mergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a styler rule into a style string",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			setup(opts)
			flags := cmd.Flags()
			styleStr, _ := flags.GetString("style")
			feature, _ := flags.GetString("feature")
			element, _ := flags.GetString("element")

			var p style.Properties
			p.Visibility, _ = flags.GetString("visibility")
			p.Color, _ = flags.GetString("color")
			p.Weight, _ = flags.GetString("weight")
			p.Saturation, _ = flags.GetInt("saturation")
			p.Lightness, _ = flags.GetInt("lightness")

			clean, err := tileurl.Unescape(styleStr)
			if err != nil {
				log.Warn().Err(err).Msg("style is not valid percent-encoding, using it as is")
			}
			merged, err := style.Apply(clean, feature, element, p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(merged)
		}),
	}
	cmd.Flags().StringP("style", "s", "", "Style string to merge into")
	cmd.Flags().StringP("feature", "f", "", "Feature (s.t) of the rule")
	cmd.Flags().StringP("element", "e", "", "Element (s.e) of the rule")
	cmd.Flags().String("visibility", "", "on, off or simplified")
	cmd.Flags().String("color", "", "Hex color")
	cmd.Flags().String("weight", "", "Stroke weight")
	cmd.Flags().Int("saturation", 0, "Saturation shift, -100 to 100")
	cmd.Flags().Int("lightness", 0, "Lightness shift, -100 to 100")
	return cmd
}

// explain subcommand: print a style as a rule tree
func explainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <style>",
		Short: "Print a style string as a tree of rules and stylers",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			setup(opts)
			clean, err := tileurl.Unescape(args[0])
			if err != nil {
				log.Warn().Err(err).Msg("style is not valid percent-encoding, using it as is")
			}
			fmt.Print(explain(clean))
		}),
	}
}
