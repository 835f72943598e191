package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/df07/go-pathtracer/web/server"
)

const (
	appName = "pathtracer"
	version = "v0.1.0"
)

// app holds the state shared by every command of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
}

// newRootCmd builds the command tree with a fresh viper instance
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Recursive Monte Carlo path tracer for sphere scenes",
		Long: `pathtracer renders scenes of spheres with diffuse, metal and glass
materials under a sky gradient. Images are written as plain-text PPM
(default) or PNG. Scenes are either built in or described by YAML files.

Configuration is read from pathtracer.yaml (working directory or
~/.pathtracer), then PATHTRACER_* environment variables, then flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./pathtracer.yaml or ~/.pathtracer/pathtracer.yaml)")

	rootCmd.AddCommand(
		a.newRenderCmd(),
		a.newScenesCmd(),
		a.newServeCmd(),
		a.newConfigCmd(),
	)
	return rootCmd
}

// loadConfig binds the running command's flags to their config keys and loads the configuration.
// Binding happens per invocation so commands sharing a key never shadow each other's flags.
func (a *app) loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	for key, name := range bindings {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return config.Load(a.v, a.cfgFile)
}

func (a *app) newRenderCmd() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to a PPM or PNG image",
		Long: `Render a scene scanline by scanline. PPM output goes to stdout unless
--out is given; PNG output without --out is saved under
output/<scene>/render_<timestamp>.png. Progress is logged to stderr.`,
		Example: `  pathtracer render --scene random-spheres --seed 7 > random.ppm
  pathtracer render --scene file:three-spheres --format png --out three.png
  pathtracer render --scene my-scene.yaml --width 200 --samples 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"render.scene":      "scene",
				"render.scenes_dir": "scenes-dir",
				"render.output":     "out",
				"render.format":     "format",
				"render.width":      "width",
				"render.samples":    "samples",
				"render.max_depth":  "max-depth",
				"render.seed":       "seed",
				"log.quiet":         "quiet",
			})
			if err != nil {
				return err
			}
			return runRender(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), time.Now())
		},
	}

	flags := cmd.Flags()
	flags.String("scene", defaults.Render.Scene, "scene ID (builtin or file:<name>) or path to a .yaml scene file")
	flags.String("scenes-dir", defaults.Render.ScenesDir, "directory searched for file:<name> scenes")
	flags.String("out", "", "output file (default stdout for ppm)")
	flags.String("format", defaults.Render.Format, "image format: ppm or png")
	flags.Int("width", 0, "image width in pixels (0 keeps the scene's width)")
	flags.Int("samples", 0, "samples per pixel (0 keeps the scene's value)")
	flags.Int("max-depth", 0, "maximum bounce depth (0 keeps the scene's value)")
	flags.Int64("seed", 0, "random seed, 0 seeds from the clock")
	flags.Bool("quiet", false, "suppress progress output")
	return cmd
}

// runRender renders the configured scene. Images without an output path go to stdout.
func runRender(cfg *config.Config, stdout, stderr io.Writer, now time.Time) (err error) {
	var logger core.Logger
	if !cfg.Log.Quiet {
		logger = renderer.NewDefaultLogger(stderr)
	}

	sampler := core.NewSeededSampler(cfg.Render.Seed)
	sceneObj, err := scene.Create(cfg.Render.Scene, scene.Options{
		ScenesDir: cfg.Render.ScenesDir,
		Sampler:   sampler,
		Camera:    cfg.CameraOverrides(),
	})
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}

	camera := sceneObj.NewCamera(sampler)
	camera.SetLogger(logger)

	outPath := cfg.Render.Output
	if outPath == "" && cfg.Render.Format == "png" {
		outPath = defaultOutputPath(sceneObj.Name, now)
	}

	out := stdout
	if outPath != "" {
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		out = file
	}

	switch cfg.Render.Format {
	case "png":
		img := renderer.NewImageWriter()
		if _, err := camera.RenderTo(sceneObj, img); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if err := img.EncodePNG(out); err != nil {
			return fmt.Errorf("failed to save PNG: %w", err)
		}
		if logger != nil {
			logger.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(img.Image()))
		}
	default:
		if err := camera.Render(sceneObj, out); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	if outPath != "" && logger != nil {
		logger.Printf("Render saved as %s\n", outPath)
	}
	return nil
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneName string, t time.Time) string {
	return filepath.Join("output", fileSafeName(sceneName), fmt.Sprintf("render_%s.png", t.Format("20060102_150405")))
}

// fileSafeName maps a scene name onto letters, digits, dashes and underscores
func fileSafeName(sceneName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, sceneName)
	if strings.Trim(name, "-") == "" {
		return "scene"
	}
	return name
}

func (a *app) newScenesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List builtin scenes and scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"render.scenes_dir": "scenes-dir",
			})
			if err != nil {
				return err
			}

			scenes, err := scene.ListAllScenes(cfg.Render.ScenesDir)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(scenes)
			}
			return printScenes(cmd.OutOrStdout(), scenes)
		},
	}

	cmd.Flags().String("scenes-dir", config.Default().Render.ScenesDir, "directory searched for scene files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the scene list as JSON")
	cmd.AddCommand(a.newScenesExportCmd())
	return cmd
}

func (a *app) newScenesExportCmd() *cobra.Command {
	var outPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "export <scene>",
		Short: "Write a scene as a YAML scene file",
		Long: `Export a builtin or file scene as a YAML scene file that can be edited
and rendered with --scene file:<name>. Without --out the file is written
to <scenes-dir>/<scene>.yaml.`,
		Example: `  pathtracer scenes export four-spheres
  pathtracer scenes export random-spheres --seed 7 --out scenes/random-7.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"render.scenes_dir": "scenes-dir",
				"render.seed":       "seed",
			})
			if err != nil {
				return err
			}

			path, err := exportScene(args[0], cfg, outPath, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote scene %s to %s\n", args[0], path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outPath, "out", "", "output file (default <scenes-dir>/<scene>.yaml)")
	flags.BoolVar(&force, "force", false, "overwrite an existing file")
	flags.String("scenes-dir", config.Default().Render.ScenesDir, "directory searched for file:<name> scenes")
	flags.Int64("seed", 0, "random seed for generated scenes, 0 seeds from the clock")
	return cmd
}

// exportScene saves the named scene as a scene file and returns the path written
func exportScene(sceneID string, cfg *config.Config, outPath string, force bool) (string, error) {
	sceneObj, err := scene.Create(sceneID, scene.Options{
		ScenesDir: cfg.Render.ScenesDir,
		Sampler:   core.NewSeededSampler(cfg.Render.Seed),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create scene: %w", err)
	}

	var description string
	for _, info := range scene.ListBuiltinScenes() {
		if info.ID == sceneID {
			description = info.Description
		}
	}

	sf, err := scene.ToFile(sceneObj, description)
	if err != nil {
		return "", fmt.Errorf("failed to export scene: %w", err)
	}

	if outPath == "" {
		outPath = filepath.Join(cfg.Render.ScenesDir, fileSafeName(sceneObj.Name)+".yaml")
	}
	if _, err := os.Stat(outPath); err == nil && !force {
		return "", fmt.Errorf("scene file %s already exists (use --force to overwrite)", outPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to check scene file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create scene directory: %w", err)
	}

	if err := loaders.SaveSceneFile(outPath, sf); err != nil {
		return "", err
	}
	return outPath, nil
}

func printScenes(w io.Writer, scenes scene.ScenesResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, group := range scenes.Groups {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Fprintf(tw, "  %s\t%s\n", info.ID, info.Description)
		}
	}
	return tw.Flush()
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP render server",
		Long: `Serve renders over HTTP:

  GET /api/health
  GET /api/scenes
  GET /api/render/{scene}?width=&samples=&depth=&seed=&format=ppm|png
  GET /api/inspect/{scene}?x=&y=&width=&seed=
  GET /api/console (server-sent render log lines)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"server.port":       "port",
				"render.scenes_dir": "scenes-dir",
				"log.quiet":         "quiet",
			})
			if err != nil {
				return err
			}

			webServer := server.NewServer(cfg.Server.Port, cfg.Render.ScenesDir)
			if cfg.Log.Quiet {
				webServer.SetLogger(nil)
			}
			return webServer.Start()
		},
	}

	defaults := config.Default()
	cmd.Flags().Int("port", defaults.Server.Port, "port to serve on")
	cmd.Flags().String("scenes-dir", defaults.Render.ScenesDir, "directory searched for file:<name> scenes")
	cmd.Flags().Bool("quiet", false, "suppress request and progress logging")
	return cmd
}

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(a.newConfigInitCmd(), a.newConfigShowCmd())
	return cmd
}

func (a *app) newConfigInitCmd() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config file: %w", err)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "pathtracer.yaml", "where to write the configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *app) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
