package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// EnvPrefix is prepended to every environment variable override,
// e.g. PATHTRACER_RENDER_WIDTH for render.width
const EnvPrefix = "PATHTRACER"

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the pathtracer configuration
type Config struct {
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// RenderConfig controls a single render. Zero numeric values keep the scene's own camera settings.
type RenderConfig struct {
	Scene     string `yaml:"scene" mapstructure:"scene"`
	ScenesDir string `yaml:"scenes_dir" mapstructure:"scenes_dir"`
	Output    string `yaml:"output" mapstructure:"output"`
	Format    string `yaml:"format" mapstructure:"format"`
	Width     int    `yaml:"width" mapstructure:"width"`
	Samples   int    `yaml:"samples" mapstructure:"samples"`
	MaxDepth  int    `yaml:"max_depth" mapstructure:"max_depth"`
	Seed      int64  `yaml:"seed" mapstructure:"seed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Quiet bool `yaml:"quiet" mapstructure:"quiet"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Scene:     "four-spheres",
			ScenesDir: "scenes",
			Output:    "",
			Format:    "ppm",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// SetDefaults registers every key with its default so environment overrides are seen by Unmarshal
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("render.scene", d.Render.Scene)
	v.SetDefault("render.scenes_dir", d.Render.ScenesDir)
	v.SetDefault("render.output", d.Render.Output)
	v.SetDefault("render.format", d.Render.Format)
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.samples", d.Render.Samples)
	v.SetDefault("render.max_depth", d.Render.MaxDepth)
	v.SetDefault("render.seed", d.Render.Seed)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.quiet", d.Log.Quiet)
}

// Load reads configuration into v from path, or from pathtracer.yaml in the
// working directory or ~/.pathtracer when path is empty. Environment
// variables and any flags already bound to v take precedence over the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pathtracer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".pathtracer"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Save writes the configuration to path as YAML, creating parent directories
func Save(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Render.Format {
	case "ppm", "png":
	default:
		return fmt.Errorf("%w: render.format must be ppm or png, got %q", ErrInvalidConfig, c.Render.Format)
	}

	if c.Render.Width < 0 {
		return fmt.Errorf("%w: render.width cannot be negative", ErrInvalidConfig)
	}
	if c.Render.Samples < 0 {
		return fmt.Errorf("%w: render.samples cannot be negative", ErrInvalidConfig)
	}
	if c.Render.MaxDepth < 0 {
		return fmt.Errorf("%w: render.max_depth cannot be negative", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}

	return nil
}

// CameraOverrides returns the render settings as camera overrides for MergeCameraConfig
func (c *Config) CameraOverrides() renderer.CameraConfig {
	return renderer.CameraConfig{
		Width:           c.Render.Width,
		SamplesPerPixel: c.Render.Samples,
		MaxDepth:        c.Render.MaxDepth,
	}
}
