package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	RawDataDir  string `yaml:"raw_data_dir" env:"SQUATPREP_RAW_DATA_DIR"`
	CatalogPath string `yaml:"catalog_path" env:"SQUATPREP_CATALOG"`
	Concurrency int    `yaml:"concurrency" env:"SQUATPREP_CONCURRENCY"`
	MetricsAddr string `yaml:"metrics_addr" env:"SQUATPREP_METRICS_ADDR"`

	// Output image settings
	Image ImageConfig `yaml:"image"`

	// Full-squat window settings
	FullSquat FullSquatConfig `yaml:"full_squat"`

	// Dataset partition folders
	Output OutputConfig `yaml:"output"`

	// Pose estimation settings
	Pose PoseConfig `yaml:"pose"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

type ImageConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

type FullSquatConfig struct {
	// Frames kept on each side of the deepest point of a repetition.
	FramesEachSide int `yaml:"frames_each_side" env:"SQUATPREP_FRAMES_EACH_SIDE"`
}

type OutputConfig struct {
	SequenceDir  string `yaml:"sequence_dir" env:"SQUATPREP_SEQUENCE_DIR"`
	FullSquatDir string `yaml:"full_squat_dir" env:"SQUATPREP_FULL_SQUAT_DIR"`
}

type PoseConfig struct {
	ModelPath         string  `yaml:"model_path" env:"SQUATPREP_POSE_MODEL"`
	SharedLibraryPath string  `yaml:"shared_library_path" env:"ONNXRUNTIME_LIB"`
	InputSize         int     `yaml:"input_size"`
	InputType         string  `yaml:"input_type"`
	InputName         string  `yaml:"input_name"`
	OutputName        string  `yaml:"output_name"`
	ScoreThreshold    float64 `yaml:"score_threshold"`
	LineWidth         float64 `yaml:"line_width"`
	JointRadius       float64 `yaml:"joint_radius"`
}

type FFmpegConfig struct {
	Threads int `yaml:"threads" env:"SQUATPREP_FFMPEG_THREADS"`
}

// Load reads configuration from file or returns defaults. Environment
// variables named in the env tags override file values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Image.Width, c.Image.Height)
	}
	if c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be in [1, 100], got %d", c.Image.JPEGQuality)
	}
	if c.FullSquat.FramesEachSide < 0 {
		return fmt.Errorf("frames_each_side must not be negative, got %d", c.FullSquat.FramesEachSide)
	}
	if c.Output.SequenceDir == "" || c.Output.FullSquatDir == "" {
		return fmt.Errorf("both output folders must be set")
	}
	if filepath.Clean(c.Output.SequenceDir) == filepath.Clean(c.Output.FullSquatDir) {
		return fmt.Errorf("sequence and full-squat output folders must differ")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// VideoPath resolves a catalog video name under the raw data folder
func (c *Config) VideoPath(name string) string {
	return filepath.Join(c.RawDataDir, name)
}

func defaultConfig() *Config {
	return &Config{
		RawDataDir:  "data/raw_data",
		CatalogPath: "raw_data_params.yml",
		Concurrency: 1,
		Image: ImageConfig{
			Width:       224,
			Height:      224,
			JPEGQuality: 95,
		},
		FullSquat: FullSquatConfig{
			FramesEachSide: 2,
		},
		Output: OutputConfig{
			SequenceDir:  "data/sequence_squat_all",
			FullSquatDir: "data/full_squat_all",
		},
		Pose: PoseConfig{
			ModelPath:      "./models/movenet_singlepose_lightning.onnx",
			InputSize:      192,
			InputType:      "int32",
			InputName:      "input",
			OutputName:     "output_0",
			ScoreThreshold: 0.3,
			LineWidth:      3,
			JointRadius:    4,
		},
		FFmpeg: FFmpegConfig{
			Threads: 0,
		},
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	candidates := []string{
		"./squatprep.yaml",
		"./squatprep.yml",
		filepath.Join(os.Getenv("HOME"), ".squatprep", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
