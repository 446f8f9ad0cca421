package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"classifyd/internal/pipeline"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Default values.
type Config struct {
	Addr           string `json:"addr" yaml:"addr" toml:"addr"`
	ModelPath      string `json:"model_path" yaml:"model_path" toml:"model_path"`
	ClassNamesPath string `json:"class_names_path" yaml:"class_names_path" toml:"class_names_path"`

	// Runtime tuning
	Sessions    int    `json:"sessions" yaml:"sessions" toml:"sessions"`
	Threads     int    `json:"threads" yaml:"threads" toml:"threads"`
	InputName   string `json:"input_name" yaml:"input_name" toml:"input_name"`
	OutputName  string `json:"output_name" yaml:"output_name" toml:"output_name"`
	LibraryPath string `json:"onnxruntime_lib" yaml:"onnxruntime_lib" toml:"onnxruntime_lib"`

	// Admission
	MaxInFlight int `json:"max_inflight" yaml:"max_inflight" toml:"max_inflight"`

	// Pipeline
	ImageSize           int      `json:"image_size" yaml:"image_size" toml:"image_size"`
	MaxFileSize         int64    `json:"max_file_size" yaml:"max_file_size" toml:"max_file_size"`
	AllowedExtensions   []string `json:"allowed_extensions" yaml:"allowed_extensions" toml:"allowed_extensions"`
	ConfidenceThreshold float64  `json:"confidence_threshold" yaml:"confidence_threshold" toml:"confidence_threshold"`

	// HTTP
	MaxBodyBytes           int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	PredictTimeoutSeconds  int64    `json:"predict_timeout_seconds" yaml:"predict_timeout_seconds" toml:"predict_timeout_seconds"`
	ShutdownTimeoutSeconds int64    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
	CORSEnabled            *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins     []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods     []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders     []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	cors := true
	return Config{
		Addr:                   ":8000",
		ModelPath:              "model/brain_tumor_model.onnx",
		ClassNamesPath:         "model/class_names.json",
		ImageSize:              pipeline.DefaultImageSize,
		MaxFileSize:            pipeline.DefaultMaxFileSize,
		AllowedExtensions:      append([]string(nil), pipeline.DefaultAllowedExtensions...),
		ConfidenceThreshold:    pipeline.DefaultConfidenceThreshold,
		MaxInFlight:            64,
		MaxBodyBytes:           2*pipeline.DefaultMaxFileSize + 1<<20,
		ShutdownTimeoutSeconds: 5,
		CORSEnabled:            &cors,
		CORSAllowedOrigins:     []string{"*"},
		CORSAllowedMethods:     []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:     []string{"*"},
		LogLevel:               "info",
		LogFormat:              "json",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of over applied on top.
func Merge(base, over Config) Config {
	out := base
	setStr(&out.Addr, over.Addr)
	setStr(&out.ModelPath, over.ModelPath)
	setStr(&out.ClassNamesPath, over.ClassNamesPath)
	setInt(&out.Sessions, over.Sessions)
	setInt(&out.Threads, over.Threads)
	setStr(&out.InputName, over.InputName)
	setStr(&out.OutputName, over.OutputName)
	setStr(&out.LibraryPath, over.LibraryPath)
	setInt(&out.MaxInFlight, over.MaxInFlight)
	setInt(&out.ImageSize, over.ImageSize)
	setInt64(&out.MaxFileSize, over.MaxFileSize)
	if len(over.AllowedExtensions) > 0 {
		out.AllowedExtensions = append([]string(nil), over.AllowedExtensions...)
	}
	if over.ConfidenceThreshold != 0 {
		out.ConfidenceThreshold = over.ConfidenceThreshold
	}
	setInt64(&out.MaxBodyBytes, over.MaxBodyBytes)
	setInt64(&out.PredictTimeoutSeconds, over.PredictTimeoutSeconds)
	setInt64(&out.ShutdownTimeoutSeconds, over.ShutdownTimeoutSeconds)
	if over.CORSEnabled != nil {
		v := *over.CORSEnabled
		out.CORSEnabled = &v
	}
	if len(over.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = append([]string(nil), over.CORSAllowedOrigins...)
	}
	if len(over.CORSAllowedMethods) > 0 {
		out.CORSAllowedMethods = append([]string(nil), over.CORSAllowedMethods...)
	}
	if len(over.CORSAllowedHeaders) > 0 {
		out.CORSAllowedHeaders = append([]string(nil), over.CORSAllowedHeaders...)
	}
	setStr(&out.LogLevel, over.LogLevel)
	setStr(&out.LogFormat, over.LogFormat)
	return out
}

// FromEnv collects overrides from the environment. MODEL_PATH and
// CLASS_NAMES_PATH are accepted alongside the CLASSIFYD_* names.
func FromEnv(getenv func(string) string) (Config, error) {
	var cfg Config
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}
	cfg.Addr = first("CLASSIFYD_ADDR")
	cfg.ModelPath = first("CLASSIFYD_MODEL_PATH", "MODEL_PATH")
	cfg.ClassNamesPath = first("CLASSIFYD_CLASS_NAMES_PATH", "CLASS_NAMES_PATH")
	cfg.LibraryPath = first("CLASSIFYD_ONNXRUNTIME_LIB")
	cfg.LogLevel = first("CLASSIFYD_LOG_LEVEL")
	cfg.LogFormat = first("CLASSIFYD_LOG_FORMAT")
	if v := first("CLASSIFYD_CONFIDENCE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("CLASSIFYD_CONFIDENCE_THRESHOLD: %w", err)
		}
		cfg.ConfidenceThreshold = f
	}
	if v := first("CLASSIFYD_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("CLASSIFYD_MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}
	if v := first("CLASSIFYD_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("CLASSIFYD_SESSIONS: %w", err)
		}
		cfg.Sessions = n
	}
	if v := first("CLASSIFYD_CORS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("CLASSIFYD_CORS_ENABLED: %w", err)
		}
		cfg.CORSEnabled = &b
	}
	if v := first("CLASSIFYD_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = SplitCSV(v)
	}
	return cfg, nil
}

// Validate checks a fully merged configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model_path is required")
	}
	if strings.TrimSpace(c.ClassNamesPath) == "" {
		return fmt.Errorf("class_names_path is required")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold %v outside [0,1]", c.ConfidenceThreshold)
	}
	if c.ImageSize < 0 {
		return fmt.Errorf("image_size must be positive, got %d", c.ImageSize)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("max_inflight must not be negative, got %d", c.MaxInFlight)
	}
	if c.MaxBodyBytes > 0 && c.MaxFileSize > 0 && c.MaxBodyBytes <= c.MaxFileSize {
		return fmt.Errorf("max_body_bytes (%d) must exceed max_file_size (%d)", c.MaxBodyBytes, c.MaxFileSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// Pipeline returns the pipeline section of the configuration.
func (c Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		ImageSize:           c.ImageSize,
		MaxFileSize:         c.MaxFileSize,
		AllowedExtensions:   append([]string(nil), c.AllowedExtensions...),
		ConfidenceThreshold: c.ConfidenceThreshold,
	}
}

// CORS reports whether CORS is enabled.
func (c Config) CORS() bool { return c.CORSEnabled != nil && *c.CORSEnabled }

// SplitCSV splits a comma-separated list and drops blank items.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v != 0 {
		*dst = v
	}
}
