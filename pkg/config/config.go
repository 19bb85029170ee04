// Package config loads psd-extractor settings from a TOML or YAML file.
//
// Every field is optional; command-line flags override whatever the file sets.
//
//	# psd-extractor.toml
//	output_dir     = "assets/layers"
//	zip            = "layers.zip"
//	report         = "LAYERS.md"
//	inherit_hidden = false
//	compression    = "best"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// File mirrors the CLI flags that make sense to persist.
type File struct {
	OutputDir     string `toml:"output_dir" yaml:"output_dir"`
	Zip           string `toml:"zip" yaml:"zip"`
	Report        string `toml:"report" yaml:"report"`
	LayerTree     bool   `toml:"layer_tree" yaml:"layer_tree"`
	InheritHidden bool   `toml:"inherit_hidden" yaml:"inherit_hidden"`
	NoFallback    bool   `toml:"no_fallback" yaml:"no_fallback"`
	Compression   string `toml:"compression" yaml:"compression"`
}

// Load reads path and decodes it according to its extension (.toml, .yaml or .yml).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (must be .toml, .yaml, or .yml)", ext)
	}

	return &cfg, nil
}

// Server holds settings for the HTTP service, read from the environment.
type Server struct {
	Addr           string
	MaxUploadBytes int64
}

// LoadServer reads PSD_EXTRACTOR_ADDR and PSD_EXTRACTOR_MAX_UPLOAD, falling back to defaults.
func LoadServer() Server {
	cfg := Server{
		Addr:           envOr("PSD_EXTRACTOR_ADDR", ":8090"),
		MaxUploadBytes: envInt64("PSD_EXTRACTOR_MAX_UPLOAD", 200<<20), // 200MB
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 200 << 20
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
