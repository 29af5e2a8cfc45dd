package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// FileProvider reads the project configuration from a YAML file with
// ANCHOR_* environment variables layered on top.
type FileProvider struct {
	// Path is the configuration file location. When the file does
	// not exist the provider still succeeds with env-only values, so
	// a checked-in default path works on machines without the file.
	Path string
}

// NewFileProvider creates a file provider for path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Name implements Provider.
func (f *FileProvider) Name() string {
	return fmt.Sprintf("file:%s", f.Path)
}

// Configuration implements Provider.
func (f *FileProvider) Configuration() (*Project, error) {
	cfg := Default()

	if _, err := os.Stat(f.Path); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(f.Path, cfg); err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return cfg, nil
}
