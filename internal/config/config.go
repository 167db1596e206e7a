// Package config holds apicover settings: built-in defaults overlaid by an
// optional .apicover.yml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = ".apicover.yml"

// Config holds the settings of one coverage run.
type Config struct {
	// Catalogs are the API descriptor documents, merged in order.
	Catalogs []string `yaml:"catalogs"`
	// SourceDir is scanned non-recursively for implementation files.
	SourceDir  string   `yaml:"sourceDir"`
	Extensions []string `yaml:"extensions"`
	// Kinds selects which symbol kinds are checked: function, macro, enum.
	Kinds []string `yaml:"kinds"`
	// Ignore lists symbol names that are never reported.
	Ignore []string `yaml:"ignore,omitempty"`
	// Prefix restricts matching to symbols whose name starts with it.
	Prefix           string `yaml:"prefix,omitempty"`
	Mode             string `yaml:"mode"`
	Format           string `yaml:"format"`
	ShowImplemented  bool   `yaml:"showImplemented,omitempty"`
	SkipUnreadable   bool   `yaml:"skipUnreadable,omitempty"`
	RespectGitignore bool   `yaml:"respectGitignore,omitempty"`
	FailOnMissing    bool   `yaml:"failOnMissing,omitempty"`
	LogLevel         string `yaml:"logLevel"`
}

// Default returns the settings used when nothing else is configured: the
// libvirt descriptor installed by the distribution and the ./src tree of a
// Rust binding.
func Default() Config {
	return Config{
		Catalogs:   []string{"/usr/share/libvirt/api/libvirt-api.xml"},
		SourceDir:  "src",
		Extensions: []string{".rs"},
		Kinds:      []string{"function"},
		Mode:       "substring",
		Format:     "text",
		LogLevel:   "warn",
	}
}

// Load returns Default overlaid with the YAML file at path. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
