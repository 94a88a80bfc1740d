package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/a4blue/sarb/pkg/shared/files"
)

// DefaultConfigFile is picked up from the working directory when no explicit
// configuration path is given.
const DefaultConfigFile = ".sarb.yml"

// Config is the global YAML configuration.
type Config struct {
	Logger   Logger   `yaml:"logger"`
	History  History  `yaml:"history"`
	Matching Matching `yaml:"matching"`
	Output   Output   `yaml:"output"`
}

type Logger struct {
	Level           string `yaml:"level"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// History configures the git backed history provider.
type History struct {
	MaxChainCommits int           `yaml:"max_chain_commits"`
	Workers         int           `yaml:"workers"`
	DetectRenames   *bool         `yaml:"detect_renames"`
	FetchMissing    bool          `yaml:"fetch_missing"`
	AuthType        string        `yaml:"auth_type"`
	SSHKey          string        `yaml:"ssh_key"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Matching configures how baseline and current findings are compared.
type Matching struct {
	IncludeMessage bool `yaml:"include_message"`
}

type Output struct {
	DefaultFormat string `yaml:"default_format"`
}

// ValidateConfigPath checks that path points at a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the configuration. An empty path falls back to $SARB_CONFIG
// and then to DefaultConfigFile; a missing default file yields an empty config.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	explicit := true
	if configPath == "" {
		configPath = os.Getenv("SARB_CONFIG")
	}
	if configPath == "" {
		configPath = DefaultConfigFile
		explicit = false
	}

	expanded, err := files.ExpandPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %q: %w", configPath, err)
	}

	if _, err := os.Stat(expanded); os.IsNotExist(err) && !explicit {
		return config, nil
	}

	if err := LoadYAML(expanded, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", expanded, err)
	}

	return config, nil
}
