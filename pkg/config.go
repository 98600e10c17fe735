package wifiscand

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendIW     = "iw"
	BackendIWList = "iwlist"
)

type ServerConfig struct {
	Bind         string        `yaml:"bind"`
	Port         int           `yaml:"port"`
	UiDir        string        `yaml:"ui_dir"`
	Interface    string        `yaml:"interface"`
	Backend      string        `yaml:"backend"`
	ScanDelay    time.Duration `yaml:"scan_delay"`
	HistoryLimit int           `yaml:"history_limit"`
	Workers      int           `yaml:"workers"`
	Metrics      bool          `yaml:"metrics"`
	Verbose      bool          `yaml:"verbose"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Bind:         "127.0.0.1",
		Port:         8000,
		UiDir:        "./frontend/build",
		Backend:      BackendIW,
		ScanDelay:    DefaultScanDelay,
		HistoryLimit: DefaultHistoryLimit,
		Workers:      2,
		Metrics:      true,
	}
}

// LoadConfigFile reads a YAML config on top of the defaults. Keys
// missing from the file keep their default value.
func LoadConfigFile(path string) (ServerConfig, error) {
	config := DefaultServerConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return config, fmt.Errorf("cannot parse config %q: %w", path, err)
	}
	return config, nil
}

func (c ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", c.HistoryLimit)
	}
	if c.ScanDelay < 0 {
		return fmt.Errorf("scan delay cannot be negative")
	}
	switch c.Backend {
	case BackendIW, BackendIWList:
	default:
		return fmt.Errorf("unknown scan backend %q", c.Backend)
	}
	return nil
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
