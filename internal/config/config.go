// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ProjectRoot string  `toml:"project_root"`
	Exclude     Exclude `toml:"exclude"`
	Cache       Cache   `toml:"cache"`
	Watch       Watch   `toml:"watch"`
	Output      Output  `toml:"output"`
	Metrics     Metrics `toml:"metrics"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`  // extra dir globs on top of the built-in ignore set
	Files []string `toml:"files"` // document basename globs to drop after discovery
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce       time.Duration `toml:"debounce"`
	RebuildsPerSec float64       `toml:"rebuilds_per_sec"`
	RebuildBurst   int           `toml:"rebuild_burst"`
}

type Output struct {
	JSON     string `toml:"json"`
	Markdown string `toml:"markdown"`
	TSV      string `toml:"tsv"`
}

type Metrics struct {
	Addr string `toml:"addr"` // promhttp listen address, watch mode only
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RebuildsPerSec == 0 {
		cfg.Watch.RebuildsPerSec = 2
	}
	if cfg.Watch.RebuildBurst == 0 {
		cfg.Watch.RebuildBurst = 1
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = ".agents/cache/snapshots.db"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "127.0.0.1:9184"
	}
}
