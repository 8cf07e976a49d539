package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	defaultRequestsPerMinute = 600
	defaultBurst             = 60
)

type Config struct {
	DataDir        string `toml:"DataDir"`
	MetricsAddress string `toml:"MetricsAddress"`
	LogEnv         string `toml:"LogEnv"`
	LogFile        string `toml:"LogFile"`
	GenesisFile    string `toml:"GenesisFile"`
	ArchiveDSN     string `toml:"ArchiveDSN"`
	// HTTPRequestsPerMinute and HTTPBurst throttle the operator endpoints per client.
	HTTPRequestsPerMinute float64 `toml:"HTTPRequestsPerMinute"`
	HTTPBurst             int     `toml:"HTTPBurst"`

	Staking Staking `toml:"Staking"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./staking-data"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9464"
	}
	if cfg.HTTPRequestsPerMinute <= 0 {
		cfg.HTTPRequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.HTTPBurst <= 0 {
		cfg.HTTPBurst = defaultBurst
	}
	if err := cfg.Staking.applyDefaults(meta); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := ValidateStaking(cfg.Staking); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file. The owner is
// left empty and must be filled in before the node can start.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:               "./staking-data",
		MetricsAddress:        ":9464",
		LogEnv:                "dev",
		GenesisFile:           "",
		HTTPRequestsPerMinute: defaultRequestsPerMinute,
		HTTPBurst:             defaultBurst,
		Staking:               DefaultStaking(),
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
