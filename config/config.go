package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// RateLimit caps RPC requests per client.
type RateLimit struct {
	RequestsPerMinute uint32 `toml:"RequestsPerMinute"`
	Burst             int    `toml:"Burst"`
}

type Config struct {
	DataDir       string    `toml:"DataDir"`
	RPCAddress    string    `toml:"RPCAddress"`
	Bech32Prefix  string    `toml:"Bech32Prefix"`
	ChainID       string    `toml:"ChainID"`
	BlockInterval Duration  `toml:"BlockInterval"`
	GenesisFile   string    `toml:"GenesisFile"`
	IndexerDSN    string    `toml:"IndexerDSN"`
	LogFile       string    `toml:"LogFile"`
	Env           string    `toml:"Env"`
	MaxCallDepth  int       `toml:"MaxCallDepth"`
	RateLimit     RateLimit `toml:"RateLimit"`
}

// Default returns the configuration written on first start.
func Default() *Config {
	return &Config{
		DataDir:       "./nftfi-data",
		RPCAddress:    ":8080",
		Bech32Prefix:  "nftfi",
		ChainID:       "nftfi-local",
		BlockInterval: Duration(defaultBlockInterval),
		GenesisFile:   "",
		IndexerDSN:    "",
		Env:           "dev",
		MaxCallDepth:  16,
		RateLimit:     RateLimit{RequestsPerMinute: 600, Burst: 50},
	}
}

// Load loads the configuration from the given path, writing the defaults
// there when the file does not exist yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.Bech32Prefix) == "" {
		c.Bech32Prefix = def.Bech32Prefix
	}
	if strings.TrimSpace(c.ChainID) == "" {
		c.ChainID = def.ChainID
	}
	if c.BlockInterval <= 0 {
		c.BlockInterval = def.BlockInterval
	}
	if c.MaxCallDepth <= 0 {
		c.MaxCallDepth = def.MaxCallDepth
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = def.Env
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
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
