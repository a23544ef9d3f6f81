package config

import (
	"fmt"
	"strings"
)

var (
	MaxCallDepthLimit = 64
)

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must be set")
	}
	if strings.ToLower(c.Bech32Prefix) != c.Bech32Prefix {
		return fmt.Errorf("config: Bech32Prefix must be lower case")
	}
	if c.MaxCallDepth > MaxCallDepthLimit {
		return fmt.Errorf("config: MaxCallDepth %d above %d", c.MaxCallDepth, MaxCallDepthLimit)
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("config: RateLimit.Burst must not be negative")
	}
	return nil
}
