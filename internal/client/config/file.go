package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// parseFile overlays cfg with values from a JSON or YAML file. The format is
// taken from the file extension. Keys missing from the file keep their
// current values. An empty path is a no-op.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	return nil
}
