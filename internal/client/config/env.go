package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// parseEnv loads dotenvPath into the process environment (variables that are
// already set win) and then overlays cfg with the VIBECUT_* variables.
// A missing dotenv file is fine.
func parseEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", dotenvPath, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}
	return nil
}
