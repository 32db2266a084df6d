// Package config loads runtime configuration for the vibecut client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (JSON or YAML, read with viper) selected via
//     -c, -config or --config.
//  3. A .env file in the working directory (godotenv) and the process
//     environment, read with cleanenv using the VIBECUT_* variables.
//  4. Command-line flags, which override everything else.
//
// The result is validated with go-playground/validator.
//
// Supported flags
//
//	-a, --api string         backend base URL (default "http://localhost:3001/api")
//	-d, --data-dir string    local data directory
//	--store string           local store driver: sqlite or redis
//	--redis-addr string      redis address when --store=redis
//	--timeout duration       HTTP timeout
//	--log-format string      text, json or zap
//	--log-level string       debug, info, warn or error
//
// # File schema
//
//	api_base_url: https://editor.example.com/api
//	data_dir: ~/.vibecut
//	http_timeout: 30s
//	store:
//	  driver: sqlite
//	log:
//	  format: text
//	  level: info
//	import:
//	  include_patterns: ["**/*.mp4", "**/*.png"]
//	  ignore_patterns: ["**/.DS_Store"]
//	  debounce_ms: 500
package config
