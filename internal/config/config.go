// Package config loads the optional HCL configuration file used to set
// defaults for flags the CLI did not receive explicitly, in the same
// flag-wins-over-config-wins-over-default order the example CLI this one is
// patterned on uses.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl"
)

// Config holds the settings every tupledb subcommand needs: where the
// storage directory lives and how to log.
type Config struct {
	DataDir   string
	LogLevel  string
	LogFile   string
	LogStderr bool
}

// Default returns the built-in defaults, overridden first by an HCL file
// and then by explicit flags.
func Default() Config {
	return Config{
		DataDir:  "tupledb-data",
		LogLevel: "info",
		LogFile:  "tupledb.log",
	}
}

// Load reads and HCL-decodes path into a raw key/value map. A missing file
// is not an error: callers treat a nil map as "no config file present."
func Load(path string) (map[string]interface{}, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var raw map[string]interface{}
	if err := hcl.Decode(&raw, string(b)); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return raw, nil
}

// Apply merges raw config values into cfg, skipping any key the caller
// reports as already set via an explicit flag (usedFlags) so command-line
// flags always win over the config file.
func Apply(cfg *Config, raw map[string]interface{}, usedFlags map[string]bool) error {
	for name, val := range raw {
		if usedFlags[name] {
			continue
		}
		switch name {
		case "data-dir":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("config: data-dir: expected string, got %v", val)
			}
			cfg.DataDir = s
		case "log-level":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("config: log-level: expected string, got %v", val)
			}
			cfg.LogLevel = s
		case "log-file":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("config: log-file: expected string, got %v", val)
			}
			cfg.LogFile = s
		case "log-stderr":
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("config: log-stderr: expected boolean, got %v", val)
			}
			cfg.LogStderr = b
		default:
			return fmt.Errorf("config: %s is not a config variable", name)
		}
	}
	return nil
}
