package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// cliConfig holds the CLI's own optional settings, loaded from
// ~/.goepub.toml. The library itself takes no configuration.
type cliConfig struct {
	DefaultTOCDepth    int    `toml:"default_toc_depth"`
	DefaultAssetFilter string `toml:"default_asset_filter"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		DefaultTOCDepth:    3,
		DefaultAssetFilter: "",
	}
}

// loadConfig applies defaults, then overlays ~/.goepub.toml if present. A
// missing file is not an error; a malformed one is.
func loadConfig() (cliConfig, error) {
	cfg := defaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	path := filepath.Join(home, ".goepub.toml")
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
