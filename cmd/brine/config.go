package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the pack defaults loadable from a brine.toml next to the
// invocation. Flags override whatever the file provides.
type Config struct {
	Codec      string `toml:"codec"`
	ChunkLimit uint64 `toml:"chunk_limit"`
}

const configFile = "brine.toml"

// loadConfig reads brine.toml from the current directory. A missing or
// malformed file falls back to the built-in defaults; the tool must stay
// usable without one.
func loadConfig() Config {
	cfg := Config{Codec: "NONE", ChunkLimit: 0}
	data, err := os.ReadFile(configFile)
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		log.Errorf("ignoring %s: %v", configFile, err)
		return Config{Codec: "NONE", ChunkLimit: 0}
	}
	return cfg
}
