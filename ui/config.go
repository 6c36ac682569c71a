// Package ui handles the user configuration file.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"nx/emu"
	"nx/emu/log"
	"nx/emu/screen"
)

type Config struct {
	emu.Config
	Keys screen.KeyMap `toml:"keys"`
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "nx")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

func DefaultConfig() Config {
	return Config{
		Config: emu.DefaultConfig(),
		Keys:   screen.DefaultKeyMap(),
	}
}

const cfgFilename = "config.toml"

// ConfigPath returns the path of the configuration file in the nx config
// directory.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfigOrDefault loads the configuration from the nx config directory,
// or provide a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			log.ModEmu.Warnf("ignoring configuration file: %v", err)
		}
		return DefaultConfig()
	}
	return cfg
}

// LoadConfig loads the configuration file at path. Values missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		log.ModEmu.Warnf("%s: unknown configuration keys %v", path, undec)
	}
	if err := cfg.Check(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig into nx config directory.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(cfg, ConfigPath())
}

func SaveConfigTo(cfg Config, path string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
