// internal/config/config.go
//
// Configuration for the hangman binaries.
//
// Sources, lowest precedence first:
//   1. built-in defaults,
//   2. an optional YAML file (--config flag or HANGMAN_CONFIG),
//   3. environment variables, including a `.env` file loaded via godotenv.
//
// Environment variables:
//   HANGMAN_NAME          prefix of the shared objects      (default "hangman")
//   HANGMAN_SHM_DIR       directory of the shared objects   (default /dev/shm)
//   LOG_LEVEL             zerolog level                     (default info, warn for the client)
//   LOG_FORMAT            "console" or "json"               (default "console")
//   HANGMAN_DB            SQLite ledger path; empty keeps results in memory
//   HANGMAN_ADMIN_ADDR    listen address of the admin API; empty disables it
//   HANGMAN_ADMIN_SECRET  HMAC secret for admin tokens; empty disables auth

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/hangman/internal/ipc"
)

// Config holds every setting. An empty Log.Level means the binary picks
// its own default.
type Config struct {
	Shm struct {
		Name string `yaml:"name"`
		Dir  string `yaml:"dir"`
	} `yaml:"shm"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Admin struct {
		Addr   string `yaml:"addr"`
		Secret string `yaml:"secret"`
	} `yaml:"admin"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Shm.Name = ipc.DefaultPrefix
	c.Shm.Dir = ipc.DefaultDir
	c.Log.Format = "console"
	return c
}

// Load builds the configuration. path may be empty, in which case
// HANGMAN_CONFIG is consulted; no file at all is fine.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	c := Default()
	if path == "" {
		path = os.Getenv("HANGMAN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	c.Shm.Name = getEnv("HANGMAN_NAME", c.Shm.Name)
	c.Shm.Dir = getEnv("HANGMAN_SHM_DIR", c.Shm.Dir)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Store.Path = getEnv("HANGMAN_DB", c.Store.Path)
	c.Admin.Addr = getEnv("HANGMAN_ADMIN_ADDR", c.Admin.Addr)
	c.Admin.Secret = getEnv("HANGMAN_ADMIN_SECRET", c.Admin.Secret)
	return c, nil
}

// Names returns the shared object names described by c.
func (c Config) Names() ipc.Names {
	return ipc.Names{Dir: c.Shm.Dir, Prefix: c.Shm.Name}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
