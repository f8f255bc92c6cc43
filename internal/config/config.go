// Package config resolves tareas settings from defaults, config.toml and
// TAREAS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvConfigDir = "TAREAS_CONFIG_DIR"
	envPrefix    = "TAREAS"
	fileName     = "config.toml"
)

type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	Log    LogConfig    `mapstructure:"log"`
	UI     UIConfig     `mapstructure:"ui"`
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type UIConfig struct {
	DarkMode bool   `mapstructure:"dark_mode"`
	Filter   string `mapstructure:"filter"`
	Sort     string `mapstructure:"sort"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// Dir is $TAREAS_CONFIG_DIR, falling back to ~/.tareas.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return filepath.Clean(v), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tareas"), nil
}

// Path is the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("data.dir", dir)
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.dark_mode", false)
	v.SetDefault("ui.filter", "all")
	v.SetDefault("ui.sort", "name")
	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("auth.session_ttl", "720h")
}

// Load reads configuration. A .env in the working directory or the config dir
// is applied first; variables already set in the environment win.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	for _, p := range []string{".env", filepath.Join(dir, ".env")} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	// .env may have pointed somewhere else.
	if dir, err = Dir(); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetConfigName("config")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if strings.TrimSpace(c.Data.Dir) == "" {
		c.Data.Dir = dir
	}
	return c, nil
}

// Set writes a single key into config.toml, keeping the keys already there.
func Set(key string, value any) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func SetDarkMode(dark bool) error {
	return Set("ui.dark_mode", dark)
}
