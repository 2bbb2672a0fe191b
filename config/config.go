// Package config loads the settings of the tsy tool and its server.
//
// Settings come, by increasing priority, from defaults, a YAML file
// (treasury.yaml in the working directory unless another is given), a .env
// file and TREASURY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/treasury/montecarlo"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "treasury.yaml"

type Config struct {
	DataDir       string        `mapstructure:"data_dir" validate:"required"`
	DBPath        string        `mapstructure:"db_path"` // data_dir/runs.db when empty
	LogLevel      string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	ScenariosFile string        `mapstructure:"scenarios_file"` // extra scenarios on top of the presets
	Listen        string        `mapstructure:"listen" validate:"required,hostname_port"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// Simulation defaults, the scenario's own when zero.
	NumPaths    int `mapstructure:"num_paths" validate:"gte=0"`
	HorizonDays int `mapstructure:"horizon_days" validate:"gte=0"`

	BaseTicker    string `mapstructure:"base_ticker" validate:"required"`
	DerivedTicker string `mapstructure:"derived_ticker" validate:"required"`

	// Gemini model of the assistant.
	Model string `mapstructure:"model" validate:"required"`
}

var defaults = map[string]any{
	"data_dir":       ".",
	"db_path":        "",
	"log_level":      "info",
	"scenarios_file": "",
	"listen":         "localhost:8080",
	"timeout":        "30s",
	"num_paths":      0,
	"horizon_days":   0,
	"base_ticker":    "BTC",
	"derived_ticker": "MSTR",
	"model":          "gemini-2.5-flash",
}

// Load reads the configuration. An empty file means DefaultFile if it
// exists, while an explicit file must exist.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TREASURY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("cannot load config file %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "runs.db")
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// Catalog returns the preset scenarios plus those of ScenariosFile.
func (c *Config) Catalog() (*montecarlo.Catalog, error) {
	presets := montecarlo.Presets()
	if c.ScenariosFile == "" {
		return presets, nil
	}
	f, err := os.Open(c.ScenariosFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open scenarios: %w", err)
	}
	defer f.Close()
	extra, err := montecarlo.DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.ScenariosFile, err)
	}
	return presets.With(extra...)
}
