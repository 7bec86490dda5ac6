package config

import (
	"os"

	"github.com/turtl/core/pkg/terror"
	"gopkg.in/yaml.v3"
)

const defaultAPIEndpoint = "https://api.turtlapp.com/v2"

// Config is turtlcore's top-level configuration document.
type Config struct {
	API struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"api"`
	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`
	Workers struct {
		Crypto int `yaml:"crypto"`
	} `yaml:"workers"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns a Config with every field at its documented default.
func Default() *Config {
	cfg := &Config{}
	cfg.API.Endpoint = defaultAPIEndpoint
	cfg.Data.Dir = "./data"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads and parses the YAML document at path, overlaying it onto
// Default(). Unrecognized keys are ignored, per yaml.v3's default unmarshal
// behavior.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, terror.Wrap(err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, terror.Wrap(err)
	}
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = defaultAPIEndpoint
	}
	return cfg, nil
}
