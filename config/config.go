package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultModels inspected when nothing else is requested
var DefaultModels = []string{"uv-sphere.stl", "wavePlane.obj"}

const DefaultDumpCount = 11

type Config struct {
	Models    []string `yaml:"models"`
	Resources string   `yaml:"resources"`
	Iso       string   `yaml:"iso"`
	DumpCount int      `yaml:"dump_count"`
	Addr      string   `yaml:"addr"`
	Encoding  string   `yaml:"encoding"`
}

func Default() *Config {
	models := make([]string, len(DefaultModels))
	copy(models, DefaultModels)
	return &Config{
		Models:    models,
		Resources: "resources",
		DumpCount: DefaultDumpCount,
	}
}

// Load reads yaml config on top of Default() values
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read config %q", path)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "Failed to unmarshal config")
	}
	if c.DumpCount <= 0 {
		return nil, errors.Errorf("dump_count must be positive, got %d", c.DumpCount)
	}
	if len(c.Models) == 0 {
		return nil, errors.Errorf("Config contains no models")
	}
	if c.Encoding != "" {
		if err := SetEncoding(c.Encoding); err != nil {
			return nil, err
		}
	}
	return c, nil
}
