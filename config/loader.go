package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var log = logrus.WithField("prefix", "config")

// LoadFile reads a YAML network profile. Values missing from the file are
// taken from the preset named by PRESET_BASE, mainnet if unset.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "could not read chain config file")
	}
	return Load(raw)
}

// Load parses a YAML network profile.
func Load(raw []byte) (*Config, error) {
	var base struct {
		PresetBase string `yaml:"PRESET_BASE"`
	}
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return nil, errors.Wrap(err, "could not parse chain config")
	}
	conf, err := ByName(base.PresetBase)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.SetStrict(true)
	if err := dec.Decode(conf); err != nil {
		return nil, errors.Wrap(err, "could not parse chain config")
	}
	if conf.ConfigName == "" {
		conf.ConfigName = "devnet"
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid chain config")
	}
	log.WithField("name", conf.ConfigName).Debugf("Config file values: %+v", conf)
	return conf, nil
}
