// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"

	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/matching"
	"code.vegaprotocol.io/orderbook/metrics"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

var ErrConfigAlreadyExists = errors.New("configuration file already exists")

// Config ties together all other application configuration types.
type Config struct {
	Logging  logging.Config  `group:"Logging" namespace:"logging"`
	Matching matching.Config `group:"Matching" namespace:"matching"`
	Metrics  metrics.Config  `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns a set of default configs for all packages, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		Logging:  logging.NewDefaultConfig(),
		Matching: matching.NewDefaultConfig(),
		Metrics:  metrics.NewDefaultConfig(),
	}
}

// Path returns the location of the configuration file under rootPath.
func Path(rootPath string) string {
	return filepath.Join(rootPath, configFileName)
}

// Read loads the configuration file from rootPath. Missing keys keep their default value.
func Read(rootPath string) (*Config, error) {
	path := Path(rootPath)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read configuration file")
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrapf(err, "couldn't decode %s", path)
	}
	return &cfg, nil
}

// Write saves cfg under rootPath, creating the directory if needed.
// An existing file is only replaced when overwrite is set.
func Write(rootPath string, cfg Config, overwrite bool) error {
	path := Path(rootPath)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.Wrap(ErrConfigAlreadyExists, path)
	}
	if err := os.MkdirAll(rootPath, 0o700); err != nil {
		return errors.Wrap(err, "couldn't create configuration directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "couldn't create configuration file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(err, "couldn't encode configuration")
	}
	return nil
}
