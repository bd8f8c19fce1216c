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

package commands

import (
	"context"

	"code.vegaprotocol.io/orderbook/config"
	"code.vegaprotocol.io/orderbook/logging"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	RootPathFlag

	Force bool `short:"f" long:"force" description:"Erase existing configuration at the specified path"`
}

var initCmd InitCmd

func Init(_ context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{
		RootPathFlag: NewRootPathFlag(),
	}

	_, err := parser.AddCommand("init", "Initialise the order book configuration", "Generate the default config.toml in the root path", &initCmd)
	return err
}

func (opts *InitCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	if err := config.Write(opts.RootPath, config.NewDefaultConfig(), opts.Force); err != nil {
		return err
	}

	log.Info("configuration generated successfully",
		logging.String("path", config.Path(opts.RootPath)))
	return nil
}
