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

package matching

import (
	"time"

	"code.vegaprotocol.io/orderbook/config/encoding"
	"code.vegaprotocol.io/orderbook/logging"
)

// namedLogger is the identifier for package and should ideally match the package name
// this is simply emitted as a hierarchical label e.g. 'api.grpc'.
const namedLogger = "orderbook"

// Config represents the configuration of the order book.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	LogPriceLevelsDebug   bool `long:"log-price-levels-debug"`
	LogRemovedOrdersDebug bool `long:"log-removed-orders-debug"`

	// DiscardFillAndKillRemainder cancels whatever is left of a fill and kill
	// order once matching is done instead of leaving it on the book.
	DiscardFillAndKillRemainder encoding.Bool `long:"discard-fill-and-kill-remainder" description:"cancel the unmatched remainder of fill and kill orders"`

	Prune PruneConfig `group:"Prune" namespace:"prune"`
}

// PruneConfig configures the expiry of good for day orders.
type PruneConfig struct {
	Enabled encoding.Bool `long:"enabled" description:"expire good for day orders at market close"`
	// MarketCloseHour is the hour of the day, in Location, at which good for day orders expire.
	MarketCloseHour  int               `long:"market-close-hour"`
	Location         string            `long:"location" description:"IANA time zone of the market close, Local for the host one"`
	SafetyMargin     encoding.Duration `long:"safety-margin" description:"delay added after the market close before pruning"`
	RetryMaxInterval encoding.Duration `long:"retry-max-interval" description:"maximum delay between two attempts when the next close cannot be computed"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:                       encoding.LogLevel{Level: logging.InfoLevel},
		LogPriceLevelsDebug:         false,
		LogRemovedOrdersDebug:       false,
		DiscardFillAndKillRemainder: false,
		Prune:                       NewDefaultPruneConfig(),
	}
}

func NewDefaultPruneConfig() PruneConfig {
	return PruneConfig{
		Enabled:          true,
		MarketCloseHour:  16,
		Location:         "Local",
		SafetyMargin:     encoding.Duration{Duration: 100 * time.Millisecond},
		RetryMaxInterval: encoding.Duration{Duration: time.Minute},
	}
}
