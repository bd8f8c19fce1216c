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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.vegaprotocol.io/orderbook/config"
	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/matching"
	"code.vegaprotocol.io/orderbook/metrics"
	"code.vegaprotocol.io/orderbook/types"

	"github.com/jessevdk/go-flags"
)

type DemoCmd struct {
	ctx context.Context

	RootPathFlag
	Wait bool `short:"w" long:"wait" description:"Keep the book alive until interrupted, serving metrics and pruning good for day orders"`
}

var demoCmd DemoCmd

func Demo(ctx context.Context, parser *flags.Parser) error {
	demoCmd = DemoCmd{
		ctx:          ctx,
		RootPathFlag: NewRootPathFlag(),
	}

	_, err := parser.AddCommand("demo", "Run a sample matching scenario",
		"Submit a buy and a crossing sell order to a fresh book, then print the trades and the resulting depth", &demoCmd)
	return err
}

func (opts *DemoCmd) Execute(_ []string) error {
	ctx, cancel := context.WithCancel(opts.ctx)
	defer cancel()

	log := logging.NewLoggerToStderr()
	defer log.AtExit()

	cfg := config.NewDefaultConfig()
	var watcher *config.Watcher
	if _, err := os.Stat(config.Path(opts.RootPath)); err == nil {
		w, err := config.NewFromFile(ctx, log, opts.RootPath)
		if err != nil {
			return fmt.Errorf("couldn't load configuration: %w", err)
		}
		watcher, cfg = w, w.Get()
	} else {
		log.Info("no configuration found, using defaults",
			logging.String("path", config.Path(opts.RootPath)))
	}
	log.SetLevel(cfg.Logging.Level)

	metrics.Start(log, cfg.Metrics)

	book := matching.NewOrderBook(log, cfg.Matching)
	// stop the config watcher before the book so no reload lands on a closed book
	defer func() {
		cancel()
		book.Close()
	}()

	if watcher != nil {
		watcher.OnConfigUpdate(func(cfg config.Config) {
			log.SetLevel(cfg.Logging.Level)
			book.ReloadConf(cfg.Matching)
		})
	}

	p := printer{w: os.Stdout}
	runDemo(book, p)

	if !opts.Wait {
		return nil
	}

	if cfg.Matching.Prune.Enabled {
		if loc, err := time.LoadLocation(cfg.Matching.Prune.Location); err == nil {
			if next, err := matching.NextPruneTime(time.Now().In(loc), cfg.Matching.Prune.MarketCloseHour); err == nil {
				p.nextPrune(next)
			}
		}
	}
	waitSig(ctx, log)
	return nil
}

// runDemo submits a resting buy order and a smaller crossing sell order.
func runDemo(book *matching.OrderBook, p printer) types.Trades {
	buy := types.NewOrder(types.OrderTypeGoodTillCancel, 1, types.SideBuy, 100, 10)
	sell := types.NewOrder(types.OrderTypeGoodTillCancel, 2, types.SideSell, 100, 5)

	p.order(buy)
	p.order(sell)

	trades := book.AddOrder(buy)
	p.trades(trades)

	sellTrades := book.AddOrder(sell)
	p.trades(sellTrades)

	p.depth(book.GetOrderInfos())
	return append(trades, sellTrades...)
}

// waitSig will wait for a sigterm or sigint interrupt.
func waitSig(ctx context.Context, log *logging.Logger) {
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(gracefulStop)

	select {
	case sig := <-gracefulStop:
		log.Info("Caught signal", logging.String("name", fmt.Sprintf("%+v", sig)))
	case <-ctx.Done():
		// nothing to do
	}
}
