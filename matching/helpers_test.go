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
	"testing"

	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/types"

	"github.com/stretchr/testify/assert"
)

type tstOB struct {
	*OrderBook
	log *logging.Logger
}

func (t *tstOB) Finish() {
	t.OrderBook.Close()
	t.log.AtExit()
}

func getTestOrderBook(t *testing.T) *tstOB {
	return getTestOrderBookWithConfig(t, testConfig())
}

func getTestOrderBookWithConfig(_ *testing.T, cfg Config) *tstOB {
	tob := tstOB{
		log: logging.NewTestLogger(),
	}
	tob.OrderBook = NewOrderBook(tob.log, cfg)
	return &tob
}

// testConfig turns on all the debug switches so we can cover more lines of
// code, and turns off the pruner which is tested on its own.
func testConfig() Config {
	cfg := NewDefaultConfig()
	cfg.LogPriceLevelsDebug = true
	cfg.LogRemovedOrdersDebug = true
	cfg.Prune.Enabled = false
	return cfg
}

func gtc(id types.OrderID, side types.Side, price types.Price, qty types.Quantity) *types.Order {
	return types.NewOrder(types.OrderTypeGoodTillCancel, id, side, price, qty)
}

func trade(bid types.OrderID, bidPrice types.Price, ask types.OrderID, askPrice types.Price, qty types.Quantity) types.Trade {
	return types.NewTrade(
		types.TradeInfo{OrderID: bid, Price: bidPrice, Quantity: qty},
		types.TradeInfo{OrderID: ask, Price: askPrice, Quantity: qty},
	)
}

func (b *OrderBook) getNumberOfBuyLevels() int {
	return b.buy.levels.Len()
}

func (b *OrderBook) getNumberOfSellLevels() int {
	return b.sell.levels.Len()
}

// assertBookConsistent checks the invariants which must hold after every operation.
func assertBookConsistent(t *testing.T, b *OrderBook) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	if bid, ok := b.buy.best(); ok {
		if ask, ok := b.sell.best(); ok {
			assert.Less(t, bid.price, ask.price, "book is crossed")
		}
	}

	resting := 0
	for _, side := range []*OrderBookSide{b.buy, b.sell} {
		for _, level := range side.getLevels() {
			assert.False(t, level.empty(), "empty level left on the book")
			var volume uint64
			level.each(func(o *types.Order) {
				resting++
				volume += uint64(o.RemainingQuantity())
				assert.False(t, o.IsFilled(), "filled order left on the book")
				assert.LessOrEqual(t, o.RemainingQuantity(), o.InitialQuantity())
				assert.Equal(t, level.price, o.Price())
				assert.Equal(t, side.side, o.Side())
				entry, ok := b.orders[o.ID()]
				if assert.True(t, ok, "resting order missing from the index") {
					assert.Same(t, o, entry.order)
					assert.Same(t, level, entry.level)
				}
			})
			assert.Equal(t, volume, level.volume)
		}
	}
	assert.Equal(t, len(b.orders), resting)
}
