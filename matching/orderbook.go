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
	"container/list"
	"sync"

	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/metrics"
	"code.vegaprotocol.io/orderbook/types"
)

const (
	admissionAccepted = "accepted"
	admissionRejected = "rejected"
)

// orderEntry locates a resting order: its level and its position in that level.
type orderEntry struct {
	order    *types.Order
	level    *PriceLevel
	location *list.Element
}

// OrderBook is a single instrument limit order book with price-time priority.
// All the exported methods are safe for concurrent use. A single mutex guards
// both sides and the order index; the unexported *Unlocked helpers expect it to
// be held already and must never acquire it.
type OrderBook struct {
	log *logging.Logger
	Config

	// lifecycleMu serialises ReloadConf and Close so a closed book never
	// restarts its pruner
	lifecycleMu sync.Mutex
	closed      bool

	mu     sync.Mutex
	buy    *OrderBookSide
	sell   *OrderBookSide
	orders map[types.OrderID]*orderEntry

	pruner *Pruner
}

// NewOrderBook creates an order book, and starts the good for day pruner
// when enabled in the configuration.
func NewOrderBook(log *logging.Logger, config Config) *OrderBook {
	return NewOrderBookWithTimeService(log, config, SystemTime{})
}

// NewOrderBookWithTimeService is NewOrderBook with a custom source of time for the pruner.
func NewOrderBookWithTimeService(log *logging.Logger, config Config, ts TimeService) *OrderBook {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	b := &OrderBook{
		log:    log,
		Config: config,
		buy:    newOrderBookSide(log, types.SideBuy),
		sell:   newOrderBookSide(log, types.SideSell),
		orders: map[types.OrderID]*orderEntry{},
	}
	b.pruner = NewPruner(log, config.Prune, b, ts)
	if config.Prune.Enabled {
		// cannot fail on a pruner which was just created
		_ = b.pruner.Start()
	}
	return b
}

// ReloadConf is called by the config watcher when config.toml changes.
// It is a no-op once the book is closed.
func (b *OrderBook) ReloadConf(cfg Config) {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()
	if b.closed {
		b.log.Debug("ignoring configuration update on a closed book")
		return
	}

	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}

	b.mu.Lock()
	b.Config = cfg
	b.mu.Unlock()

	b.pruner.ReloadConf(cfg.Prune)
	if !cfg.Prune.Enabled {
		b.pruner.Stop()
		return
	}
	if !b.pruner.Running() {
		_ = b.pruner.Start()
	}
}

// Close stops the pruner and waits for it to exit. It is safe to call more than once.
func (b *OrderBook) Close() {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()
	b.closed = true
	b.pruner.Stop()
}

// Size returns the number of orders resting on the book.
func (b *OrderBook) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

// CanMatch reports whether an order of side at price would cross the opposite side.
func (b *OrderBook) CanMatch(side types.Side, price types.Price) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canMatchUnlocked(side, price)
}

// CanFullyFill reports whether the opposite side holds at least quantity at
// prices no worse than price.
func (b *OrderBook) CanFullyFill(side types.Side, price types.Price, quantity types.Quantity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canFullyFillUnlocked(side, price, quantity)
}

// AddOrder submits an order to the book and returns the trades it generated.
// A rejected order produces no trades and leaves the book untouched.
func (b *OrderBook) AddOrder(order *types.Order) types.Trades {
	defer metrics.EngineTimeCounterAdd(namedLogger, "AddOrder")()

	b.mu.Lock()
	defer b.mu.Unlock()

	orderType := order.Type().String()
	if reason, ok := b.admitUnlocked(order); !ok {
		if b.log.IsDebug() {
			b.log.Debug("order rejected",
				logging.String("reason", reason),
				logging.Order(order),
			)
		}
		metrics.OrderCounterInc(orderType, admissionRejected)
		return nil
	}
	metrics.OrderCounterInc(orderType, admissionAccepted)

	b.insertUnlocked(order)
	trades := b.matchOrdersUnlocked()
	b.discardRemainderUnlocked(order)

	metrics.TradesPerSubmissionObserve(len(trades), "AddOrder")
	b.recordDepthUnlocked()
	return trades
}

// admitUnlocked applies the type specific admission rules. Market orders are
// priced at the worst opposite level and become good till cancel orders.
func (b *OrderBook) admitUnlocked(order *types.Order) (string, bool) {
	if _, ok := b.orders[order.ID()]; ok {
		return "duplicate order id", false
	}

	switch order.Type() {
	case types.OrderTypeMarket:
		worst, ok := b.opposite(order.Side()).worst()
		if !ok {
			return "no liquidity for market order", false
		}
		order.ToGoodTillCancel(worst.price)
	case types.OrderTypeFillAndKill:
		if !b.canMatchUnlocked(order.Side(), order.Price()) {
			return "fill and kill order cannot match", false
		}
	case types.OrderTypeFillOrKill:
		if !b.canFullyFillUnlocked(order.Side(), order.Price(), order.InitialQuantity()) {
			return "fill or kill order cannot be fully filled", false
		}
	}
	return "", true
}

// CancelOrder removes an order from the book, unknown ids are ignored.
func (b *OrderBook) CancelOrder(id types.OrderID) {
	defer metrics.EngineTimeCounterAdd(namedLogger, "CancelOrder")()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelOrderUnlocked(id)
	b.recordDepthUnlocked()
}

// CancelOrders cancels a batch of orders under a single acquisition of the book lock.
func (b *OrderBook) CancelOrders(ids []types.OrderID) {
	defer metrics.EngineTimeCounterAdd(namedLogger, "CancelOrders")()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.cancelOrderUnlocked(id)
	}
	b.recordDepthUnlocked()
}

// MatchOrder replaces a resting order with a new one of the same type, using
// the side, price and quantity of the request. The replacement joins the back
// of its level. Unknown ids are ignored.
func (b *OrderBook) MatchOrder(modify types.OrderModify) types.Trades {
	defer metrics.EngineTimeCounterAdd(namedLogger, "MatchOrder")()

	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.orders[modify.ID]
	if !ok {
		return nil
	}
	orderType := entry.order.Type()
	b.cancelOrderUnlocked(modify.ID)

	order := modify.ToOrder(orderType)
	b.insertUnlocked(order)
	trades := b.matchOrdersUnlocked()
	b.discardRemainderUnlocked(order)

	metrics.TradesPerSubmissionObserve(len(trades), "MatchOrder")
	b.recordDepthUnlocked()
	return trades
}

// MatchOrders runs the matching algorithm on the current state of the book.
func (b *OrderBook) MatchOrders() types.Trades {
	b.mu.Lock()
	defer b.mu.Unlock()
	trades := b.matchOrdersUnlocked()
	b.recordDepthUnlocked()
	return trades
}

// GetOrderInfos returns the aggregated depth of both sides of the book.
func (b *OrderBook) GetOrderInfos() types.LevelInfos {
	b.mu.Lock()
	defer b.mu.Unlock()
	return types.NewLevelInfos(b.buy.levelInfos(), b.sell.levelInfos())
}

// GetOrder returns a copy of a resting order.
func (b *OrderBook) GetOrder(id types.OrderID) (*types.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	return entry.order.Clone(), true
}

// BestBid returns the highest buy price on the book.
func (b *OrderBook) BestBid() (types.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	level, ok := b.buy.best()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// BestAsk returns the lowest sell price on the book.
func (b *OrderBook) BestAsk() (types.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	level, ok := b.sell.best()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// GoodForDayOrderIDs lists the resting orders which expire at market close.
func (b *OrderBook) GoodForDayOrderIDs() []types.OrderID {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := []types.OrderID{}
	for id, entry := range b.orders {
		if entry.order.IsGoodForDay() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *OrderBook) side(side types.Side) *OrderBookSide {
	if side == types.SideBuy {
		return b.buy
	}
	return b.sell
}

func (b *OrderBook) opposite(side types.Side) *OrderBookSide {
	return b.side(side.Opposite())
}

func (b *OrderBook) canMatchUnlocked(side types.Side, price types.Price) bool {
	return b.opposite(side).crosses(price)
}

func (b *OrderBook) canFullyFillUnlocked(side types.Side, price types.Price, quantity types.Quantity) bool {
	if !b.canMatchUnlocked(side, price) {
		return false
	}
	return b.opposite(side).canFill(price, quantity)
}

func (b *OrderBook) insertUnlocked(order *types.Order) {
	level, location := b.side(order.Side()).addOrder(order)
	b.orders[order.ID()] = &orderEntry{
		order:    order,
		level:    level,
		location: location,
	}
}

// discardRemainderUnlocked cancels whatever is left of a fill and kill order
// once matching is done, when configured to do so.
func (b *OrderBook) discardRemainderUnlocked(order *types.Order) {
	if order.Type() != types.OrderTypeFillAndKill || !b.DiscardFillAndKillRemainder.Get() {
		return
	}
	b.cancelOrderUnlocked(order.ID())
}

func (b *OrderBook) recordDepthUnlocked() {
	metrics.RestingOrdersGaugeSet(len(b.orders))
	metrics.PriceLevelsGaugeSet(types.SideBuy.String(), b.buy.levels.Len())
	metrics.PriceLevelsGaugeSet(types.SideSell.String(), b.sell.levels.Len())
}

func (b *OrderBook) cancelOrderUnlocked(id types.OrderID) {
	entry, ok := b.orders[id]
	if !ok {
		return
	}
	delete(b.orders, id)
	b.side(entry.order.Side()).removeOrder(entry.level, entry.location)

	if b.LogRemovedOrdersDebug {
		b.log.Debug("order removed", logging.Order(entry.order))
	}
}

// matchOrdersUnlocked uncrosses the book: while the best bid is at or above
// the best ask, the heads of both best levels are filled against each other.
func (b *OrderBook) matchOrdersUnlocked() types.Trades {
	var trades types.Trades

	for {
		bids, ok := b.buy.best()
		if !ok {
			break
		}
		asks, ok := b.sell.best()
		if !ok {
			break
		}
		if bids.price < asks.price {
			break
		}

		for !bids.empty() && !asks.empty() {
			bidElem, askElem := bids.front(), asks.front()
			bid, ask := bidElem.Value.(*types.Order), askElem.Value.(*types.Order)

			qty := min(bid.RemainingQuantity(), ask.RemainingQuantity())
			mustFill(bid, qty)
			mustFill(ask, qty)
			bids.reduceVolume(qty)
			asks.reduceVolume(qty)

			trades = append(trades, types.NewTrade(
				types.TradeInfo{OrderID: bid.ID(), Price: bid.Price(), Quantity: qty},
				types.TradeInfo{OrderID: ask.ID(), Price: ask.Price(), Quantity: qty},
			))

			if bid.IsFilled() {
				delete(b.orders, bid.ID())
				bids.removeOrder(bidElem)
			}
			if ask.IsFilled() {
				delete(b.orders, ask.ID())
				asks.removeOrder(askElem)
			}
		}

		b.buy.removeLevelIfEmpty(bids)
		b.sell.removeLevelIfEmpty(asks)
	}

	if len(trades) > 0 {
		metrics.TradeCounterAdd(len(trades))
		if b.log.IsDebug() {
			for _, t := range trades {
				b.log.Debug("trade", logging.Trade(t))
			}
		}
	}
	if b.LogPriceLevelsDebug {
		b.buy.logLevels()
		b.sell.logLevels()
	}
	return trades
}

// mustFill panics as matching never fills more than an order's remaining
// quantity, an error here means the book is corrupted.
func mustFill(o *types.Order, qty types.Quantity) {
	if err := o.Fill(qty); err != nil {
		panic(err)
	}
}
