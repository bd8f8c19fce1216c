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

	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/types"

	"github.com/google/btree"
)

const btreeDegree = 8

// OrderBookSide represent a side of the book, either Sell or Buy.
// Levels are kept best price first: descending for bids, ascending for asks.
type OrderBookSide struct {
	side   types.Side
	log    *logging.Logger
	levels *btree.BTreeG[*PriceLevel]
}

func newOrderBookSide(log *logging.Logger, side types.Side) *OrderBookSide {
	less := func(a, b *PriceLevel) bool { return a.price < b.price }
	if side == types.SideBuy {
		less = func(a, b *PriceLevel) bool { return a.price > b.price }
	}
	return &OrderBookSide{
		side:   side,
		log:    log,
		levels: btree.NewG(btreeDegree, less),
	}
}

// addOrder appends o to the level at its price, creating the level if needed.
func (s *OrderBookSide) addOrder(o *types.Order) (*PriceLevel, *list.Element) {
	level := s.getPriceLevel(o.Price())
	return level, level.addOrder(o)
}

// removeOrder takes the order out of its level, dropping the level once empty.
func (s *OrderBookSide) removeOrder(level *PriceLevel, e *list.Element) *types.Order {
	o := level.removeOrder(e)
	if level.empty() {
		s.levels.Delete(level)
	}
	return o
}

func (s *OrderBookSide) getPriceLevel(price types.Price) *PriceLevel {
	if level, ok := s.levels.Get(&PriceLevel{price: price}); ok {
		return level
	}
	level := newPriceLevel(price)
	s.levels.ReplaceOrInsert(level)
	return level
}

func (s *OrderBookSide) removeLevelIfEmpty(level *PriceLevel) {
	if level.empty() {
		s.levels.Delete(level)
	}
}

// best returns the level with the most aggressive price.
func (s *OrderBookSide) best() (*PriceLevel, bool) {
	return s.levels.Min()
}

// worst returns the level with the least aggressive price.
func (s *OrderBookSide) worst() (*PriceLevel, bool) {
	return s.levels.Max()
}

func (s *OrderBookSide) empty() bool {
	return s.levels.Len() == 0
}

// crosses reports whether an order of the opposite side at price would match
// against the best level of this side.
func (s *OrderBookSide) crosses(price types.Price) bool {
	best, ok := s.best()
	if !ok {
		return false
	}
	if s.side == types.SideSell {
		return price >= best.price
	}
	return price <= best.price
}

// canFill walks the levels from the best price and returns true as soon as
// quantity can be filled by levels no worse than price.
func (s *OrderBookSide) canFill(price types.Price, quantity types.Quantity) bool {
	var (
		needed = uint64(quantity)
		filled bool
	)
	s.levels.Ascend(func(level *PriceLevel) bool {
		if (s.side == types.SideSell && level.price > price) ||
			(s.side == types.SideBuy && level.price < price) {
			return false
		}
		if needed <= level.volume {
			filled = true
			return false
		}
		needed -= level.volume
		return true
	})
	return filled
}

func (s *OrderBookSide) levelInfos() []types.LevelInfo {
	infos := make([]types.LevelInfo, 0, s.levels.Len())
	s.levels.Ascend(func(level *PriceLevel) bool {
		infos = append(infos, types.LevelInfo{
			Price:    level.price,
			Quantity: level.volume,
		})
		return true
	})
	return infos
}

func (s *OrderBookSide) getLevels() []*PriceLevel {
	levels := make([]*PriceLevel, 0, s.levels.Len())
	s.levels.Ascend(func(level *PriceLevel) bool {
		levels = append(levels, level)
		return true
	})
	return levels
}

func (s *OrderBookSide) logLevels() {
	s.levels.Ascend(func(level *PriceLevel) bool {
		s.log.Debug("price level",
			logging.Side(s.side),
			logging.Price(level.price),
			logging.Uint64("volume", level.volume),
			logging.Int("orders", level.len()),
		)
		return true
	})
}
