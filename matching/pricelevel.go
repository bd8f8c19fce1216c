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

	"code.vegaprotocol.io/orderbook/types"
)

// PriceLevel holds all the orders resting at a given price, in arrival order.
type PriceLevel struct {
	price  types.Price
	volume uint64
	orders *list.List
}

// newPriceLevel returns an empty level at price.
func newPriceLevel(price types.Price) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: list.New(),
	}
}

// addOrder appends o at the back of the queue and returns its position handle.
func (l *PriceLevel) addOrder(o *types.Order) *list.Element {
	l.volume += uint64(o.RemainingQuantity())
	return l.orders.PushBack(o)
}

func (l *PriceLevel) removeOrder(e *list.Element) *types.Order {
	o := l.orders.Remove(e).(*types.Order)
	l.volume -= uint64(o.RemainingQuantity())
	return o
}

func (l *PriceLevel) front() *list.Element {
	return l.orders.Front()
}

// reduceVolume is called after an order of this level was filled in place.
func (l *PriceLevel) reduceVolume(qty types.Quantity) {
	l.volume -= uint64(qty)
}

func (l *PriceLevel) empty() bool {
	return l.orders.Len() == 0
}

func (l *PriceLevel) len() int {
	return l.orders.Len()
}

func (l *PriceLevel) each(f func(o *types.Order)) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		f(e.Value.(*types.Order))
	}
}
