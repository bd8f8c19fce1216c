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

package types

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidFill is returned when a fill would take an order below zero remaining.
var ErrInvalidFill = errors.New("fill exceeds remaining quantity")

type (
	// OrderID is the opaque unique key of an order on the book.
	OrderID uint64
	// Price is expressed in ticks.
	Price int32
	// Quantity is expressed in lots.
	Quantity uint32
)

// InvalidPrice is the price carried by market orders until they are priced by the book.
const InvalidPrice Price = math.MinInt32

type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType uint8

const (
	OrderTypeGoodTillCancel OrderType = iota
	OrderTypeGoodForDay
	OrderTypeFillAndKill
	OrderTypeFillOrKill
	OrderTypeMarket
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeGoodTillCancel:
		return "GoodTillCancel"
	case OrderTypeGoodForDay:
		return "GoodForDay"
	case OrderTypeFillAndKill:
		return "FillAndKill"
	case OrderTypeFillOrKill:
		return "FillOrKill"
	case OrderTypeMarket:
		return "Market"
	default:
		return "Unknown"
	}
}

// Order is an order resting on, or submitted to, the book. Identity, side and type
// never change once built; the remaining quantity only moves through Fill.
type Order struct {
	orderType OrderType
	id        OrderID
	side      Side
	price     Price
	initial   Quantity
	remaining Quantity
}

func NewOrder(orderType OrderType, id OrderID, side Side, price Price, quantity Quantity) *Order {
	if orderType == OrderTypeMarket {
		price = InvalidPrice
	}
	return &Order{
		orderType: orderType,
		id:        id,
		side:      side,
		price:     price,
		initial:   quantity,
		remaining: quantity,
	}
}

// NewMarketOrder builds a market order, the book prices it on admission.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) *Order {
	return NewOrder(OrderTypeMarket, id, side, InvalidPrice, quantity)
}

func (o *Order) ID() OrderID { return o.id }
func (o *Order) Side() Side { return o.side }
func (o *Order) Price() Price { return o.price }
func (o *Order) Type() OrderType { return o.orderType }
func (o *Order) InitialQuantity() Quantity { return o.initial }
func (o *Order) RemainingQuantity() Quantity { return o.remaining }
func (o *Order) FilledQuantity() Quantity { return o.initial - o.remaining }
func (o *Order) IsFilled() bool { return o.remaining == 0 }
func (o *Order) IsGoodForDay() bool { return o.orderType == OrderTypeGoodForDay }
func (o *Order) IsFillOrKill() bool { return o.orderType == OrderTypeFillOrKill }

// Fill reduces the remaining quantity by qty.
func (o *Order) Fill(qty Quantity) error {
	if qty > o.remaining {
		return errors.Wrapf(ErrInvalidFill, "order %d: fill %d, remaining %d", o.id, qty, o.remaining)
	}
	o.remaining -= qty
	return nil
}

// ToGoodTillCancel turns a market order into a limit order at price.
// It is a no-op for any other order type.
func (o *Order) ToGoodTillCancel(price Price) {
	if o.orderType != OrderTypeMarket {
		return
	}
	o.orderType = OrderTypeGoodTillCancel
	o.price = price
}

// Clone returns a copy which does not share state with o.
func (o *Order) Clone() *Order {
	cpy := *o
	return &cpy
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"id(%d) type(%s) side(%s) price(%d) initial(%d) remaining(%d)",
		o.id, o.orderType, o.side, o.price, o.initial, o.remaining,
	)
}

// OrderModify is a request to replace a resting order.
type OrderModify struct {
	ID       OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

// ToOrder builds the replacement order, keeping the type of the order it replaces.
func (m OrderModify) ToOrder(orderType OrderType) *Order {
	return NewOrder(orderType, m.ID, m.Side, m.Price, m.Quantity)
}
