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

import "fmt"

// TradeInfo describes one side of a match.
type TradeInfo struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade pairs the buy side and the sell side fills of a single match.
type Trade struct {
	Bid TradeInfo
	Ask TradeInfo
}

func NewTrade(bid, ask TradeInfo) Trade {
	return Trade{Bid: bid, Ask: ask}
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"bid(id=%d price=%d qty=%d) ask(id=%d price=%d qty=%d)",
		t.Bid.OrderID, t.Bid.Price, t.Bid.Quantity,
		t.Ask.OrderID, t.Ask.Price, t.Ask.Quantity,
	)
}

type Trades []Trade
