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

// LevelInfo is the aggregated remaining quantity resting at one price. The
// total is wider than Quantity as a level can hold many maximum size orders.
type LevelInfo struct {
	Price    Price
	Quantity uint64
}

// LevelInfos is a point in time depth snapshot of the book. Bids are
// ordered best (highest) first, asks best (lowest) first.
type LevelInfos struct {
	Bids []LevelInfo
	Asks []LevelInfo
}

func NewLevelInfos(bids, asks []LevelInfo) LevelInfos {
	return LevelInfos{Bids: bids, Asks: asks}
}
