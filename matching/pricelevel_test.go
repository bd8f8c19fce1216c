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

	"code.vegaprotocol.io/orderbook/types"

	"github.com/stretchr/testify/assert"
)

func TestPriceLevel(t *testing.T) {
	t.Run("orders keep their arrival order", testPriceLevelFIFO)
	t.Run("remove by handle from the middle", testPriceLevelRemoveMiddle)
	t.Run("volume follows fills and removals", testPriceLevelVolume)
}

func testPriceLevelFIFO(t *testing.T) {
	l := newPriceLevel(100)
	l.addOrder(gtc(1, types.SideBuy, 100, 1))
	l.addOrder(gtc(2, types.SideBuy, 100, 1))
	l.addOrder(gtc(3, types.SideBuy, 100, 1))

	ids := []types.OrderID{}
	l.each(func(o *types.Order) { ids = append(ids, o.ID()) })
	assert.Equal(t, []types.OrderID{1, 2, 3}, ids)
	assert.Equal(t, types.OrderID(1), l.front().Value.(*types.Order).ID())
}

func testPriceLevelRemoveMiddle(t *testing.T) {
	l := newPriceLevel(100)
	l.addOrder(gtc(1, types.SideBuy, 100, 1))
	e := l.addOrder(gtc(2, types.SideBuy, 100, 1))
	l.addOrder(gtc(3, types.SideBuy, 100, 1))

	o := l.removeOrder(e)
	assert.Equal(t, types.OrderID(2), o.ID())
	assert.Equal(t, 2, l.len())

	ids := []types.OrderID{}
	l.each(func(o *types.Order) { ids = append(ids, o.ID()) })
	assert.Equal(t, []types.OrderID{1, 3}, ids)
}

func testPriceLevelVolume(t *testing.T) {
	l := newPriceLevel(100)
	o1 := gtc(1, types.SideSell, 100, 10)
	e1 := l.addOrder(o1)
	l.addOrder(gtc(2, types.SideSell, 100, 5))
	assert.Equal(t, uint64(15), l.volume)

	assert.NoError(t, o1.Fill(4))
	l.reduceVolume(4)
	assert.Equal(t, uint64(11), l.volume)

	l.removeOrder(e1)
	assert.Equal(t, uint64(5), l.volume)
	assert.False(t, l.empty())
}
