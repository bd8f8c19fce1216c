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

package logging

import (
	"time"

	"code.vegaprotocol.io/orderbook/types"

	"go.uber.org/zap"
)

// Error constructs a field that lazily stores err.Error() under the key "error".
func Error(v error) zap.Field {
	return zap.Error(v)
}

func String(key, val string) zap.Field {
	return zap.String(key, val)
}

func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

func Time(key string, val time.Time) zap.Field {
	return zap.Time(key, val)
}

// OrderID constructs a field with the given order identifier.
func OrderID(id types.OrderID) zap.Field {
	return zap.Uint64("order-id", uint64(id))
}

// OrderIDs constructs a field with a batch of order identifiers.
func OrderIDs(ids []types.OrderID) zap.Field {
	raw := make([]uint64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, uint64(id))
	}
	return zap.Uint64s("order-ids", raw)
}

func Side(side types.Side) zap.Field {
	return zap.String("side", side.String())
}

func OrderType(t types.OrderType) zap.Field {
	return zap.String("order-type", t.String())
}

func Price(p types.Price) zap.Field {
	return zap.Int32("price", int32(p))
}

func Quantity(q types.Quantity) zap.Field {
	return zap.Uint32("quantity", uint32(q))
}

// Order constructs a field with the string representation of an order.
func Order(o *types.Order) zap.Field {
	return zap.String("order", o.String())
}

func Trade(t types.Trade) zap.Field {
	return zap.String("trade", t.String())
}
