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

package logging_test

import (
	"testing"

	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logging.Level{
		"debug":   logging.DebugLevel,
		"Info":    logging.InfoLevel,
		"warning": logging.WarnLevel,
		"WARN":    logging.WarnLevel,
		"error":   logging.ErrorLevel,
		"panic":   logging.PanicLevel,
		"fatal":   logging.FatalLevel,
	}
	for in, expected := range cases {
		lvl, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, lvl, in)
	}

	_, err := logging.ParseLevel("chatty")
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestLevelText(t *testing.T) {
	txt, err := logging.WarnLevel.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(txt))

	var lvl logging.Level
	require.NoError(t, lvl.UnmarshalFlag("debug"))
	assert.Equal(t, logging.DebugLevel, lvl)
	assert.Error(t, lvl.UnmarshalText([]byte("loud")))
}

func TestNamedLoggers(t *testing.T) {
	t.Run("named logger has a hierarchical name", testNamedHierarchy)
	t.Run("named logger level is independent", testNamedLevelIndependent)
	t.Run("fields are attached to the entries", testFields)
}

func testNamedHierarchy(t *testing.T) {
	log := logging.NewTestLogger()
	child := log.Named("orderbook").Named("pruner")
	assert.Equal(t, "orderbook.pruner", child.GetName())
}

func testNamedLevelIndependent(t *testing.T) {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()
	assert.Equal(t, logging.InfoLevel, log.GetLevel())

	child := log.Named("orderbook")
	child.SetLevel(logging.DebugLevel)
	assert.True(t, child.IsDebug())
	assert.False(t, log.IsDebug())
	assert.Equal(t, logging.InfoLevel, log.GetLevel())
}

func testFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := logging.NewDevLoggerConfig()
	log := logging.New(core, &cfg)

	order := types.NewOrder(types.OrderTypeGoodForDay, 12, types.SideSell, 101, 3)
	log.Info("order added",
		logging.OrderID(order.ID()),
		logging.Side(order.Side()),
		logging.Price(order.Price()),
		logging.Quantity(order.RemainingQuantity()),
		logging.OrderIDs([]types.OrderID{1, 2}),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, uint64(12), fields["order-id"])
	assert.Equal(t, "Sell", fields["side"])
	assert.Equal(t, int32(101), fields["price"])
	assert.Equal(t, uint32(3), fields["quantity"])
	assert.Equal(t, []interface{}{uint64(1), uint64(2)}, fields["order-ids"])
}
