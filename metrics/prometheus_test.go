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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Setup(reg))

	OrderCounterInc("GoodTillCancel", "accepted")
	OrderCounterInc("GoodTillCancel", "accepted")
	OrderCounterInc("FillOrKill", "rejected")
	assert.Equal(t, 2.0, testutil.ToFloat64(orderCounter.WithLabelValues("GoodTillCancel", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(orderCounter.WithLabelValues("FillOrKill", "rejected")))

	TradeCounterAdd(3)
	TradeCounterAdd(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(tradeCounter))

	RestingOrdersGaugeSet(12)
	assert.Equal(t, 12.0, testutil.ToFloat64(restingOrdersGauge))

	PruneCounterInc("ok")
	PrunedOrdersAdd(4)
	assert.Equal(t, 1.0, testutil.ToFloat64(pruneCounter.WithLabelValues("ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(prunedOrders))

	PriceLevelsGaugeSet("Buy", 3)
	PriceLevelsGaugeSet("Sell", 1)
	assert.Equal(t, 3.0, testutil.ToFloat64(priceLevelsGauge.WithLabelValues("Buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(priceLevelsGauge.WithLabelValues("Sell")))

	TradesPerSubmissionObserve(0, "AddOrder")
	TradesPerSubmissionObserve(3, "AddOrder")
	TradesPerSubmissionObserve(1, "MatchOrder")
	assert.Equal(t, 2, testutil.CollectAndCount(tradesPerOrder))
	assertHistogram(t, reg, "orderbook_trades_per_submission", map[string]string{"fn": "AddOrder"}, 2, 3)

	PruneDurationObserve(2 * time.Millisecond)
	assertHistogram(t, reg, "orderbook_prune_duration_seconds", nil, 1, 0.002)

	EngineTimeCounterAdd("orderbook", "AddOrder")()
	assert.Equal(t, 1, testutil.CollectAndCount(engineTime))

	// registering twice on the same registry fails
	assert.Error(t, Setup(reg))
}

func TestAddInstrumentTypeMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := AddInstrument(reg, Gauge, "some_gauge", Namespace("test"))
	require.NoError(t, err)

	_, err = h.Counter()
	assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)
	g, err := h.Gauge()
	assert.NoError(t, err)
	assert.NotNil(t, g)

	_, err = AddInstrument(reg, instrument(42), "nope")
	assert.ErrorIs(t, err, ErrInstrumentNotSupported)
}

// assertHistogram checks the sample count and sum of the histogram series
// matching labels.
func assertHistogram(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string, count uint64, sum float64) {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v != lp.GetValue() {
					continue metrics
				}
			}
			assert.Equal(t, count, m.GetHistogram().GetSampleCount())
			assert.InDelta(t, sum, m.GetHistogram().GetSampleSum(), 1e-9)
			return
		}
	}
	t.Fatalf("histogram %s not found", name)
}
