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

package matching_test

import (
	"testing"
	"time"

	"code.vegaprotocol.io/orderbook/config/encoding"
	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/matching"
	"code.vegaprotocol.io/orderbook/matching/mocks"
	"code.vegaprotocol.io/orderbook/types"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPruner struct {
	*matching.Pruner
	ctrl *gomock.Controller
	book *mocks.MockBook
	time *mocks.MockTimeService
}

func getTestPruner(t *testing.T, cfg matching.PruneConfig) *testPruner {
	t.Helper()
	ctrl := gomock.NewController(t)
	book := mocks.NewMockBook(ctrl)
	ts := mocks.NewMockTimeService(ctrl)
	return &testPruner{
		Pruner: matching.NewPruner(logging.NewTestLogger(), cfg, book, ts),
		ctrl:   ctrl,
		book:   book,
		time:   ts,
	}
}

// pruneConfig fires almost immediately when the clock is set just before the close.
func pruneConfig() matching.PruneConfig {
	cfg := matching.NewDefaultPruneConfig()
	cfg.Location = "UTC"
	cfg.MarketCloseHour = 16
	cfg.SafetyMargin = encoding.Duration{Duration: 0}
	cfg.RetryMaxInterval = encoding.Duration{Duration: time.Second}
	return cfg
}

var justBeforeClose = time.Date(2024, time.March, 12, 15, 59, 59, 950*int(time.Millisecond), time.UTC)

func TestNextPruneTime(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	cases := []struct {
		name     string
		now      time.Time
		hour     int
		expected time.Time
	}{
		{
			name:     "before the close, same day",
			now:      time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC),
			hour:     16,
			expected: time.Date(2024, time.March, 12, 16, 0, 0, 0, time.UTC),
		},
		{
			name:     "exactly at the close, next day",
			now:      time.Date(2024, time.March, 12, 16, 0, 0, 0, time.UTC),
			hour:     16,
			expected: time.Date(2024, time.March, 13, 16, 0, 0, 0, time.UTC),
		},
		{
			name:     "after the close, next day",
			now:      time.Date(2024, time.March, 12, 23, 59, 0, 0, time.UTC),
			hour:     16,
			expected: time.Date(2024, time.March, 13, 16, 0, 0, 0, time.UTC),
		},
		{
			name:     "midnight close",
			now:      time.Date(2024, time.March, 12, 0, 0, 1, 0, time.UTC),
			hour:     0,
			expected: time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "end of year",
			now:      time.Date(2024, time.December, 31, 17, 0, 0, 0, time.UTC),
			hour:     16,
			expected: time.Date(2025, time.January, 1, 16, 0, 0, 0, time.UTC),
		},
		{
			name:     "keeps the location of now",
			now:      time.Date(2024, time.March, 12, 9, 30, 0, 0, paris),
			hour:     17,
			expected: time.Date(2024, time.March, 12, 17, 0, 0, 0, paris),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := matching.NextPruneTime(tc.now, tc.hour)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(next), "expected %v, got %v", tc.expected, next)
			assert.True(t, next.After(tc.now))
		})
	}
}

func TestNextPruneTimeInvalidHour(t *testing.T) {
	for _, hour := range []int{-1, 24, 100} {
		_, err := matching.NextPruneTime(time.Now(), hour)
		assert.ErrorIs(t, err, matching.ErrInvalidPruneHour)
	}
}

func TestPruner(t *testing.T) {
	t.Run("start twice fails", testPrunerStartTwice)
	t.Run("stop is prompt and idempotent", testPrunerStop)
	t.Run("good for day orders are cancelled at the close", testPrunerCancelsAtClose)
	t.Run("nothing is cancelled when no good for day order rests", testPrunerNothingToCancel)
	t.Run("invalid location is retried until fixed", testPrunerRetriesInvalidLocation)
}

func testPrunerStartTwice(t *testing.T) {
	p := getTestPruner(t, pruneConfig())
	p.time.EXPECT().Now().AnyTimes().Return(time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC))
	defer p.Stop()

	require.NoError(t, p.Start())
	assert.ErrorIs(t, p.Start(), matching.ErrPrunerAlreadyStarted)
	assert.True(t, p.Running())

	p.Stop()
	require.NoError(t, p.Start())
}

func testPrunerStop(t *testing.T) {
	p := getTestPruner(t, pruneConfig())
	// next close is hours away
	p.time.EXPECT().Now().AnyTimes().Return(time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC))

	// stopping a pruner never started is fine
	p.Stop()

	require.NoError(t, p.Start())
	start := time.Now()
	p.Stop()
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, p.Running())
	assert.True(t, p.LastPrune().IsZero())

	p.Stop()
}

func testPrunerCancelsAtClose(t *testing.T) {
	p := getTestPruner(t, pruneConfig())
	ids := []types.OrderID{1, 2, 3}
	pruned := make(chan struct{}, 1)

	p.time.EXPECT().Now().AnyTimes().Return(justBeforeClose)
	p.book.EXPECT().GoodForDayOrderIDs().MinTimes(1).Return(ids)
	p.book.EXPECT().CancelOrders(ids).MinTimes(1).Do(func(_ []types.OrderID) {
		select {
		case pruned <- struct{}{}:
		default:
		}
	})

	require.NoError(t, p.Start())
	defer p.Stop()

	select {
	case <-pruned:
	case <-time.After(5 * time.Second):
		t.Fatal("good for day orders were not pruned")
	}
	assert.Eventually(t, func() bool {
		return p.LastPrune().Equal(justBeforeClose)
	}, time.Second, 10*time.Millisecond)
}

func testPrunerNothingToCancel(t *testing.T) {
	p := getTestPruner(t, pruneConfig())
	checked := make(chan struct{}, 1)

	p.time.EXPECT().Now().AnyTimes().Return(justBeforeClose)
	p.book.EXPECT().GoodForDayOrderIDs().MinTimes(1).DoAndReturn(func() []types.OrderID {
		select {
		case checked <- struct{}{}:
		default:
		}
		return []types.OrderID{}
	})
	// CancelOrders is not expected, gomock fails the test if it is called

	require.NoError(t, p.Start())
	defer p.Stop()

	select {
	case <-checked:
	case <-time.After(5 * time.Second):
		t.Fatal("pruner never ran")
	}
}

func testPrunerRetriesInvalidLocation(t *testing.T) {
	cfg := pruneConfig()
	cfg.Location = "Nowhere/Invalid"
	p := getTestPruner(t, cfg)
	pruned := make(chan struct{}, 1)

	p.time.EXPECT().Now().AnyTimes().Return(justBeforeClose)
	p.book.EXPECT().GoodForDayOrderIDs().AnyTimes().Return([]types.OrderID{7})
	p.book.EXPECT().CancelOrders([]types.OrderID{7}).AnyTimes().Do(func(_ []types.OrderID) {
		select {
		case pruned <- struct{}{}:
		default:
		}
	})

	require.NoError(t, p.Start())
	defer p.Stop()

	// the loop survives the error and keeps retrying
	time.Sleep(100 * time.Millisecond)
	assert.True(t, p.Running())
	assert.True(t, p.LastPrune().IsZero())

	p.ReloadConf(pruneConfig())
	select {
	case <-pruned:
	case <-time.After(5 * time.Second):
		t.Fatal("pruner did not recover from the invalid location")
	}
}

func TestOrderBookPrunesGoodForDayOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	ts := mocks.NewMockTimeService(ctrl)
	ts.EXPECT().Now().AnyTimes().Return(justBeforeClose)

	cfg := matching.NewDefaultConfig()
	cfg.Prune = pruneConfig()
	// keep the pruner off until the book is loaded
	cfg.Prune.Enabled = false
	book := matching.NewOrderBookWithTimeService(logging.NewTestLogger(), cfg, ts)
	defer book.Close()

	book.AddOrder(types.NewOrder(types.OrderTypeGoodForDay, 1, types.SideBuy, 99, 5))
	book.AddOrder(types.NewOrder(types.OrderTypeGoodTillCancel, 2, types.SideBuy, 98, 5))
	book.AddOrder(types.NewOrder(types.OrderTypeGoodForDay, 3, types.SideSell, 101, 5))
	require.Equal(t, 3, book.Size())

	cfg.Prune.Enabled = true
	book.ReloadConf(cfg)

	assert.Eventually(t, func() bool {
		return book.Size() == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, ok := book.GetOrder(2)
	assert.True(t, ok)
	assert.Empty(t, book.GoodForDayOrderIDs())

	// disabling the pruner stops the loop
	cfg.Prune.Enabled = false
	book.ReloadConf(cfg)
	book.AddOrder(types.NewOrder(types.OrderTypeGoodForDay, 4, types.SideBuy, 97, 5))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, book.Size())
}
