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
	"context"
	"sync"
	"time"

	"code.vegaprotocol.io/orderbook/logging"
	"code.vegaprotocol.io/orderbook/metrics"
	"code.vegaprotocol.io/orderbook/types"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

const prunerNamedLogger = "pruner"

var (
	ErrPrunerAlreadyStarted = errors.New("pruner already started")
	ErrInvalidPruneHour     = errors.New("market close hour must be between 0 and 23")
)

// Book is the part of the order book the pruner works with.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/book_mock.go -package mocks code.vegaprotocol.io/orderbook/matching Book
type Book interface {
	GoodForDayOrderIDs() []types.OrderID
	CancelOrders(ids []types.OrderID)
}

// TimeService provides the current time.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/time_service_mock.go -package mocks code.vegaprotocol.io/orderbook/matching TimeService
type TimeService interface {
	Now() time.Time
}

// SystemTime reads the wall clock.
type SystemTime struct{}

func (SystemTime) Now() time.Time { return time.Now() }

// Pruner cancels every good for day order once a day, at market close.
type Pruner struct {
	log  *logging.Logger
	book Book
	time TimeService

	cfgMu sync.Mutex
	cfg   PruneConfig

	// guards cancel and done, so Start and Stop can race safely
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running *atomic.Bool

	lastPrune *atomic.Time
}

func NewPruner(log *logging.Logger, cfg PruneConfig, book Book, ts TimeService) *Pruner {
	return &Pruner{
		log:       log.Named(prunerNamedLogger),
		book:      book,
		time:      ts,
		cfg:       cfg,
		running:   atomic.NewBool(false),
		lastPrune: atomic.NewTime(time.Time{}),
	}
}

// ReloadConf updates the configuration, it is picked up when the next market
// close is computed.
func (p *Pruner) ReloadConf(cfg PruneConfig) {
	p.cfgMu.Lock()
	p.cfg = cfg
	p.cfgMu.Unlock()
}

func (p *Pruner) config() PruneConfig {
	p.cfgMu.Lock()
	defer p.cfgMu.Unlock()
	return p.cfg
}

// Running reports whether the pruning loop is alive.
func (p *Pruner) Running() bool {
	return p.running.Load()
}

// LastPrune returns the time of the last completed prune, zero if none happened yet.
func (p *Pruner) LastPrune() time.Time {
	return p.lastPrune.Load()
}

// Start launches the pruning loop in its own goroutine.
func (p *Pruner) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrPrunerAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running.Store(true)
	go p.run(ctx, p.done)
	return nil
}

// Stop signals the pruning loop and waits for it to return.
// Stopping a pruner which is not running is a no-op.
func (p *Pruner) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Pruner) run(ctx context.Context, done chan struct{}) {
	defer func() {
		p.running.Store(false)
		close(done)
	}()

	bo := p.newBackOff()
	for {
		wait, err := p.untilNextPrune()
		if err != nil {
			wait = bo.NextBackOff()
			p.log.Error("could not compute next market close",
				logging.Error(err),
				logging.Duration("retry-in", wait),
			)
			metrics.PruneCounterInc("error")
		} else {
			bo.Reset()
			p.log.Info("next good for day prune scheduled", logging.Duration("in", wait))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.log.Info("pruner stopped")
			return
		case <-timer.C:
		}

		// both channels may be ready at once, shutdown wins
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			continue
		}
		p.prune()
	}
}

func (p *Pruner) newBackOff() *backoff.ExponentialBackOff {
	cfg := p.config()
	bo := backoff.NewExponentialBackOff()
	if maxInterval := cfg.RetryMaxInterval.Get(); maxInterval > 0 {
		bo.MaxInterval = maxInterval
	}
	// never give up, the book keeps working while we retry
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

func (p *Pruner) untilNextPrune() (time.Duration, error) {
	cfg := p.config()
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid location %q", cfg.Location)
	}
	now := p.time.Now().In(loc)
	next, err := NextPruneTime(now, cfg.MarketCloseHour)
	if err != nil {
		return 0, err
	}
	return next.Sub(now) + cfg.SafetyMargin.Get(), nil
}

func (p *Pruner) prune() {
	start := time.Now()
	ids := p.book.GoodForDayOrderIDs()
	if len(ids) > 0 {
		p.book.CancelOrders(ids)
	}
	p.lastPrune.Store(p.time.Now())
	metrics.PruneDurationObserve(time.Since(start))
	metrics.PruneCounterInc("ok")
	metrics.PrunedOrdersAdd(len(ids))
	p.log.Info("good for day orders pruned", logging.Int("count", len(ids)))
	if p.log.IsDebug() && len(ids) > 0 {
		p.log.Debug("pruned orders", logging.OrderIDs(ids))
	}
}

// NextPruneTime returns the next occurrence of hour:00:00 in the location of now.
// The boundary of today is used while now is before that hour, tomorrow's otherwise.
func NextPruneTime(now time.Time, hour int) (time.Time, error) {
	if hour < 0 || hour > 23 {
		return time.Time{}, errors.Wrapf(ErrInvalidPruneHour, "got %d", hour)
	}
	day := now
	if now.Hour() >= hour {
		day = now.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location()), nil
}
