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
	"fmt"
	"net/http"
	"time"

	"code.vegaprotocol.io/orderbook/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Gauge instrument = iota
	Counter
	Histogram
)

const namespace = "orderbook"

var (
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	engineTime         *prometheus.CounterVec
	orderCounter       *prometheus.CounterVec
	tradeCounter       prometheus.Counter
	restingOrdersGauge prometheus.Gauge
	priceLevelsGauge   *prometheus.GaugeVec
	tradesPerOrder     *prometheus.HistogramVec
	pruneCounter       *prometheus.CounterVec
	prunedOrders       prometheus.Counter
	pruneDuration      prometheus.Histogram
)

// abstract prometheus types
type instrument int

// combine all possible prometheus options + way to differentiate between regular or vector type
type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument.
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace.
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Buckets - specific to histogram type.
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configures and registers a new metrics instrument.
func AddInstrument(reg prometheus.Registerer, t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := opt.gauge()
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := opt.counter()
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := reg.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Start registers the order book instruments on the default registry and, if
// enabled, serves them over http.
func Start(log *logging.Logger, conf Config) {
	if !conf.Enabled {
		return
	}
	if err := Setup(prometheus.DefaultRegisterer); err != nil {
		log.Panic("could not set up metrics", logging.Error(err))
	}
	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", conf.Port)
		log.Info("starting metrics server", logging.String("address", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server stopped", logging.Error(err))
		}
	}()
}

func (i instrumentOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts(i.opts)
}

func (i instrumentOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts(i.opts)
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) Histogram() (prometheus.Histogram, error) {
	if m.histogram == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogram, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

// Setup creates all the order book instruments and registers them on reg.
func Setup(reg prometheus.Registerer) error {
	h, err := AddInstrument(
		reg,
		Counter,
		"engine_seconds_total",
		Namespace(namespace),
		Vectors("engine", "fn"),
		Help("Time spent in the order book functions"),
	)
	if err != nil {
		return err
	}
	est, err := h.CounterVec()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"orders_total",
		Namespace(namespace),
		Vectors("type", "result"),
		Help("Number of orders submitted to the book, by type and admission result"),
	)
	if err != nil {
		return err
	}
	ot, err := h.CounterVec()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"trades_total",
		Namespace(namespace),
		Help("Number of trades generated by the matching algorithm"),
	)
	if err != nil {
		return err
	}
	tc, err := h.Counter()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Gauge,
		"resting_orders",
		Namespace(namespace),
		Help("Number of orders currently resting on the book"),
	)
	if err != nil {
		return err
	}
	rg, err := h.Gauge()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Gauge,
		"price_levels",
		Namespace(namespace),
		Vectors("side"),
		Help("Number of price levels on each side of the book"),
	)
	if err != nil {
		return err
	}
	pl, err := h.GaugeVec()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Histogram,
		"trades_per_submission",
		Namespace(namespace),
		Vectors("fn"),
		Buckets([]float64{0, 1, 2, 5, 10, 25, 50, 100}),
		Help("Number of trades generated by a single order submission or modification"),
	)
	if err != nil {
		return err
	}
	tpo, err := h.HistogramVec()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"prune_runs_total",
		Namespace(namespace),
		Vectors("result"),
		Help("Number of good for day prune iterations, by result"),
	)
	if err != nil {
		return err
	}
	pc, err := h.CounterVec()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Counter,
		"pruned_orders_total",
		Namespace(namespace),
		Help("Number of good for day orders expired by the pruner"),
	)
	if err != nil {
		return err
	}
	po, err := h.Counter()
	if err != nil {
		return err
	}

	h, err = AddInstrument(
		reg,
		Histogram,
		"prune_duration_seconds",
		Namespace(namespace),
		Buckets(prometheus.ExponentialBuckets(0.0001, 4, 8)),
		Help("Time taken to cancel the good for day orders at market close"),
	)
	if err != nil {
		return err
	}
	pd, err := h.Histogram()
	if err != nil {
		return err
	}

	engineTime = est
	orderCounter = ot
	tradeCounter = tc
	restingOrdersGauge = rg
	priceLevelsGauge = pl
	tradesPerOrder = tpo
	pruneCounter = pc
	prunedOrders = po
	pruneDuration = pd
	return nil
}

// EngineTimeCounterAdd is used to time a function. Call it, using defer, at the start of the
// function to be timed.
//
// e.g.
//
//	defer metrics.EngineTimeCounterAdd("x", "y")()
//
// Note the extra "()" at the end of the above line - the returned function must be called.
func EngineTimeCounterAdd(labelValues ...string) func() {
	start := time.Now()
	return func() {
		// Check that the metric has been set up. (Testing does not use metrics.)
		if engineTime == nil {
			return
		}
		engineTime.WithLabelValues(labelValues...).Add(time.Since(start).Seconds())
	}
}

func OrderCounterInc(labelValues ...string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(labelValues...).Inc()
}

func TradeCounterAdd(n int) {
	if tradeCounter == nil || n == 0 {
		return
	}
	tradeCounter.Add(float64(n))
}

func RestingOrdersGaugeSet(n int) {
	if restingOrdersGauge == nil {
		return
	}
	restingOrdersGauge.Set(float64(n))
}

func PruneCounterInc(labelValues ...string) {
	if pruneCounter == nil {
		return
	}
	pruneCounter.WithLabelValues(labelValues...).Inc()
}

func PrunedOrdersAdd(n int) {
	if prunedOrders == nil || n == 0 {
		return
	}
	prunedOrders.Add(float64(n))
}

func PriceLevelsGaugeSet(side string, n int) {
	if priceLevelsGauge == nil {
		return
	}
	priceLevelsGauge.WithLabelValues(side).Set(float64(n))
}

// TradesPerSubmissionObserve records how many trades a single call generated.
func TradesPerSubmissionObserve(n int, labelValues ...string) {
	if tradesPerOrder == nil {
		return
	}
	tradesPerOrder.WithLabelValues(labelValues...).Observe(float64(n))
}

func PruneDurationObserve(d time.Duration) {
	if pruneDuration == nil {
		return
	}
	pruneDuration.Observe(d.Seconds())
}
