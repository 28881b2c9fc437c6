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
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram
)

const namespace = "obavs"

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported.
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected.
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	setupOnce sync.Once
	setupErr  error

	proposalCounter   *prometheus.CounterVec
	faultCounter      *prometheus.CounterVec
	submissionCounter *prometheus.CounterVec
	timeoutCounter    prometheus.Counter
	pendingTaskGauge  prometheus.Gauge
	quorumLatency     prometheus.Histogram
	operatorCounter   *prometheus.CounterVec
	stepTime          *prometheus.HistogramVec
	// Call counters for each JSON-RPC method
	apiRequestCallCounter *prometheus.CounterVec
	// Total time counters for each JSON-RPC method
	apiRequestTimeCounter *prometheus.CounterVec
)

// abstract prometheus types.
type instrument int

// combine all possible prometheus options + way to differentiate between regular or vector type.
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

// AddInstrument configure and register new metrics instrument.
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	// apply options
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := prometheus.GaugeOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := prometheus.CounterOpts(opt.opts)
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
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
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

// Gauge returns a prometheus Gauge instrument.
func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

// Counter returns a prometheus Counter instrument.
func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

// CounterVec returns a prometheus CounterVec instrument.
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

// Setup registers every instrument with the default registry. It is safe
// to call it more than once. Until it is called all the update functions
// are no-ops.
func Setup(conf Config) error {
	if !conf.Enabled {
		return nil
	}
	setupOnce.Do(func() {
		setupErr = setupMetrics()
	})
	return setupErr
}

// Handler serves the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func counterVec(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	h, err := AddInstrument(Counter, name, Namespace(namespace), Vectors(labels...), Help(help))
	if err != nil {
		return nil, err
	}
	return h.CounterVec()
}

func setupMetrics() error {
	var err error

	if proposalCounter, err = counterVec(
		"proposals_total", "Signed task responses received by the aggregator, by outcome", "status",
	); err != nil {
		return err
	}
	if faultCounter, err = counterVec(
		"faults_total", "Integrity faults detected on signed task responses", "kind",
	); err != nil {
		return err
	}
	if submissionCounter, err = counterVec(
		"submissions_total", "Aggregate responses handed to the chain", "result",
	); err != nil {
		return err
	}
	if operatorCounter, err = counterVec(
		"operator_tasks_total", "Tasks handled by the operator, by result", "result",
	); err != nil {
		return err
	}
	if apiRequestCallCounter, err = counterVec(
		"request_count_total", "Count of API requests", "apiType", "requestType",
	); err != nil {
		return err
	}
	if apiRequestTimeCounter, err = counterVec(
		"request_time_total", "Total time spent in each API request", "apiType", "requestType",
	); err != nil {
		return err
	}

	h, err := AddInstrument(
		Counter,
		"quorum_timeouts_total",
		Namespace(namespace),
		Help("Tasks evicted before reaching quorum"),
	)
	if err != nil {
		return err
	}
	if timeoutCounter, err = h.Counter(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Gauge,
		"pending_tasks",
		Namespace(namespace),
		Help("Tasks registered with the aggregator and not retired yet"),
	)
	if err != nil {
		return err
	}
	if pendingTaskGauge, err = h.Gauge(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Histogram,
		"quorum_seconds",
		Namespace(namespace),
		Help("Time between the registration of a task and its finalization"),
		Buckets(prometheus.ExponentialBuckets(0.05, 2, 12)),
	)
	if err != nil {
		return err
	}
	if quorumLatency, err = h.Histogram(); err != nil {
		return err
	}

	h, err = AddInstrument(
		Histogram,
		"step_seconds",
		Namespace(namespace),
		Vectors("step"),
		Help("Time spent in each step of the task pipeline"),
		Buckets(prometheus.ExponentialBuckets(0.0005, 2, 14)),
	)
	if err != nil {
		return err
	}
	if stepTime, err = h.HistogramVec(); err != nil {
		return err
	}

	return nil
}

// ProposalCounterInc counts a received proposal by outcome.
func ProposalCounterInc(status string) {
	if proposalCounter == nil {
		return
	}
	proposalCounter.WithLabelValues(status).Inc()
}

// FaultCounterInc counts an integrity fault, conflict or divergence.
func FaultCounterInc(kind string) {
	if faultCounter == nil {
		return
	}
	faultCounter.WithLabelValues(kind).Inc()
}

// SubmissionCounterInc counts an aggregate submission by result.
func SubmissionCounterInc(result string) {
	if submissionCounter == nil {
		return
	}
	submissionCounter.WithLabelValues(result).Inc()
}

// OperatorCounterInc counts an operator round by result.
func OperatorCounterInc(result string) {
	if operatorCounter == nil {
		return
	}
	operatorCounter.WithLabelValues(result).Inc()
}

// QuorumTimeoutInc counts an evicted task.
func QuorumTimeoutInc() {
	if timeoutCounter == nil {
		return
	}
	timeoutCounter.Inc()
}

// PendingTasksAdd moves the pending tasks gauge.
func PendingTasksAdd(n int) {
	if pendingTaskGauge == nil {
		return
	}
	pendingTaskGauge.Add(float64(n))
}

// QuorumLatencyObserve records how long a task took to reach quorum.
func QuorumLatencyObserve(d time.Duration) {
	if quorumLatency == nil {
		return
	}
	quorumLatency.Observe(d.Seconds())
}

// APIRequestAndTimeJSONRPC updates the metrics for JSON-RPC calls.
func APIRequestAndTimeJSONRPC(request string, startTime time.Time) {
	if apiRequestCallCounter == nil || apiRequestTimeCounter == nil {
		return
	}
	apiRequestCallCounter.WithLabelValues("JSONRPC", request).Inc()
	duration := time.Since(startTime).Seconds()
	apiRequestTimeCounter.WithLabelValues("JSONRPC", request).Add(duration)
}
