package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"

	"github.com/canviz/candbc/internal/decode"
	"github.com/canviz/candbc/internal/logging"
	"github.com/canviz/candbc/internal/metrics"
)

// InfluxOptions configures the InfluxDB sink.
type InfluxOptions struct {
	Host          string
	Token         string
	Database      string
	BatchSize     int
	FlushInterval time.Duration
}

func (o *InfluxOptions) fillDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = time.Second
	}
}

// InfluxSink batches decoded signals into an InfluxDB v3 database.
type InfluxSink struct {
	client *influxdb3.Client
	opts   InfluxOptions
	batch  []decode.DecodedSignal
	queue  chan decode.DecodedSignal
	cancel context.CancelFunc
	done   chan struct{}
	ticker *time.Ticker
}

var _ Sink = (*InfluxSink)(nil)

// NewInfluxSink creates a client for the configured database.
func NewInfluxSink(opts InfluxOptions) (*InfluxSink, error) {
	opts.fillDefaults()

	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:     opts.Host,
		Token:    opts.Token,
		Database: opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("influxdb client: %w", err)
	}

	return &InfluxSink{
		client: client,
		opts:   opts,
		batch:  make([]decode.DecodedSignal, 0, opts.BatchSize),
		queue:  make(chan decode.DecodedSignal, opts.BatchSize*2),
		done:   make(chan struct{}),
		ticker: time.NewTicker(opts.FlushInterval),
	}, nil
}

// Start launches the batch loop.
func (s *InfluxSink) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

func (s *InfluxSink) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case d := <-s.queue:
			s.batch = append(s.batch, d)
			if len(s.batch) >= s.opts.BatchSize {
				s.flush()
			}
		case <-s.ticker.C:
			s.flush()
		}
	}
}

func (s *InfluxSink) flush() {
	if len(s.batch) == 0 {
		return
	}
	points := make([]*influxdb3.Point, 0, len(s.batch))
	for _, d := range s.batch {
		points = append(points, influxdb3.NewPoint(
			"can_signals",
			map[string]string{
				"name":       d.Name,
				"message_id": fmt.Sprintf("0x%X", d.MessageID),
			},
			map[string]any{
				"physical": d.PhysicalValue,
				"raw":      d.RawValue,
				"unit":     d.Unit,
			},
			d.Timestamp,
		))
	}
	if err := s.client.WritePoints(context.Background(), points); err != nil {
		metrics.IncError(metrics.ErrSinkFlush)
		logging.L().Error("influxdb_write_error", "error", err)
		return
	}
	logging.L().Debug("influxdb_flush", "points", len(points))
	s.batch = s.batch[:0]
}

// Write queues a signal; drops when the queue is full.
func (s *InfluxSink) Write(d decode.DecodedSignal) {
	select {
	case s.queue <- d:
		metrics.IncSinkWrite(metrics.SinkInflux)
	default:
		metrics.IncSinkDrop(metrics.SinkInflux)
	}
}

// Close stops the loop, flushes the remainder, and closes the client.
func (s *InfluxSink) Close() error {
	s.ticker.Stop()
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return s.client.Close()
}
