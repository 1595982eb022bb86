package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/canviz/candbc/internal/decode"
	"github.com/canviz/candbc/internal/logging"
	"github.com/canviz/candbc/internal/metrics"
)

// ClickHouseOptions configures the ClickHouse sink.
type ClickHouseOptions struct {
	Addr          string
	Database      string
	Username      string
	Password      string
	Table         string
	BatchSize     int
	FlushInterval time.Duration
}

func (o *ClickHouseOptions) fillDefaults() {
	if o.Table == "" {
		o.Table = "can_signals"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = time.Second
	}
}

// ClickHouseSink batches decoded signals into a ClickHouse table.
type ClickHouseSink struct {
	conn   driver.Conn
	opts   ClickHouseOptions
	batch  []decode.DecodedSignal
	queue  chan decode.DecodedSignal
	cancel context.CancelFunc
	done   chan struct{}
	ticker *time.Ticker
}

var _ Sink = (*ClickHouseSink)(nil)

// NewClickHouseSink connects, pings, and ensures the target table exists.
func NewClickHouseSink(opts ClickHouseOptions) (*ClickHouseSink, error) {
	opts.fillDefaults()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse connect: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, combineErrors(fmt.Errorf("clickhouse ping: %w", err), conn.Close())
	}
	if err := createTable(conn, opts.Table); err != nil {
		return nil, combineErrors(fmt.Errorf("clickhouse create table: %w", err), conn.Close())
	}

	return &ClickHouseSink{
		conn:   conn,
		opts:   opts,
		batch:  make([]decode.DecodedSignal, 0, opts.BatchSize),
		queue:  make(chan decode.DecodedSignal, opts.BatchSize*2),
		done:   make(chan struct{}),
		ticker: time.NewTicker(opts.FlushInterval),
	}, nil
}

func createTable(conn driver.Conn, table string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			timestamp DateTime64(6),
			message_id UInt32,
			name String,
			physical Float64,
			raw UInt64,
			unit String
		) ENGINE = MergeTree()
		ORDER BY (timestamp, message_id, name)
		PARTITION BY toYYYYMMDD(timestamp)
	`, table)
	return conn.Exec(context.Background(), query)
}

// Start launches the batch loop.
func (s *ClickHouseSink) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

func (s *ClickHouseSink) loop(ctx context.Context) {
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

func (s *ClickHouseSink) flush() {
	if len(s.batch) == 0 {
		return
	}
	batch, err := s.conn.PrepareBatch(context.Background(), fmt.Sprintf("INSERT INTO %s", s.opts.Table))
	if err != nil {
		metrics.IncError(metrics.ErrSinkFlush)
		logging.L().Error("clickhouse_prepare_error", "error", err)
		return
	}
	for _, d := range s.batch {
		if err := batch.Append(d.Timestamp, d.MessageID, d.Name, d.PhysicalValue, d.RawValue, d.Unit); err != nil {
			metrics.IncError(metrics.ErrSinkFlush)
			logging.L().Error("clickhouse_append_error", "error", err)
			return
		}
	}
	if err := batch.Send(); err != nil {
		metrics.IncError(metrics.ErrSinkFlush)
		logging.L().Error("clickhouse_send_error", "error", err)
		return
	}
	logging.L().Debug("clickhouse_flush", "rows", len(s.batch))
	s.batch = s.batch[:0]
}

// Write queues a signal; drops when the queue is full.
func (s *ClickHouseSink) Write(d decode.DecodedSignal) {
	select {
	case s.queue <- d:
		metrics.IncSinkWrite(metrics.SinkClickHouse)
	default:
		metrics.IncSinkDrop(metrics.SinkClickHouse)
	}
}

// Close stops the loop, flushes the remainder, and closes the connection.
func (s *ClickHouseSink) Close() error {
	s.ticker.Stop()
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return s.conn.Close()
}
