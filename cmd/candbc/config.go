package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	mode            string
	dbcPath         string
	logPath         string
	outPath         string
	chartPath       string
	sinkKind        string
	chAddr          string
	chDatabase      string
	chUser          string
	chPassword      string
	influxHost      string
	influxToken     string
	influxDatabase  string
	batchSize       int
	flushInterval   time.Duration
	speed           float64
	loop            bool
	rate            time.Duration
	count           int
	logFormat       string
	logLevel        string
	metricsAddr     string
	logMetricsEvery time.Duration
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	mode := flag.String("mode", "decode", "Run mode: decode|play|validate|gen")
	dbcPath := flag.String("dbc", "", "DBC file path")
	logPath := flag.String("log", "", "CSV frame log path")
	outPath := flag.String("out", "", "Output path (gen: CSV log; validate: re-serialized DBC)")
	chartPath := flag.String("chart", "", "If set, render decoded signals to this PNG path")
	sinkKind := flag.String("sink", "log", "Decoded signal sink: log|clickhouse|influx|none")
	chAddr := flag.String("clickhouse-addr", "localhost:9000", "ClickHouse native address")
	chDatabase := flag.String("clickhouse-database", "can", "ClickHouse database")
	chUser := flag.String("clickhouse-user", "default", "ClickHouse username")
	chPassword := flag.String("clickhouse-password", "", "ClickHouse password")
	influxHost := flag.String("influx-host", "http://localhost:8181", "InfluxDB host URL")
	influxToken := flag.String("influx-token", "", "InfluxDB token")
	influxDatabase := flag.String("influx-database", "can", "InfluxDB database")
	batchSize := flag.Int("batch-size", 1000, "Sink batch size (rows per flush)")
	flushInterval := flag.Duration("flush-interval", time.Second, "Sink flush interval")
	speed := flag.Float64("speed", 1.0, "Playback speed multiplier (0.1-10)")
	loop := flag.Bool("loop", false, "Loop playback at end of log")
	rate := flag.Duration("rate", 10*time.Millisecond, "Synthetic frame interval (gen mode)")
	count := flag.Int("count", 1000, "Synthetic frames to generate (0 = until interrupted)")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	logMetricsEvery := flag.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters (for non-Prometheus setups)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Track which flags were explicitly set to give them precedence over env.
	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })
	cfg.mode = *mode
	cfg.dbcPath = *dbcPath
	cfg.logPath = *logPath
	cfg.outPath = *outPath
	cfg.chartPath = *chartPath
	cfg.sinkKind = *sinkKind
	cfg.chAddr = *chAddr
	cfg.chDatabase = *chDatabase
	cfg.chUser = *chUser
	cfg.chPassword = *chPassword
	cfg.influxHost = *influxHost
	cfg.influxToken = *influxToken
	cfg.influxDatabase = *influxDatabase
	cfg.batchSize = *batchSize
	cfg.flushInterval = *flushInterval
	cfg.speed = *speed
	cfg.loop = *loop
	cfg.rate = *rate
	cfg.count = *count
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.logMetricsEvery = *logMetricsEvery

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to open files or connections – only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.mode {
	case "decode", "play", "validate", "gen":
	default:
		return fmt.Errorf("invalid mode: %s", c.mode)
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	switch c.sinkKind {
	case "log", "clickhouse", "influx", "none":
	default:
		return fmt.Errorf("invalid sink: %s", c.sinkKind)
	}
	if c.batchSize <= 0 {
		return fmt.Errorf("batch-size must be > 0 (got %d)", c.batchSize)
	}
	if c.flushInterval <= 0 {
		return fmt.Errorf("flush-interval must be > 0")
	}
	if c.speed < 0.1 || c.speed > 10 {
		return fmt.Errorf("speed must be within 0.1-10 (got %g)", c.speed)
	}
	if c.rate <= 0 {
		return fmt.Errorf("rate must be > 0")
	}
	if c.count < 0 {
		return fmt.Errorf("count must be >= 0")
	}
	switch c.mode {
	case "decode", "play":
		if c.dbcPath == "" {
			return fmt.Errorf("mode %s requires -dbc", c.mode)
		}
		if c.logPath == "" {
			return fmt.Errorf("mode %s requires -log", c.mode)
		}
	case "validate":
		if c.dbcPath == "" {
			return errors.New("mode validate requires -dbc")
		}
	case "gen":
		if c.outPath == "" {
			return errors.New("mode gen requires -out")
		}
	}
	return nil
}

// applyEnvOverrides maps CANDBC_* environment variables to config fields
// unless a corresponding flag was explicitly set. Boolean & numeric parsing is lax:
// empty values ignored. Duration accepts Go time.ParseDuration format.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	// Only apply if NOT in set (flag wins).
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	str := func(flagName, env string, dst *string) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			*dst = v
		}
	}
	str("mode", "CANDBC_MODE", &c.mode)
	str("dbc", "CANDBC_DBC", &c.dbcPath)
	str("log", "CANDBC_LOG", &c.logPath)
	str("out", "CANDBC_OUT", &c.outPath)
	str("chart", "CANDBC_CHART", &c.chartPath)
	str("sink", "CANDBC_SINK", &c.sinkKind)
	str("clickhouse-addr", "CANDBC_CLICKHOUSE_ADDR", &c.chAddr)
	str("clickhouse-database", "CANDBC_CLICKHOUSE_DATABASE", &c.chDatabase)
	str("clickhouse-user", "CANDBC_CLICKHOUSE_USER", &c.chUser)
	str("clickhouse-password", "CANDBC_CLICKHOUSE_PASSWORD", &c.chPassword)
	str("influx-host", "CANDBC_INFLUX_HOST", &c.influxHost)
	str("influx-token", "CANDBC_INFLUX_TOKEN", &c.influxToken)
	str("influx-database", "CANDBC_INFLUX_DATABASE", &c.influxDatabase)
	str("log-format", "CANDBC_LOG_FORMAT", &c.logFormat)
	str("log-level", "CANDBC_LOG_LEVEL", &c.logLevel)
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("CANDBC_METRICS"); ok {
			c.metricsAddr = v
		}
	}
	if _, ok := set["batch-size"]; !ok {
		if v, ok := get("CANDBC_BATCH_SIZE"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.batchSize = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid CANDBC_BATCH_SIZE: %w", err)
			}
		}
	}
	if _, ok := set["flush-interval"]; !ok {
		if v, ok := get("CANDBC_FLUSH_INTERVAL"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.flushInterval = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid CANDBC_FLUSH_INTERVAL: %w", err)
			}
		}
	}
	if _, ok := set["speed"]; !ok {
		if v, ok := get("CANDBC_SPEED"); ok && v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.speed = f
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid CANDBC_SPEED: %w", err)
			}
		}
	}
	if _, ok := set["loop"]; !ok {
		if v, ok := get("CANDBC_LOOP"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.loop = true
			case "0", "false", "no", "off":
				c.loop = false
			}
		}
	}
	if _, ok := set["rate"]; !ok {
		if v, ok := get("CANDBC_RATE"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.rate = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid CANDBC_RATE: %w", err)
			}
		}
	}
	if _, ok := set["count"]; !ok {
		if v, ok := get("CANDBC_COUNT"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				c.count = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid CANDBC_COUNT: %w", err)
			}
		}
	}
	if _, ok := set["log-metrics-interval"]; !ok {
		if v, ok := get("CANDBC_LOG_METRICS_INTERVAL"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d >= 0 {
				c.logMetricsEvery = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid CANDBC_LOG_METRICS_INTERVAL: %w", err)
			}
		}
	}
	return firstErr
}
