// Package logger writes single-line progress logs and tracks fetch metrics for
// covid19-scraping.
//
// Every line has the form
//
//	[2020-04-15 21:00:00+09:00][covid19-scraping:file]: get html file...
//
// The timestamp is always rendered at UTC+9 regardless of the host time zone.
// Optional structured fields are appended as sorted key=value pairs.
//
// Example usage:
//
//	logger.Log("file", "get html file...")
//
//	logger.Warn("file", "retrying", logger.Fields{
//	    "url":     u,
//	    "attempt": 2,
//	})
//
//	logger.IncrCounter("fetch.retries")
//	logger.RecordTiming("fetch.listing", elapsed)
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pfrederiksen/covid19-scraping/internal/config"
)

// AppName is the tag written in front of every category.
const AppName = "covid19-scraping"

// TimeLayout renders the offset as +09:00 once the time is in config.JST.
const TimeLayout = "2006-01-02 15:04:05-07:00"

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	lvl := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[lvl]; !ok {
		return "", fmt.Errorf("unknown log level: %q", s)
	}
	return lvl, nil
}

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger writes category-tagged lines to an output stream.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	output   io.Writer
	clock    clockwork.Clock
}

var defaultLogger = New(LevelInfo, os.Stdout)

// New creates a logger that discards messages below level.
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		output:   output,
		clock:    clockwork.NewRealClock(),
	}
}

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	return defaultLogger
}

// SetClock swaps the time source. Pass nil to restore the real clock.
func (l *Logger) SetClock(c clockwork.Clock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c == nil {
		c = clockwork.NewRealClock()
	}
	l.clock = c
}

// Timestamp returns the current time formatted the way log lines carry it.
func (l *Logger) Timestamp() string {
	return l.clock.Now().In(config.JST).Format(TimeLayout)
}

func (l *Logger) log(level Level, category, message string, fields Fields, err error) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "[%s][%s:%s]: %s", l.clock.Now().In(config.JST).Format(TimeLayout), AppName, category, message)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	fmt.Fprintln(l.output, b.String())
}

// Log writes an informational line with no fields.
func (l *Logger) Log(category, message string) {
	l.log(LevelInfo, category, message, nil, nil)
}

// Debug logs diagnostic detail such as HTTP traces.
func (l *Logger) Debug(category, message string, fields Fields) {
	l.log(LevelDebug, category, message, fields, nil)
}

// Info logs an informational message with optional fields.
func (l *Logger) Info(category, message string, fields Fields) {
	l.log(LevelInfo, category, message, fields, nil)
}

// Warn logs a recoverable problem, e.g. a fetch that will be retried.
func (l *Logger) Warn(category, message string, fields Fields) {
	l.log(LevelWarn, category, message, fields, nil)
}

// Error logs a failure together with the error that caused it.
func (l *Logger) Error(category, message string, fields Fields, err error) {
	l.log(LevelError, category, message, fields, err)
}

// Package-level convenience functions using default logger

func Log(category, message string) {
	defaultLogger.Log(category, message)
}

func Debug(category, message string, fields Fields) {
	defaultLogger.Debug(category, message, fields)
}

func Info(category, message string, fields Fields) {
	defaultLogger.Info(category, message, fields)
}

func Warn(category, message string, fields Fields) {
	defaultLogger.Warn(category, message, fields)
}

func Error(category, message string, fields Fields, err error) {
	defaultLogger.Error(category, message, fields, err)
}

// TimingStats aggregates the durations recorded under one name.
type TimingStats struct {
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Counters map[string]int64
	Timings  map[string]TimingStats
}

// Metrics counts fetch attempts and records how long fetches take.
// All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// RecordTiming records one duration measurement under name.
func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], d)
}

// GetSnapshot returns a deep copy of the counters and aggregated timings.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}

	for name, durations := range m.timings {
		if len(durations) == 0 {
			continue
		}
		st := TimingStats{Count: len(durations), Min: durations[0], Max: durations[0]}
		for _, d := range durations {
			st.Total += d
			if d < st.Min {
				st.Min = d
			}
			if d > st.Max {
				st.Max = d
			}
		}
		st.Average = st.Total / time.Duration(st.Count)
		snap.Timings[name] = st
	}

	return snap
}

func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

func RecordTiming(name string, d time.Duration) {
	defaultMetrics.RecordTiming(name, d)
}

func GetMetricsSnapshot() Snapshot {
	return defaultMetrics.GetSnapshot()
}
