// Package metrics keeps in-process counters and timings for the bot. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// MetricType represents the type of metric
type MetricType int

const (
	CounterType MetricType = iota
	GaugeType
	TimingType
)

func (mt MetricType) String() string {
	switch mt {
	case CounterType:
		return "counter"
	case GaugeType:
		return "gauge"
	case TimingType:
		return "timing"
	default:
		return "unknown"
	}
}

// MarshalText renders the type by name in JSON snapshots
func (mt MetricType) MarshalText() ([]byte, error) {
	return []byte(mt.String()), nil
}

func (mt *MetricType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "counter":
		*mt = CounterType
	case "gauge":
		*mt = GaugeType
	case "timing":
		*mt = TimingType
	default:
		return errors.Errorf("unknown metric type %q", text)
	}
	return nil
}

// Stats summarises timing observations, in milliseconds
type Stats struct {
	Count float64 `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// Metric represents a single metric measurement
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Stats     *Stats            `json:"stats,omitempty"`
}

// Snapshot represents all metrics at a point in time
type Snapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Metrics   map[string]Metric `json:"metrics"`
}

// Collector stores the latest value of every metric, keyed by name and tags
type Collector struct {
	metrics map[string]Metric
	mu      sync.RWMutex
	log     *logrus.Entry
}

func NewCollector(log *logrus.Entry) *Collector {
	return &Collector{
		metrics: make(map[string]Metric),
		log:     log,
	}
}

// RecordCounter adds value to a counter
func (c *Collector) RecordCounter(name string, value int64, tags map[string]string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(name, tags)
	total := float64(value)
	if existing, ok := c.metrics[key]; ok && existing.Type == CounterType {
		total += existing.Value
	}
	c.metrics[key] = Metric{
		Name:      name,
		Type:      CounterType,
		Value:     total,
		Tags:      copyTags(tags),
		Timestamp: time.Now(),
	}
}

// RecordGauge sets a gauge
func (c *Collector) RecordGauge(name string, value float64, tags map[string]string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics[Key(name, tags)] = Metric{
		Name:      name,
		Type:      GaugeType,
		Value:     value,
		Tags:      copyTags(tags),
		Timestamp: time.Now(),
	}
}

// RecordTiming adds a duration observation
func (c *Collector) RecordTiming(name string, d time.Duration, tags map[string]string) {
	if c == nil {
		return
	}
	ms := float64(d.Nanoseconds()) / 1e6

	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(name, tags)
	stats := Stats{Count: 1, Sum: ms, Min: ms, Max: ms, Avg: ms}
	if existing, ok := c.metrics[key]; ok && existing.Type == TimingType && existing.Stats != nil {
		prev := *existing.Stats
		stats.Count = prev.Count + 1
		stats.Sum = prev.Sum + ms
		stats.Min = min(prev.Min, ms)
		stats.Max = max(prev.Max, ms)
		stats.Avg = stats.Sum / stats.Count
	}
	c.metrics[key] = Metric{
		Name:      name,
		Type:      TimingType,
		Value:     ms,
		Tags:      copyTags(tags),
		Timestamp: time.Now(),
		Stats:     &stats,
	}
	c.log.WithField("metric", key).WithField("ms", ms).Trace("Recorded timing")
}

// Get retrieves a specific metric
func (c *Collector) Get(name string, tags map[string]string) (Metric, bool) {
	if c == nil {
		return Metric{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.metrics[Key(name, tags)]
	return m, ok
}

// Total sums the values of every counter with the given name across tags
func (c *Collector) Total(name string) float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.SumBy(lo.Values(c.metrics), func(m Metric) float64 {
		if m.Name != name || m.Type != CounterType {
			return 0
		}
		return m.Value
	})
}

// Snapshot returns a copy of all current metrics
func (c *Collector) Snapshot() Snapshot {
	snapshot := Snapshot{
		Timestamp: time.Now(),
		Metrics:   make(map[string]Metric),
	}
	if c == nil {
		return snapshot
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, m := range c.metrics {
		snapshot.Metrics[key] = m
	}
	return snapshot
}

// Reset clears all metrics
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]Metric)
}

// Key builds the storage key of a metric: the name followed by its tags in
// sorted order
func Key(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}

	keys := lo.Keys(tags)
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString(",")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(tags[k])
	}
	return b.String()
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

// Names recorded by the bot
const (
	CommandsTotal    = "commands.total"
	CommandsFailed   = "commands.failed"
	CommandsPanicked = "commands.panicked"
	CommandDuration  = "commands.duration"
	EventsTotal      = "events.total"
	SessionsActive   = "sessions.active"
)
