package metrics

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Collector counts provider calls, fallbacks and cache activity so operators
// can see from logs how often the system is serving synthetic data.
type Collector interface {
	IncrementCounter(name string, labels map[string]string)
}

// SimpleCollector is a mutex-guarded in-memory Collector.
type SimpleCollector struct {
	mu       sync.Mutex
	counters map[string]int64
	logger   *zap.Logger
}

func NewSimpleCollector(logger *zap.Logger) *SimpleCollector {
	return &SimpleCollector{
		counters: make(map[string]int64),
		logger:   logger,
	}
}

func (c *SimpleCollector) IncrementCounter(name string, labels map[string]string) {
	key := buildKey(name, labels)

	c.mu.Lock()
	c.counters[key]++
	value := c.counters[key]
	c.mu.Unlock()

	c.logger.Debug("counter incremented",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Int64("value", value))
}

// Counter returns the current value for a metric/label combination.
func (c *SimpleCollector) Counter(name string, labels map[string]string) int64 {
	key := buildKey(name, labels)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key]
}

func buildKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("_")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(labels[k])
	}
	return b.String()
}

// Nop is a Collector that discards everything, for tests.
type Nop struct{}

func (Nop) IncrementCounter(string, map[string]string) {}
