package utils

import (
	"sync"
	"time"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	// Counts delivered and dropped push events per event name
	eventsDelivered map[string]uint64
	eventsDropped   map[string]uint64

	systemStartTime time.Time
}

// MetricsSnapshot is a point-in-time copy of the collector counters.
type MetricsSnapshot struct {
	RequestCount    uint64            `json:"requestCount"`
	ErrorCount      uint64            `json:"errorCount"`
	EventsDelivered map[string]uint64 `json:"eventsDelivered"`
	EventsDropped   map[string]uint64 `json:"eventsDropped"`
	UptimeSeconds   float64           `json:"uptimeSeconds"`
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		eventsDelivered: make(map[string]uint64),
		eventsDropped:   make(map[string]uint64),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.operationTimes[operationName]; !exists {
		mc.operationTimes[operationName] = make([]int64, 0)
	}
	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

func (mc *MetricsCollector) RecordEventDelivered(eventName string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.eventsDelivered[eventName]++
}

func (mc *MetricsCollector) RecordEventDropped(eventName string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.eventsDropped[eventName]++
}

func (mc *MetricsCollector) Snapshot() MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	delivered := make(map[string]uint64, len(mc.eventsDelivered))
	for k, v := range mc.eventsDelivered {
		delivered[k] = v
	}
	dropped := make(map[string]uint64, len(mc.eventsDropped))
	for k, v := range mc.eventsDropped {
		dropped[k] = v
	}

	return MetricsSnapshot{
		RequestCount:    mc.requestCount,
		ErrorCount:      mc.errorCount,
		EventsDelivered: delivered,
		EventsDropped:   dropped,
		UptimeSeconds:   time.Since(mc.systemStartTime).Seconds(),
	}
}
