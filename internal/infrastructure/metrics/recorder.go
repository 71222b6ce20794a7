package metrics

import (
	"sync"
	"time"

	"sourceverifier/internal/ports"
)

// StageStats summarizes observed durations for one pipeline stage.
type StageStats struct {
	Count     int64         `json:"count"`
	Total     time.Duration `json:"-"`
	AverageMS float64       `json:"averageMs"`
}

// Snapshot is a point-in-time view of recorded metrics.
type Snapshot struct {
	Stages       map[string]StageStats `json:"stages"`
	CacheHits    int64                 `json:"cacheHits"`
	CacheMisses  int64                 `json:"cacheMisses"`
	CacheHitRate float64               `json:"cacheHitRate"`
}

// Recorder is an in-process metrics sink: per-stage duration aggregates and
// cache hit/miss counters.
type Recorder struct {
	mu     sync.Mutex
	stages map[string]*stage
	hits   int64
	misses int64
}

type stage struct {
	count int64
	total time.Duration
}

var _ ports.MetricsSink = (*Recorder)(nil)

// NewRecorder builds an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{stages: make(map[string]*stage)}
}

// ObserveStage records one duration sample for a named stage.
func (r *Recorder) ObserveStage(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stages[name]
	if !ok {
		s = &stage{}
		r.stages[name] = s
	}
	s.count++
	s.total += d
}

// RecordCacheLookup counts one cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

// Snapshot copies the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	stages := make(map[string]StageStats, len(r.stages))
	for name, s := range r.stages {
		stats := StageStats{Count: s.count, Total: s.total}
		if s.count > 0 {
			stats.AverageMS = float64(s.total.Milliseconds()) / float64(s.count)
		}
		stages[name] = stats
	}

	snap := Snapshot{
		Stages:      stages,
		CacheHits:   r.hits,
		CacheMisses: r.misses,
	}
	if total := r.hits + r.misses; total > 0 {
		snap.CacheHitRate = float64(r.hits) / float64(total)
	}
	return snap
}
