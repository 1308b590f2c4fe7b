package mocks

import (
	"context"
	"sync"

	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/pkg/progress"
)

// MemorySink is a test double for ports.SegmentSink that keeps every
// consumed segment in memory. Safe for concurrent use.
type MemorySink struct {
	ConsumeFunc func(ctx context.Context, seg *model.SegmentBuffer, verdict *model.Verdict) error

	mu       sync.Mutex
	segments []ConsumedSegment
}

// ConsumedSegment is one sink delivery
type ConsumedSegment struct {
	Segment *model.SegmentBuffer
	Verdict *model.Verdict
}

func (m *MemorySink) Consume(ctx context.Context, seg *model.SegmentBuffer, verdict *model.Verdict) error {
	m.mu.Lock()
	m.segments = append(m.segments, ConsumedSegment{Segment: seg, Verdict: verdict})
	m.mu.Unlock()

	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, seg, verdict)
	}
	return nil
}

// Segments returns a copy of everything consumed so far
func (m *MemorySink) Segments() []ConsumedSegment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ConsumedSegment, len(m.segments))
	copy(out, m.segments)
	return out
}

// Names returns the consumed segment names in delivery order
func (m *MemorySink) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.segments))
	for i, s := range m.segments {
		names[i] = s.Segment.Name
	}
	return names
}

// CaptureReporter is a test double for progress.Reporter that records every
// update. Safe for concurrent use.
type CaptureReporter struct {
	mu      sync.Mutex
	updates []progress.Update
}

func (c *CaptureReporter) Report(u progress.Update) {
	c.mu.Lock()
	c.updates = append(c.updates, u)
	c.mu.Unlock()
}

// Updates returns a copy of everything reported so far
func (c *CaptureReporter) Updates() []progress.Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]progress.Update, len(c.updates))
	copy(out, c.updates)
	return out
}

// Stages returns the distinct stages seen, in first-appearance order
func (c *CaptureReporter) Stages() []progress.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[progress.Stage]bool)
	var stages []progress.Stage
	for _, u := range c.updates {
		if !seen[u.Stage] {
			seen[u.Stage] = true
			stages = append(stages, u.Stage)
		}
	}
	return stages
}
