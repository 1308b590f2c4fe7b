package model

import "time"

// TimeSpec is one requested segment: textual start/end times and the name
// the collaborator will persist the segment under.
type TimeSpec struct {
	Start string
	End   string
	Name  string
}

// PlannedSegment is a TimeSpec resolved against a concrete buffer.
// EndFrame is exclusive.
type PlannedSegment struct {
	Spec       TimeSpec
	Name       string
	StartFrame int
	EndFrame   int
}

// Frames returns the segment length in frames
func (s PlannedSegment) Frames() int {
	return s.EndFrame - s.StartFrame
}

// SplitPlan is a validated, ordered set of segments for one buffer. Plans
// are built by the planner and must not be mutated afterwards.
type SplitPlan struct {
	Segments    []PlannedSegment
	SampleRate  int
	TotalFrames int
}

// Adjacent reports whether segment i ends exactly where segment i+1 starts.
// Crossfades apply only at these shared cuts.
func (p *SplitPlan) Adjacent(i int) bool {
	if i < 0 || i+1 >= len(p.Segments) {
		return false
	}
	return p.Segments[i].EndFrame == p.Segments[i+1].StartFrame
}

// SegmentBuffer is an extracted segment ready for a collaborator to persist
type SegmentBuffer struct {
	AudioBuffer
	Name string
}

// SegmentResult holds the outcome for one segment of a split request.
// Err is set when processing or analysis of this segment failed; sibling
// segments are unaffected.
type SegmentResult struct {
	Name    string
	Buffer  *SegmentBuffer
	Report  *QualityReport
	Verdict *Verdict
	Err     error
	Elapsed time.Duration
}

// SplitResult is the outcome of a whole split request
type SplitResult struct {
	JobID       string
	Segments    []SegmentResult
	Duration    time.Duration
	ProcessedAt time.Time
}

// AnalysisJob is a unit of work for the analysis pool
type AnalysisJob struct {
	ID        string
	Buffer    *AudioBuffer
	Reference *AudioBuffer
	Profile   QualityProfile
}

// AnalysisResult holds the outcome of one pooled analysis job
type AnalysisResult struct {
	JobID   string
	Report  *QualityReport
	Verdict *Verdict
	Err     error
}
