// Package planner turns textual time ranges into a validated, ordered
// SplitPlan. Planning never touches sample data; every violation across the
// whole request is collected and reported in one shot, before any
// processing starts.
package planner

import (
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/domain/timecode"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
)

// Build resolves the specs against the buffer and validates the result:
// names must be present and unique, ranges must be non-empty and inside the
// buffer, and sorted neighbors must not overlap (sharing a cut exactly is
// legal, that is where crossfades go). The returned plan is ordered by
// start frame; its segment lengths equal round((end-start)*rate) within one
// frame of the requested ranges.
func Build(buf *model.AudioBuffer, specs []model.TimeSpec) (*model.SplitPlan, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, pkgerrors.NewValidationError("segments", 0, "no segments requested")
	}

	total := buf.Frames()
	rate := buf.SampleRate

	var errs error
	segments := make([]model.PlannedSegment, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))

	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			errs = multierr.Append(errs, pkgerrors.NewValidationError("name", spec.Name, "segment name must not be empty"))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = multierr.Append(errs, pkgerrors.NewDuplicateNameError(name))
			continue
		}
		seen[name] = struct{}{}

		startD, err := timecode.Parse(spec.Start)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		endD, err := timecode.Parse(spec.End)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		start := timecode.ToFrame(startD, rate)
		end := timecode.ToFrame(endD, rate)
		if start >= end || end > total {
			errs = multierr.Append(errs, pkgerrors.NewRangeError(name, start, end, total))
			continue
		}

		segments = append(segments, model.PlannedSegment{
			Spec:       spec,
			Name:       name,
			StartFrame: start,
			EndFrame:   end,
		})
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].StartFrame < segments[j].StartFrame
	})
	for i := 1; i < len(segments); i++ {
		if segments[i].StartFrame < segments[i-1].EndFrame {
			errs = multierr.Append(errs, pkgerrors.NewOverlapError(segments[i-1].Name, segments[i].Name))
		}
	}

	if errs != nil {
		return nil, errs
	}

	return &model.SplitPlan{
		Segments:    segments,
		SampleRate:  rate,
		TotalFrames: total,
	}, nil
}

// ParseDescriptors reads compact "START-END:NAME" descriptors into specs,
// collecting the errors of every malformed entry.
func ParseDescriptors(descriptors []string) ([]model.TimeSpec, error) {
	var errs error
	specs := make([]model.TimeSpec, 0, len(descriptors))
	for _, d := range descriptors {
		spec, err := timecode.ParseSegment(d)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	if errs != nil {
		return nil, errs
	}
	return specs, nil
}
