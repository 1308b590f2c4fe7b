// Package timecode parses and formats the textual time expressions split
// requests are written in: "SS", "MM:SS" and "HH:MM:SS", each with an
// optional fractional part ("90.5", "1:30.25", "01:02:03.004").
package timecode

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Skryldev/split-lab/domain/model"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
)

// Parse converts a time expression to a duration. The last field may carry
// a fraction with at least millisecond precision (kept to the nanosecond).
// Negative values, blank input, stray separators and out-of-range fields
// (seconds or minutes >= 60 under a higher field) are rejected.
func Parse(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, pkgerrors.NewTimeFormatError(s, "empty time expression")
	}

	fields := strings.Split(trimmed, ":")
	if len(fields) > 3 {
		return 0, pkgerrors.NewTimeFormatError(s, "more than three fields")
	}

	// Only the trailing seconds field may carry a fraction.
	secField := fields[len(fields)-1]
	intPart := secField
	fracNanos := int64(0)
	if dot := strings.IndexByte(secField, '.'); dot >= 0 {
		intPart = secField[:dot]
		frac := secField[dot+1:]
		if frac == "" {
			return 0, pkgerrors.NewTimeFormatError(s, "empty fractional part")
		}
		n, err := parseFraction(frac)
		if err != nil {
			return 0, pkgerrors.NewTimeFormatError(s, "non-numeric fractional part")
		}
		fracNanos = n
	}

	values := make([]int64, 0, 3)
	for i, f := range fields {
		text := f
		if i == len(fields)-1 {
			text = intPart
		}
		v, err := parseField(text)
		if err != nil {
			return 0, pkgerrors.NewTimeFormatError(s, err.Error())
		}
		values = append(values, v)
	}

	// Lower fields are capped at 59 whenever a higher field is present;
	// the leading field is unbounded ("90" and "90:00" are both legal).
	for i := 1; i < len(values); i++ {
		if values[i] >= 60 {
			return 0, pkgerrors.NewTimeFormatError(s, "field value must be below 60")
		}
	}

	var seconds int64
	switch len(values) {
	case 1:
		seconds = values[0]
	case 2:
		seconds = values[0]*60 + values[1]
	case 3:
		seconds = values[0]*3600 + values[1]*60 + values[2]
	}

	return time.Duration(seconds)*time.Second + time.Duration(fracNanos), nil
}

// ToFrame converts a duration to the nearest sample frame index at rate
func ToFrame(d time.Duration, rate int) int {
	return int(math.Round(d.Seconds() * float64(rate)))
}

// FrameDuration converts a frame index back to wall-clock time
func FrameDuration(frame, rate int) time.Duration {
	return time.Duration(math.Round(float64(frame) / float64(rate) * float64(time.Second)))
}

// Format renders a duration in the canonical form the parser reads back:
// "M:SS" (or "H:MM:SS" from one hour up) with a millisecond fraction when
// the duration is not a whole second. Parse(Format(d)) is exact at
// millisecond granularity.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := int64(math.Round(float64(d) / float64(time.Millisecond)))

	h := ms / 3_600_000
	m := ms % 3_600_000 / 60_000
	s := ms % 60_000 / 1000
	f := ms % 1000

	var out string
	if h > 0 {
		out = fmt.Sprintf("%d:%02d:%02d", h, m, s)
	} else {
		out = fmt.Sprintf("%d:%02d", m, s)
	}
	if f > 0 {
		out += fmt.Sprintf(".%03d", f)
	}
	return out
}

// ParseSegment reads the compact descriptor "START-END:NAME", for example
// "0:00-0:05:intro". The name is everything after the last colon; times are
// parsed eagerly so malformed descriptors fail here, not at planning time.
func ParseSegment(s string) (model.TimeSpec, error) {
	trimmed := strings.TrimSpace(s)

	dash := strings.IndexByte(trimmed, '-')
	if dash < 0 {
		return model.TimeSpec{}, pkgerrors.NewTimeFormatError(s, "missing range separator")
	}
	start := trimmed[:dash]
	rest := trimmed[dash+1:]

	colon := strings.LastIndexByte(rest, ':')
	if colon < 0 {
		return model.TimeSpec{}, pkgerrors.NewTimeFormatError(s, "missing segment name")
	}
	end := rest[:colon]
	name := strings.TrimSpace(rest[colon+1:])
	if name == "" {
		return model.TimeSpec{}, pkgerrors.NewTimeFormatError(s, "empty segment name")
	}

	if _, err := Parse(start); err != nil {
		return model.TimeSpec{}, err
	}
	if _, err := Parse(end); err != nil {
		return model.TimeSpec{}, err
	}

	return model.TimeSpec{Start: start, End: end, Name: name}, nil
}

func parseField(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty field")
	}
	var v int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric field")
		}
		v = v*10 + int64(r-'0')
		if v > 1<<40 {
			return 0, fmt.Errorf("field value too large")
		}
	}
	return v, nil
}

// parseFraction scales a decimal fraction to nanoseconds, truncating digits
// beyond the ninth.
func parseFraction(s string) (int64, error) {
	var v int64
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric fraction")
		}
		if digits < 9 {
			v = v*10 + int64(r-'0')
			digits++
		}
	}
	for ; digits < 9; digits++ {
		v *= 10
	}
	return v, nil
}
