// Package fallback runs an explicit ordered list of strategies and returns
// the first result that succeeds. Later entries only run when every earlier
// entry has failed, so the list reads as the exact order of preference.
package fallback

import (
	"context"

	"go.uber.org/multierr"

	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
)

// Strategy is one named way of producing a T.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Do tries each strategy in order and returns the first successful value
// together with the name of the strategy that produced it. When every
// strategy fails the errors are aggregated and returned as one.
func Do[T any](ctx context.Context, strategies ...Strategy[T]) (T, string, error) {
	var (
		zero T
		errs error
	)

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		v, err := s.Run(ctx)
		if err == nil {
			return v, s.Name, nil
		}
		errs = multierr.Append(errs, err)
	}

	if errs == nil {
		return zero, "", pkgerrors.NewValidationError("strategies", 0, "no strategies supplied")
	}
	return zero, "", errs
}
