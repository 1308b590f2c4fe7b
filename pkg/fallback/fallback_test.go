package fallback

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
)

func TestDoFirstSuccessWins(t *testing.T) {
	secondRan := false

	v, name, err := Do(context.Background(),
		Strategy[int]{Name: "primary", Run: func(context.Context) (int, error) {
			return 42, nil
		}},
		Strategy[int]{Name: "backup", Run: func(context.Context) (int, error) {
			secondRan = true
			return 0, nil
		}},
	)

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, "primary", name)
	assert.False(t, secondRan, "later strategies must not run after a success")
}

func TestDoFallsThroughInOrder(t *testing.T) {
	v, name, err := Do(context.Background(),
		Strategy[string]{Name: "primary", Run: func(context.Context) (string, error) {
			return "", fmt.Errorf("primary unavailable")
		}},
		Strategy[string]{Name: "backup", Run: func(context.Context) (string, error) {
			return "ok", nil
		}},
	)

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, "backup", name)
}

func TestDoAggregatesAllFailures(t *testing.T) {
	_, name, err := Do(context.Background(),
		Strategy[int]{Name: "one", Run: func(context.Context) (int, error) {
			return 0, fmt.Errorf("first failure")
		}},
		Strategy[int]{Name: "two", Run: func(context.Context) (int, error) {
			return 0, fmt.Errorf("second failure")
		}},
	)

	require.Error(t, err)
	assert.Empty(t, name)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "first failure")
	assert.Contains(t, err.Error(), "second failure")
}

func TestDoNoStrategies(t *testing.T) {
	_, _, err := Do[int](context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrCodeValidation))
}

func TestDoCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	_, _, err := Do(ctx,
		Strategy[int]{Name: "never", Run: func(context.Context) (int, error) {
			ran = true
			return 1, nil
		}},
	)

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestDoCancellationBetweenStrategies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	_, _, err := Do(ctx,
		Strategy[int]{Name: "canceler", Run: func(context.Context) (int, error) {
			cancel()
			return 0, fmt.Errorf("failed and canceled")
		}},
		Strategy[int]{Name: "unreached", Run: func(context.Context) (int, error) {
			t.Fatal("strategy after cancellation must not run")
			return 0, nil
		}},
	)

	require.ErrorIs(t, err, context.Canceled)
}
