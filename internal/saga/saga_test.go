package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingStep(name string, log *[]string, fail error) Step {
	return Step{
		Name: name,
		Do: func(context.Context) error {
			*log = append(*log, "do "+name)
			return fail
		},
		Compensate: func(context.Context) error {
			*log = append(*log, "undo "+name)
			return nil
		},
	}
}

func TestRunAllSucceed(t *testing.T) {
	var log []string
	err := Run(context.Background(), context.Background(),
		recordingStep("a", &log, nil),
		recordingStep("b", &log, nil),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"do a", "do b"}, log)
}

func TestRunCompensatesInReverse(t *testing.T) {
	var log []string
	boom := errors.New("boom")

	err := Run(context.Background(), context.Background(),
		recordingStep("a", &log, nil),
		recordingStep("b", &log, nil),
		recordingStep("c", &log, boom),
		recordingStep("d", &log, nil),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"do a", "do b", "do c", "undo b", "undo a"}, log)

	var sagaErr *Error
	require.True(t, errors.As(err, &sagaErr))
	assert.Equal(t, "c", sagaErr.Step)
	assert.Empty(t, sagaErr.Compensations)
}

func TestRunCollectsCompensationFailures(t *testing.T) {
	undoErr := errors.New("release failed")
	steps := []Step{
		{
			Name:       "reserve",
			Do:         func(context.Context) error { return nil },
			Compensate: func(context.Context) error { return undoErr },
		},
		{Name: "noop", Do: func(context.Context) error { return nil }},
		{Name: "persist", Do: func(context.Context) error { return errors.New("db down") }},
	}

	err := Run(context.Background(), context.Background(), steps...)

	var sagaErr *Error
	require.True(t, errors.As(err, &sagaErr))
	require.Len(t, sagaErr.Compensations, 1)
	assert.ErrorIs(t, sagaErr.Compensations[0], undoErr)
	assert.Contains(t, err.Error(), "release failed")
}
