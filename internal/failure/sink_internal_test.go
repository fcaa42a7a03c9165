package failure

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/notify"
)

// --- mocks ---

type countingDispatcher struct {
	calls atomic.Int64
	err   error
}

func (d *countingDispatcher) DispatchError(context.Context, *apperr.Error) (notify.Result, error) {
	d.calls.Add(1)
	return notify.Result{}, d.err
}

func (d *countingDispatcher) Error(context.Context, string, ...notify.Option) (notify.Result, error) {
	d.calls.Add(1)
	return notify.Result{}, d.err
}

func TestReport_SetLivesOnlyForOneRecover(t *testing.T) {
	t.Parallel()

	s := New(&countingDispatcher{})

	for range 10000 {
		s.Report(t.Context(), apperr.NewNetwork("", nil))
	}
	assert.Nil(t, reportedFrom(t.Context()))

	var first, second *reportedSet
	require.NoError(t, s.Recover(t.Context(), func(ctx context.Context) error {
		first = reportedFrom(ctx)
		for range 100 {
			s.Report(ctx, apperr.NewNetwork("", nil))
		}
		return nil
	}))
	require.NoError(t, s.Recover(t.Context(), func(ctx context.Context) error {
		second = reportedFrom(ctx)
		return nil
	}))

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Len(t, first.errs, 100)
	assert.Empty(t, second.errs)
}

func TestReport_FailedDispatchIsNotRemembered(t *testing.T) {
	t.Parallel()

	d := &countingDispatcher{err: errors.New("renderer closed")}
	s := New(d)
	failed := apperr.NewServer("", 502, nil)

	err := s.Recover(t.Context(), func(ctx context.Context) error {
		s.Report(ctx, failed)
		assert.Empty(t, reportedFrom(ctx).errs)
		return failed
	})

	require.ErrorIs(t, err, failed)
	assert.Equal(t, int64(2), d.calls.Load())
}
