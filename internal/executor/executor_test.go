package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
)

func testBudgets() Budgets {
	return Budgets{
		Search:  50 * time.Millisecond,
		Default: 20 * time.Millisecond,
	}
}

func TestExecuteReturnsResult(t *testing.T) {
	got, err := Execute(context.Background(), testBudgets(), ClassSearch, "ok", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestExecutePropagatesError(t *testing.T) {
	cause := errors.New("backend exploded")
	_, err := Execute(context.Background(), testBudgets(), ClassSearch, "boom", func(ctx context.Context) (int, error) {
		return 0, cause
	})
	assert.ErrorIs(t, err, cause)
}

func TestExecuteTimesOut(t *testing.T) {
	started := time.Now()
	_, err := Execute(context.Background(), testBudgets(), ClassDefault, "slow", func(ctx context.Context) (int, error) {
		select {
		case <-time.After(5 * time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	var te *apperr.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "slow", te.Label)
	// The caller is released at the budget, not when the operation finishes.
	assert.Less(t, time.Since(started), time.Second)
}

func TestExecuteCancelsOperationContext(t *testing.T) {
	cancelled := make(chan struct{})
	_, err := Execute(context.Background(), testBudgets(), ClassDefault, "observed", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	assert.True(t, apperr.IsTimeout(err))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation context was never cancelled")
	}
}

func TestExecutePropagatesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, testBudgets(), ClassSearch, "gone", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperr.IsTimeout(err))
}

func TestBudgetsFallBackToDefault(t *testing.T) {
	b := Budgets{Default: 7 * time.Second}
	assert.Equal(t, 7*time.Second, b.For(ClassPayment))
	assert.Equal(t, 10*time.Second, Budgets{}.For(ClassPayment))
}
