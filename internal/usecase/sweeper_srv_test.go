package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeExpirer struct {
	expired []uuid.UUID
	err     error
	calls   int
}

func (f *fakeExpirer) ExpireDue(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	f.calls++
	return f.expired, f.err
}

func TestSweeperRunOnce(t *testing.T) {
	exp := &fakeExpirer{expired: []uuid.UUID{uuid.New(), uuid.New()}}
	s := NewSweeper(exp, 60, zap.NewNop())

	s.RunOnce(context.Background())
	assert.Equal(t, 1, exp.calls)
}

func TestSweeperRunOnceSurvivesError(t *testing.T) {
	exp := &fakeExpirer{err: errors.New("connection reset")}
	s := NewSweeper(exp, 60, zap.NewNop())

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	assert.Equal(t, 2, exp.calls)
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	exp := &fakeExpirer{}
	s := NewSweeper(exp, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
	assert.Equal(t, 0, exp.calls)
}
