package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// expirer is the slice of the booking repository the sweeper needs.
type expirer interface {
	ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// Sweeper expires bookings whose search window lapsed with no vendor
// assigned. Expiry is also enforced at write time on the acceptance
// path, so a late sweep can never hand a vendor an expired booking.
type Sweeper struct {
	bookings expirer
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(bookings expirer, intervalSeconds int, log *zap.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		interval: time.Duration(intervalSeconds) * time.Second,
		log:      log.With(zap.String("service", "sweeper")),
	}
}

// Run loops until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Expiry sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) {
	expired, err := s.bookings.ExpireDue(ctx, time.Now())
	if err != nil {
		s.log.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if len(expired) > 0 {
		ids := make([]string, len(expired))
		for i, id := range expired {
			ids[i] = id.String()
		}
		s.log.Info("Expired stale bookings",
			zap.Int("count", len(expired)),
			zap.Strings("booking_ids", ids),
		)
	}
}
