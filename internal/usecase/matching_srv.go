package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Presence answers whether a vendor has a live heartbeat. Backed by the
// redis TTL keys in production.
type Presence interface {
	IsOnline(ctx context.Context, vendorID uuid.UUID) (bool, error)
}

type MatchingService interface {
	// FindEligibleVendors runs the full eligibility pipeline for one
	// dispatch and returns candidates annotated with distance, sorted
	// ascending. The result becomes the booking's frozen eligible-vendor
	// snapshot; it is never recomputed.
	FindEligibleVendors(ctx context.Context, serviceID uuid.UUID, date time.Time, timeSlot string, lat, lng float64, settings *entity.Settings, now time.Time) ([]*entity.Candidate, error)
}

type matchingService struct {
	vendors     repository.VendorRepository
	bookings    repository.BookingRepository
	presence    Presence
	graceWindow time.Duration
	log         *zap.Logger
}

func NewMatchingService(vendors repository.VendorRepository, bookings repository.BookingRepository, presence Presence, graceWindow time.Duration, log *zap.Logger) MatchingService {
	return &matchingService{
		vendors:     vendors,
		bookings:    bookings,
		presence:    presence,
		graceWindow: graceWindow,
		log:         log.With(zap.String("service", "matching")),
	}
}

func (s *matchingService) FindEligibleVendors(ctx context.Context, serviceID uuid.UUID, date time.Time, timeSlot string, lat, lng float64, settings *entity.Settings, now time.Time) ([]*entity.Candidate, error) {
	// stage 1: offering the service, unblocked, wallet-healthy
	candidates, err := s.vendors.FindCandidates(ctx, serviceID, settings.MinimumWalletBalance, now.Add(-s.graceWindow))
	if err != nil {
		return nil, fmt.Errorf("find candidate vendors: %w", err)
	}

	if len(candidates) == 0 {
		return nil, utils.ErrNoVendorsAvailable
	}

	// stage 2: live heartbeat
	online := candidates[:0]
	for _, c := range candidates {
		ok, err := s.presence.IsOnline(ctx, c.VendorID)
		if err != nil {
			// presence outage degrades to "offline", never to an error
			s.log.Warn("Presence check failed",
				zap.Error(err),
				zap.String("vendor_id", c.VendorID.String()),
			)
			continue
		}
		if ok {
			online = append(online, c)
		}
	}
	candidates = online

	if len(candidates) == 0 {
		return nil, utils.ErrNoVendorsAvailable
	}

	// stage 3: no conflicting engagement in the same slot
	engagedIDs, err := s.bookings.FindEngagedVendorIDs(ctx, date, timeSlot)
	if err != nil {
		return nil, fmt.Errorf("find engaged vendors: %w", err)
	}

	engaged := make(map[uuid.UUID]bool, len(engagedIDs))
	for _, id := range engagedIDs {
		engaged[id] = true
	}

	free := candidates[:0]
	for _, c := range candidates {
		if !engaged[c.VendorID] {
			free = append(free, c)
		}
	}
	candidates = free

	if len(candidates) == 0 {
		return nil, utils.ErrNoVendorsAvailable
	}

	// stage 4: requester inside the vendor's own service radius
	var eligible []*entity.Candidate
	for _, c := range candidates {
		d := utils.HaversineKm(lat, lng, c.Lat, c.Lng)
		if d <= c.ServiceRadiusKm {
			c.DistanceKm = d
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 {
		return nil, utils.ErrNoVendorsInArea
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].DistanceKm < eligible[j].DistanceKm
	})

	s.log.Info("Eligible vendors matched",
		zap.String("service_id", serviceID.String()),
		zap.String("time_slot", timeSlot),
		zap.Int("count", len(eligible)),
	)

	return eligible, nil
}
