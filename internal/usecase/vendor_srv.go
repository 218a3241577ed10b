package usecase

import (
	"context"

	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// heartbeater writes the vendor's presence signal. Backed by the redis
// TTL keys in production.
type heartbeater interface {
	Heartbeat(ctx context.Context, vendorID uuid.UUID) error
}

type VendorService interface {
	// Heartbeat refreshes the vendor's online window. Vendors that stop
	// heartbeating drop out of matching once the TTL lapses.
	Heartbeat(ctx context.Context, vendorID uuid.UUID) error
}

type vendorService struct {
	repo     *repository.Repository
	presence heartbeater
	log      *zap.Logger
}

func NewVendorService(repo *repository.Repository, presence heartbeater, log *zap.Logger) VendorService {
	return &vendorService{
		repo:     repo,
		presence: presence,
		log:      log.With(zap.String("service", "vendor")),
	}
}

func (s *vendorService) Heartbeat(ctx context.Context, vendorID uuid.UUID) error {
	vendor, err := s.repo.Vendor.FindByPartyID(ctx, vendorID)
	if err != nil {
		return err
	}
	if vendor == nil {
		return utils.NotFound("vendor", vendorID.String())
	}
	if vendor.Blocked {
		return utils.ErrForbidden
	}

	return s.presence.Heartbeat(ctx, vendorID)
}
