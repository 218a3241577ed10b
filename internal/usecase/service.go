package usecase

import (
	"time"

	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/cache"
	"service-dispatch/pkg/database"
	"service-dispatch/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Matching   MatchingService
	Booking    BookingService
	Settlement SettlementService
	Wallet     WalletService
	Vendor     VendorService
	Sweeper    *Sweeper
}

func NewService(db database.PgxIface, repo *repository.Repository, config *utils.Config, cache *cache.Cache, notifier Notifier, log *zap.Logger) *Service {
	graceWindow := time.Duration(config.Dispatch.PendingGraceDays) * 24 * time.Hour

	matching := NewMatchingService(repo.Vendor, repo.Booking, cache, graceWindow, log)

	return &Service{
		Matching:   matching,
		Booking:    NewBookingService(db, repo, matching, notifier, config.Dispatch, log),
		Settlement: NewSettlementService(db, repo, cache, log),
		Wallet:     NewWalletService(repo, log),
		Vendor:     NewVendorService(repo, cache, log),
		Sweeper:    NewSweeper(repo.Booking, config.Dispatch.SweepIntervalSeconds, log),
	}
}
