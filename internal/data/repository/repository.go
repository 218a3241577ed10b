package repository

import (
	"service-dispatch/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Party         PartyRepository
	Vendor        VendorRepository
	Service       ServiceRepository
	Coupon        CouponRepository
	Settings      SettingsRepository
	Booking       BookingRepository
	BookingVendor BookingVendorRepository
	Wallet        WalletRepository
	Transaction   TransactionRepository
	WebhookEvent  WebhookEventRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Party:         NewPartyRepository(db, log),
		Vendor:        NewVendorRepository(db, log),
		Service:       NewServiceRepository(db, log),
		Coupon:        NewCouponRepository(db, log),
		Settings:      NewSettingsRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		BookingVendor: NewBookingVendorRepository(db, log),
		Wallet:        NewWalletRepository(db, log),
		Transaction:   NewTransactionRepository(db, log),
		WebhookEvent:  NewWebhookEventRepository(db, log),
	}
}
