package wire

import (
	"service-dispatch/internal/adaptor"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireVendor(
	r chi.Router,
	vendorHandler *adaptor.VendorHandler,
	walletHandler *adaptor.WalletHandler,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/vendor", func(r chi.Router) {
		r.Use(middleware.Auth(repo.Party, log))
		r.Use(middleware.RequireKind("vendor", log))

		// POST /api/vendor/heartbeat - Refresh online presence
		r.Post("/heartbeat", vendorHandler.Heartbeat)

		// POST /api/vendor/bookings/{id}/accept - First-accept-wins claim
		r.Post("/bookings/{id}/accept", vendorHandler.AcceptBooking)

		// POST /api/vendor/bookings/{id}/reject - Decline a dispatch
		r.Post("/bookings/{id}/reject", vendorHandler.RejectBooking)

		// POST /api/vendor/bookings/{id}/status - Advance the service lifecycle
		r.Post("/bookings/{id}/status", vendorHandler.UpdateStatus)

		// PUT /api/vendor/bookings/{id}/cancel - Withdraw from an assigned booking
		r.Put("/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// GET /api/vendor/wallet - Balances including pending liability
		r.Get("/wallet", walletHandler.GetWallet)

		// GET /api/vendor/wallet/transactions - Ledger history
		r.Get("/wallet/transactions", walletHandler.GetTransactions)
	})
}
