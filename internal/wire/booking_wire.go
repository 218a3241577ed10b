package wire

import (
	"service-dispatch/internal/adaptor"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(repo.Party, log))
		r.Use(middleware.RequireKind("user", log))

		// POST /api/booking - Create booking and dispatch to vendors
		r.Post("/api/booking", bookingHandler.CreateBooking)

		// GET /api/user/bookings - View own booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/booking/{id} - View one booking with vendor entries
		r.Get("/api/booking/{id}", bookingHandler.GetBookingByID)

		// PUT /api/booking/{id}/cancel - Cancel own booking
		r.Put("/api/booking/{id}/cancel", bookingHandler.CancelBooking)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.Auth(repo.Party, log))
		r.Use(middleware.RequireKind("admin", log))

		// GET /api/admin/bookings/{id} - View any booking
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PUT /api/admin/bookings/{id}/cancel - Cancel any booking
		r.Put("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
