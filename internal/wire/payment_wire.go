package wire

import (
	"service-dispatch/internal/adaptor"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(repo.Party, log))

		// POST /api/pay - Client-reported capture (cash path)
		r.Post("/api/pay", paymentHandler.SettlePayment)
	})

	// ==================== GATEWAY CALLBACK ====================
	// Authenticated by HMAC signature, not bearer token.
	r.Post("/api/webhook/payment", paymentHandler.GatewayWebhook)
}
