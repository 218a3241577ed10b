package adaptor

import (
	"service-dispatch/internal/usecase"
	"service-dispatch/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Vendor  *VendorHandler
	Wallet  *WalletHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		Vendor:  NewVendorHandler(service.Booking, service.Settlement, service.Vendor, log),
		Wallet:  NewWalletHandler(service.Wallet, log),
		Payment: NewPaymentHandler(service.Settlement, config.Webhook.Secret, log),
	}
}
