package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"service-dispatch/internal/dto/request"
	"service-dispatch/internal/usecase"
	"service-dispatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type VendorHandler struct {
	bookings   usecase.BookingService
	settlement usecase.SettlementService
	vendors    usecase.VendorService
	log        *zap.Logger
}

func NewVendorHandler(bookings usecase.BookingService, settlement usecase.SettlementService, vendors usecase.VendorService, log *zap.Logger) *VendorHandler {
	return &VendorHandler{
		bookings:   bookings,
		settlement: settlement,
		vendors:    vendors,
		log:        log.With(zap.String("handler", "vendor")),
	}
}

// AcceptBooking handles POST /api/vendor/bookings/{id}/accept (vendor)
func (h *VendorHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetPartyIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.settlement.AcceptBooking(r.Context(), bookingID, vendorID)
	if err != nil {
		h.handleServiceError(w, err, "accept booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// RejectBooking handles POST /api/vendor/bookings/{id}/reject (vendor)
func (h *VendorHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetPartyIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	// body is optional on reject
	var req request.RejectBookingRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.bookings.RejectBooking(r.Context(), bookingID, vendorID, req.Reason); err != nil {
		h.handleServiceError(w, err, "reject booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// UpdateStatus handles POST /api/vendor/bookings/{id}/status (vendor)
func (h *VendorHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetPartyIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.VendorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.bookings.UpdateProgress(r.Context(), bookingID, vendorID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Heartbeat handles POST /api/vendor/heartbeat (vendor)
func (h *VendorHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetPartyIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.vendors.Heartbeat(r.Context(), vendorID); err != nil {
		h.handleServiceError(w, err, "vendor heartbeat")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *VendorHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	h.log.Warn(operation+" failed",
		zap.Error(err),
		zap.String("operation", operation))

	switch {
	case errors.Is(err, utils.ErrValidation):
		utils.ResponseBadRequest(w, err.Error(), nil)
	case errors.Is(err, utils.ErrForbidden):
		utils.ResponseForbidden(w, err.Error())
	case errors.Is(err, utils.ErrBookingAlreadyAssigned):
		utils.ResponseConflict(w, utils.ErrBookingAlreadyAssigned.Code, err.Error())
	case errors.Is(err, utils.ErrVendorAlreadyResponded):
		utils.ResponseConflict(w, utils.ErrVendorAlreadyResponded.Code, err.Error())
	case errors.Is(err, utils.ErrBookingExpired):
		utils.ResponseConflict(w, utils.ErrBookingExpired.Code, err.Error())
	case errors.Is(err, utils.ErrBookingNotAvailable):
		utils.ResponseConflict(w, utils.ErrBookingNotAvailable.Code, err.Error())
	case errors.Is(err, utils.ErrInvalidTransition):
		utils.ResponseConflict(w, utils.ErrInvalidTransition.Code, err.Error())
	case errors.Is(err, utils.ErrVendorNotEligible):
		utils.ResponseForbidden(w, err.Error())
	case errors.Is(err, utils.ErrInsufficientBalance):
		utils.ResponseUnprocessable(w, utils.ErrInsufficientBalance.Code, err.Error())
	case errors.Is(err, utils.ErrWalletFrozen):
		utils.ResponseUnprocessable(w, utils.ErrWalletFrozen.Code, err.Error())
	default:
		var appErr *utils.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			utils.ResponseNotFound(w, err.Error())
			return
		}
		h.log.Error("Unexpected error in "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
