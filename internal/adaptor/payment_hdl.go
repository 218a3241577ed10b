package adaptor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"service-dispatch/internal/dto/request"
	"service-dispatch/internal/usecase"
	"service-dispatch/pkg/utils"

	"go.uber.org/zap"
)

const signatureHeader = "X-Payment-Signature"

type PaymentHandler struct {
	settlement    usecase.SettlementService
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentHandler(settlement usecase.SettlementService, webhookSecret string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		settlement:    settlement,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("handler", "payment")),
	}
}

// SettlePayment handles POST /api/pay (user)
//
// The cash path: the client reports a capture directly, carrying its own
// event id so retries collapse into one settlement.
func (h *PaymentHandler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetPartyIDFromContext(r.Context()); !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SettlePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.settlement.SettlePayment(r.Context(), usecase.SettlePaymentInput{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Method:    req.Method,
		EventID:   req.EventID,
	})
	if err != nil {
		h.handleServiceError(w, err, "settle payment")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GatewayWebhook handles POST /api/webhook/payment (gateway, HMAC-signed)
func (h *PaymentHandler) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.ResponseBadRequest(w, "Failed to read request body", nil)
		return
	}

	if !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		h.log.Warn("Webhook signature verification failed",
			zap.String("remote_addr", r.RemoteAddr))
		utils.ResponseUnauthorized(w, "Invalid signature")
		return
	}

	var event request.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if event.EventType != "payment.captured" {
		// acknowledge everything else before schema checks: a malformed
		// event we would ignore anyway must not make the gateway retry
		h.log.Info("Ignoring webhook event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType))
		utils.ResponseSuccess(w, "ignored", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(event); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	_, err = h.settlement.SettlePayment(r.Context(), usecase.SettlePaymentInput{
		BookingID: event.BookingID,
		Amount:    event.Amount,
		Method:    "gateway",
		EventID:   event.EventID,
	})
	if err != nil {
		// a replay is a success from the gateway's point of view
		if errors.Is(err, utils.ErrAlreadyProcessed) {
			utils.ResponseSuccess(w, "already processed", nil)
			return
		}
		h.handleServiceError(w, err, "process payment webhook")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *PaymentHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	h.log.Warn(operation+" failed",
		zap.Error(err),
		zap.String("operation", operation))

	switch {
	case errors.Is(err, utils.ErrValidation):
		utils.ResponseBadRequest(w, err.Error(), nil)
	case errors.Is(err, utils.ErrAlreadyProcessed):
		utils.ResponseConflict(w, utils.ErrAlreadyProcessed.Code, err.Error())
	case errors.Is(err, utils.ErrBookingNotAvailable):
		utils.ResponseConflict(w, utils.ErrBookingNotAvailable.Code, err.Error())
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
