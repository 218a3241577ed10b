package adaptor

import (
	"errors"
	"net/http"

	"service-dispatch/internal/dto/request"
	"service-dispatch/internal/usecase"
	"service-dispatch/pkg/utils"

	"go.uber.org/zap"
)

type WalletHandler struct {
	service usecase.WalletService
	log     *zap.Logger
}

func NewWalletHandler(service usecase.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		log:     log.With(zap.String("handler", "wallet")),
	}
}

// GetWallet handles GET /api/vendor/wallet (vendor)
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetPartyIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), vendorID)
	if err != nil {
		h.handleServiceError(w, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// GetTransactions handles GET /api/vendor/wallet/transactions (vendor)
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetPartyIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	transactions, err := h.service.GetTransactions(r.Context(), vendorID, req)
	if err != nil {
		h.handleServiceError(w, err, "get wallet transactions")
		return
	}

	utils.ResponseSuccess(w, "success", transactions)
}

func (h *WalletHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	h.log.Warn(operation+" failed",
		zap.Error(err),
		zap.String("operation", operation))

	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
		utils.ResponseNotFound(w, err.Error())
		return
	}

	h.log.Error("Unexpected error in "+operation, zap.Error(err))
	utils.ResponseInternalError(w, "Internal server error")
}
