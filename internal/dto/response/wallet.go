package response

import (
	"time"

	"service-dispatch/internal/data/entity"
)

type WalletResponse struct {
	ID             string              `json:"id"`
	OwnerID        string              `json:"owner_id"`
	OwnerKind      string              `json:"owner_kind"`
	Balance        float64             `json:"balance"`
	PendingBalance float64             `json:"pending_balance"`
	Available      float64             `json:"available"`
	PendingSince   *time.Time          `json:"pending_since,omitempty"`
	Status         entity.WalletStatus `json:"status"`
}

type TransactionResponse struct {
	ID             string          `json:"id"`
	BookingID      *string         `json:"booking_id,omitempty"`
	Amount         float64         `json:"amount"`
	Currency       string          `json:"currency"`
	Direction      string          `json:"direction"`
	Status         entity.TxStatus `json:"status"`
	ReferenceGroup string          `json:"reference_group"`
	Remark         string          `json:"remark,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func WalletToResponse(w *entity.Wallet) WalletResponse {
	return WalletResponse{
		ID:             w.ID.String(),
		OwnerID:        w.OwnerID.String(),
		OwnerKind:      string(w.OwnerKind),
		Balance:        w.Balance,
		PendingBalance: w.PendingBalance,
		Available:      w.Available(),
		PendingSince:   w.PendingSince,
		Status:         w.Status,
	}
}

func TransactionToResponse(t *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:             t.ID.String(),
		Amount:         t.Amount,
		Currency:       t.Currency,
		Direction:      string(t.Direction),
		Status:         t.Status,
		ReferenceGroup: t.ReferenceGroup.String(),
		Remark:         t.Remark,
		CreatedAt:      t.CreatedAt,
	}
	if t.BookingID != nil {
		id := t.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
