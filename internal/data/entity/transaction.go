package entity

import (
	"github.com/google/uuid"
)

type TxDirection string

const (
	TxDirectionDebit     TxDirection = "debit"
	TxDirectionCredit    TxDirection = "credit"
	TxDirectionLiability TxDirection = "liability"
)

type TxStatus string

const (
	TxStatusPending     TxStatus = "pending"
	TxStatusSuccess     TxStatus = "success"
	TxStatusFailed      TxStatus = "failed"
	TxStatusOutstanding TxStatus = "outstanding"
)

// Transaction is an immutable ledger entry. The two sides of one commission
// event (vendor debit, platform credit) share a ReferenceGroup and are
// created in the same database transaction, or neither is.
type Transaction struct {
	Base
	WalletID       uuid.UUID       `db:"wallet_id"`
	OwnerID        uuid.UUID       `db:"owner_id"`
	OwnerKind      WalletOwnerKind `db:"owner_kind"`
	BookingID      *uuid.UUID      `db:"booking_id"`
	Amount         float64         `db:"amount"`
	Currency       string          `db:"currency"`
	Direction      TxDirection     `db:"direction"`
	Status         TxStatus        `db:"status"`
	ReferenceGroup uuid.UUID       `db:"reference_group"`
	Remark         string          `db:"remark"`
}

// TransactionStatusHistory mirrors the booking history pattern: append-only
// status log per ledger entry.
type TransactionStatusHistory struct {
	BaseSimple
	TransactionID uuid.UUID `db:"transaction_id"`
	Status        TxStatus  `db:"status"`
	Reason        string    `db:"reason"`
}
