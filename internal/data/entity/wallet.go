package entity

import (
	"time"

	"github.com/google/uuid"
)

type WalletOwnerKind string

const (
	WalletOwnerVendor   WalletOwnerKind = "vendor"
	WalletOwnerPlatform WalletOwnerKind = "platform"
)

type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusFrozen    WalletStatus = "frozen"
	WalletStatusSuspended WalletStatus = "suspended"
)

// Wallet balances change only together with a Transaction write inside the
// same database transaction; PendingBalance only shrinks when the matching
// outstanding liability settles.
type Wallet struct {
	Base
	OwnerID        uuid.UUID       `db:"owner_id"`
	OwnerKind      WalletOwnerKind `db:"owner_kind"`
	Balance        float64         `db:"balance"`
	PendingBalance float64         `db:"pending_balance"`
	// When the oldest still-unsettled liability was recorded. Drives the
	// grace-window eligibility rule.
	PendingSince *time.Time   `db:"pending_since"`
	Status       WalletStatus `db:"status"`
}

// Available is the dispatchable balance: liquid minus owed.
func (w *Wallet) Available() float64 {
	return w.Balance - w.PendingBalance
}
