package entity

import (
	"github.com/google/uuid"
)

type PartyKind string

const (
	PartyKindUser   PartyKind = "user"
	PartyKindVendor PartyKind = "vendor"
	PartyKindAdmin  PartyKind = "admin"
	PartyKindSystem PartyKind = "system"
)

type PartyStatus string

const (
	PartyStatusActive   PartyStatus = "active"
	PartyStatusDisabled PartyStatus = "disabled"
)

// PlatformOwnerID is the well-known wallet owner id of the platform itself.
var PlatformOwnerID = uuid.Nil

// Party is any authenticated actor: a requesting user, a vendor, or an
// admin. Token issuance happens outside this service; we only resolve them.
type Party struct {
	Base
	Kind       PartyKind   `db:"kind"`
	Name       string      `db:"name"`
	Email      string      `db:"email"`
	APIToken   string      `db:"api_token"`
	Membership string      `db:"membership"` // "none" or a paid tier
	Status     PartyStatus `db:"status"`
}
