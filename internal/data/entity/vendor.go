package entity

import (
	"github.com/google/uuid"
)

// Vendor is the dispatchable profile of a vendor party. Liveness is not
// stored here: vendors heartbeat into the presence cache and are considered
// online only while the heartbeat key lives.
type Vendor struct {
	PartyID         uuid.UUID `db:"party_id"`
	Lat             float64   `db:"lat"`
	Lng             float64   `db:"lng"`
	ServiceRadiusKm float64   `db:"service_radius_km"`
	DeviceToken     string    `db:"device_token"`
	Blocked         bool      `db:"blocked"`
}

// VendorService links a vendor to a service it offers.
type VendorService struct {
	VendorID  uuid.UUID `db:"vendor_id"`
	ServiceID uuid.UUID `db:"service_id"`
}

// Candidate is a matching-time projection: a vendor that passed the
// availability and wallet-health filters, before the radius filter runs.
type Candidate struct {
	VendorID        uuid.UUID
	Lat             float64
	Lng             float64
	ServiceRadiusKm float64
	DeviceToken     string
	DistanceKm      float64
}
