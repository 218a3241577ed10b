package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVendorRepo struct {
	repository.VendorRepository
	candidates []*entity.Candidate
}

func (f *fakeVendorRepo) FindCandidates(_ context.Context, _ uuid.UUID, _ float64, _ time.Time) ([]*entity.Candidate, error) {
	// return copies so stage filters can't mutate the fixture
	out := make([]*entity.Candidate, len(f.candidates))
	for i, c := range f.candidates {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

type fakeBookingRepo struct {
	repository.BookingRepository
	engaged []uuid.UUID
}

func (f *fakeBookingRepo) FindEngagedVendorIDs(_ context.Context, _ time.Time, _ string) ([]uuid.UUID, error) {
	return f.engaged, nil
}

type fakePresence struct {
	offline map[uuid.UUID]bool
	failing map[uuid.UUID]bool
}

func (f *fakePresence) IsOnline(_ context.Context, vendorID uuid.UUID) (bool, error) {
	if f.failing[vendorID] {
		return false, errors.New("redis: connection refused")
	}
	return !f.offline[vendorID], nil
}

// Requester sits in central Bengaluru; vendor offsets are in degrees of
// latitude, roughly 111 km per degree.
const (
	reqLat = 12.9716
	reqLng = 77.5946
)

func vendorAt(latOffset, radiusKm float64) *entity.Candidate {
	return &entity.Candidate{
		VendorID:        uuid.New(),
		Lat:             reqLat + latOffset,
		Lng:             reqLng,
		ServiceRadiusKm: radiusKm,
	}
}

func newMatcher(vendors *fakeVendorRepo, bookings *fakeBookingRepo, presence *fakePresence) MatchingService {
	return NewMatchingService(vendors, bookings, presence, 7*24*time.Hour, zap.NewNop())
}

func TestFindEligibleVendorsSortsByDistance(t *testing.T) {
	far := vendorAt(0.054, 10)  // ~6 km out
	near := vendorAt(0.018, 10) // ~2 km out

	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{far, near}},
		&fakeBookingRepo{},
		&fakePresence{},
	)

	got, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, near.VendorID, got[0].VendorID)
	assert.Equal(t, far.VendorID, got[1].VendorID)
	assert.InDelta(t, 2.0, got[0].DistanceKm, 0.2)
	assert.InDelta(t, 6.0, got[1].DistanceKm, 0.2)
}

func TestFindEligibleVendorsRespectsVendorRadius(t *testing.T) {
	// both ~6 km from the requester; only the wider radius qualifies
	tight := vendorAt(0.054, 5)
	wide := vendorAt(0.054, 10)

	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{tight, wide}},
		&fakeBookingRepo{},
		&fakePresence{},
	)

	got, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, wide.VendorID, got[0].VendorID)
}

func TestFindEligibleVendorsAllOutOfArea(t *testing.T) {
	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{vendorAt(0.5, 5)}},
		&fakeBookingRepo{},
		&fakePresence{},
	)

	_, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	assert.ErrorIs(t, err, utils.ErrNoVendorsInArea)
}

func TestFindEligibleVendorsNoCandidates(t *testing.T) {
	m := newMatcher(&fakeVendorRepo{}, &fakeBookingRepo{}, &fakePresence{})

	_, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	assert.ErrorIs(t, err, utils.ErrNoVendorsAvailable)
}

func TestFindEligibleVendorsFiltersOffline(t *testing.T) {
	online := vendorAt(0.018, 10)
	offline := vendorAt(0.009, 10)

	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{online, offline}},
		&fakeBookingRepo{},
		&fakePresence{offline: map[uuid.UUID]bool{offline.VendorID: true}},
	)

	got, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, online.VendorID, got[0].VendorID)
}

func TestFindEligibleVendorsPresenceOutageDegradesToOffline(t *testing.T) {
	healthy := vendorAt(0.018, 10)
	unreachable := vendorAt(0.009, 10)

	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{healthy, unreachable}},
		&fakeBookingRepo{},
		&fakePresence{failing: map[uuid.UUID]bool{unreachable.VendorID: true}},
	)

	got, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, healthy.VendorID, got[0].VendorID)
}

func TestFindEligibleVendorsExcludesEngaged(t *testing.T) {
	busy := vendorAt(0.018, 10)
	free := vendorAt(0.027, 10)

	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{busy, free}},
		&fakeBookingRepo{engaged: []uuid.UUID{busy.VendorID}},
		&fakePresence{},
	)

	got, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, free.VendorID, got[0].VendorID)
}

func TestFindEligibleVendorsAllEngaged(t *testing.T) {
	only := vendorAt(0.018, 10)

	m := newMatcher(
		&fakeVendorRepo{candidates: []*entity.Candidate{only}},
		&fakeBookingRepo{engaged: []uuid.UUID{only.VendorID}},
		&fakePresence{},
	)

	_, err := m.FindEligibleVendors(context.Background(), uuid.New(), time.Now(), "10:00-12:00", reqLat, reqLng, &entity.Settings{}, time.Now())
	assert.ErrorIs(t, err, utils.ErrNoVendorsAvailable)
}
