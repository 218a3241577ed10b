package usecase

import (
	"context"
	"testing"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/database"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== IN-MEMORY STUBS ====================
// One stub per aggregate, embedding the repository interface so only the
// methods a test path touches need implementations.

type stubTx struct{ pgx.Tx }

func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return nil }

type stubDB struct{ database.PgxIface }

func (stubDB) Begin(context.Context) (pgx.Tx, error) { return stubTx{}, nil }

type stubBookings struct {
	repository.BookingRepository
	bookings map[uuid.UUID]*entity.Booking
	history  []*entity.BookingStatusHistory
}

func (s *stubBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	return s.bookings[id], nil
}

func (s *stubBookings) FindByIDForUpdate(_ context.Context, _ database.Querier, id uuid.UUID) (*entity.Booking, error) {
	return s.bookings[id], nil
}

func (s *stubBookings) UpdateStatus(context.Context, database.Querier, *entity.Booking) error {
	return nil
}

func (s *stubBookings) UpdateAssignment(_ context.Context, _ database.Querier, b *entity.Booking) error {
	return nil
}

func (s *stubBookings) UpdateSettlement(context.Context, database.Querier, *entity.Booking) error {
	return nil
}

func (s *stubBookings) AppendHistory(_ context.Context, _ database.Querier, h *entity.BookingStatusHistory) error {
	s.history = append(s.history, h)
	return nil
}

func (s *stubBookings) FindHistory(_ context.Context, _ uuid.UUID) ([]*entity.BookingStatusHistory, error) {
	return s.history, nil
}

type stubEntries struct {
	repository.BookingVendorRepository
	entries map[uuid.UUID]*entity.BookingVendor // keyed by vendor id
}

func (s *stubEntries) FindEntryForUpdate(_ context.Context, _ database.Querier, _ uuid.UUID, vendorID uuid.UUID) (*entity.BookingVendor, error) {
	return s.entries[vendorID], nil
}

func (s *stubEntries) UpdateResponse(context.Context, database.Querier, *entity.BookingVendor) error {
	return nil
}

func (s *stubEntries) FindByBookingID(_ context.Context, _ uuid.UUID) ([]*entity.BookingVendor, error) {
	out := make([]*entity.BookingVendor, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

type stubWallets struct {
	repository.WalletRepository
	byOwner map[uuid.UUID]*entity.Wallet
	byID    map[uuid.UUID]*entity.Wallet
}

func newStubWallets(wallets ...*entity.Wallet) *stubWallets {
	s := &stubWallets{
		byOwner: make(map[uuid.UUID]*entity.Wallet),
		byID:    make(map[uuid.UUID]*entity.Wallet),
	}
	for _, w := range wallets {
		s.byOwner[w.OwnerID] = w
		s.byID[w.ID] = w
	}
	return s
}

func (s *stubWallets) FindByOwnerForUpdate(_ context.Context, _ database.Querier, ownerID uuid.UUID, _ entity.WalletOwnerKind) (*entity.Wallet, error) {
	return s.byOwner[ownerID], nil
}

func (s *stubWallets) ApplyDelta(_ context.Context, _ database.Querier, walletID uuid.UUID, delta float64, _ time.Time) error {
	s.byID[walletID].Balance += delta
	return nil
}

func (s *stubWallets) AddPending(_ context.Context, _ database.Querier, walletID uuid.UUID, amount float64, now time.Time) error {
	w := s.byID[walletID]
	w.PendingBalance += amount
	if w.PendingSince == nil {
		t := now
		w.PendingSince = &t
	}
	return nil
}

type stubLedger struct {
	repository.TransactionRepository
	created []*entity.Transaction
}

func (s *stubLedger) Create(_ context.Context, _ database.Querier, tx *entity.Transaction) error {
	s.created = append(s.created, tx)
	return nil
}

type stubEvents struct {
	repository.WebhookEventRepository
	seen map[string]bool
}

func (s *stubEvents) InsertIfAbsent(_ context.Context, _ database.Querier, eventID string, _ *uuid.UUID, _ time.Time) (bool, error) {
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

type stubSettings struct {
	repository.SettingsRepository
	settings *entity.Settings
}

func (s *stubSettings) Get(context.Context) (*entity.Settings, error) {
	return s.settings, nil
}

type stubServices struct {
	repository.ServiceRepository
	services map[uuid.UUID]*entity.Service
}

func (s *stubServices) FindByID(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	return s.services[id], nil
}

func TestValidateAcceptance(t *testing.T) {
	now := time.Now()
	future := now.Add(2 * time.Minute)
	past := now.Add(-2 * time.Minute)
	someVendor := uuid.New()

	pendingEntry := func() *entity.BookingVendor {
		return &entity.BookingVendor{Response: entity.VendorResponsePending}
	}

	tests := []struct {
		name    string
		booking *entity.Booking
		entry   *entity.BookingVendor
		wantErr error
	}{
		{
			name:    "open booking, pending entry",
			booking: &entity.Booking{Status: entity.BookingStatusSearching, SearchTimeout: &future},
			entry:   pendingEntry(),
			wantErr: nil,
		},
		{
			name:    "vendor never notified",
			booking: &entity.Booking{Status: entity.BookingStatusSearching, SearchTimeout: &future},
			entry:   nil,
			wantErr: utils.ErrVendorNotEligible,
		},
		{
			name:    "another vendor already won",
			booking: &entity.Booking{Status: entity.BookingStatusVendorAssigned, AssignedVendorID: &someVendor, SearchTimeout: &future},
			entry:   pendingEntry(),
			wantErr: utils.ErrBookingAlreadyAssigned,
		},
		{
			name:    "booking swept as expired",
			booking: &entity.Booking{Status: entity.BookingStatusExpired},
			entry:   pendingEntry(),
			wantErr: utils.ErrBookingExpired,
		},
		{
			name:    "booking cancelled meanwhile",
			booking: &entity.Booking{Status: entity.BookingStatusCancelledByUser},
			entry:   pendingEntry(),
			wantErr: utils.ErrBookingNotAvailable,
		},
		{
			name:    "vendor already rejected",
			booking: &entity.Booking{Status: entity.BookingStatusSearching, SearchTimeout: &future},
			entry:   &entity.BookingVendor{Response: entity.VendorResponseRejected},
			wantErr: utils.ErrVendorAlreadyResponded,
		},
		{
			name:    "search window lapsed, sweep not yet run",
			booking: &entity.Booking{Status: entity.BookingStatusSearching, SearchTimeout: &past},
			entry:   pendingEntry(),
			wantErr: utils.ErrBookingExpired,
		},
		{
			name:    "still pending before search started",
			booking: &entity.Booking{Status: entity.BookingStatusPending, SearchTimeout: &future},
			entry:   pendingEntry(),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAcceptance(tt.booking, tt.entry, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBookingCommissionAtAcceptance(t *testing.T) {
	settings := &entity.Settings{CommissionPerServiceBooking: 10}

	assert.Equal(t, 100.0, BookingCommission(1000, settings))
	assert.Equal(t, 25.5, BookingCommission(255, settings))
}

func TestBillingCommissionSubtractsAcceptanceRate(t *testing.T) {
	settings := &entity.Settings{
		CommissionPerServiceBooking: 10,
		CommissionPerBilling:        15,
	}

	// 5% residual on the billed amount, plus 2% add-on
	assert.Equal(t, 140.0, BillingCommission(2000, 2, settings))
	// billing rate below acceptance rate clamps to the add-on alone
	settings.CommissionPerBilling = 8
	assert.Equal(t, 40.0, BillingCommission(2000, 2, settings))
}

// ==================== SETTLEMENT FLOW ====================

type settlementFixture struct {
	svc            SettlementService
	booking        *entity.Booking
	vendorID       uuid.UUID
	vendorWallet   *entity.Wallet
	platformWallet *entity.Wallet
	ledger         *stubLedger
	events         *stubEvents
	bookings       *stubBookings
}

func newSettlementFixture(t *testing.T, vendorBalance float64, status entity.BookingStatus) *settlementFixture {
	t.Helper()

	vendorID := uuid.New()
	serviceID := uuid.New()
	future := time.Now().Add(5 * time.Minute)

	booking := &entity.Booking{
		Base:             entity.Base{ID: uuid.New()},
		BookingNo:        "BK-20260901-120000-0001",
		UserID:           uuid.New(),
		ServiceID:        serviceID,
		Status:           status,
		TotalAmount:      1000,
		SettlementStatus: entity.SettlementStatusUnsettled,
		SearchTimeout:    &future,
	}

	vendorWallet := &entity.Wallet{
		Base:      entity.Base{ID: uuid.New()},
		OwnerID:   vendorID,
		OwnerKind: entity.WalletOwnerVendor,
		Balance:   vendorBalance,
		Status:    entity.WalletStatusActive,
	}
	platformWallet := &entity.Wallet{
		Base:      entity.Base{ID: uuid.New()},
		OwnerID:   entity.PlatformOwnerID,
		OwnerKind: entity.WalletOwnerPlatform,
		Status:    entity.WalletStatusActive,
	}

	ledger := &stubLedger{}
	events := &stubEvents{seen: make(map[string]bool)}
	bookings := &stubBookings{bookings: map[uuid.UUID]*entity.Booking{booking.ID: booking}}

	repo := &repository.Repository{
		Booking: bookings,
		BookingVendor: &stubEntries{entries: map[uuid.UUID]*entity.BookingVendor{
			vendorID: {BookingID: booking.ID, VendorID: vendorID, Response: entity.VendorResponsePending},
		}},
		Wallet:      newStubWallets(vendorWallet, platformWallet),
		Transaction: ledger,
		WebhookEvent: events,
		Settings: &stubSettings{settings: &entity.Settings{
			CommissionPerServiceBooking: 10,
			CommissionPerBilling:        15,
		}},
		Service: &stubServices{services: map[uuid.UUID]*entity.Service{
			serviceID: {Name: "Deep Cleaning", Price: 1000, AddOnCommissionRate: 2, Active: true},
		}},
	}

	return &settlementFixture{
		svc:            NewSettlementService(stubDB{}, repo, nil, zap.NewNop()),
		booking:        booking,
		vendorID:       vendorID,
		vendorWallet:   vendorWallet,
		platformWallet: platformWallet,
		ledger:         ledger,
		events:         events,
		bookings:       bookings,
	}
}

func TestAcceptBookingMovesCommission(t *testing.T) {
	f := newSettlementFixture(t, 500, entity.BookingStatusSearching)

	resp, err := f.svc.AcceptBooking(context.Background(), f.booking.ID.String(), f.vendorID)
	require.NoError(t, err)
	require.NotNil(t, resp)

	// 10% of the 1000 total moved vendor -> platform
	assert.Equal(t, 400.0, f.vendorWallet.Balance)
	assert.Equal(t, 100.0, f.platformWallet.Balance)

	assert.Equal(t, entity.BookingStatusAccepted, f.booking.Status)
	require.NotNil(t, f.booking.AssignedVendorID)
	assert.Equal(t, f.vendorID, *f.booking.AssignedVendorID)

	require.Len(t, f.ledger.created, 2)
	debit, credit := f.ledger.created[0], f.ledger.created[1]
	assert.Equal(t, entity.TxDirectionDebit, debit.Direction)
	assert.Equal(t, entity.TxDirectionCredit, credit.Direction)
	assert.Equal(t, entity.TxStatusSuccess, debit.Status)
	assert.Equal(t, entity.TxStatusSuccess, credit.Status)
	assert.Equal(t, 100.0, debit.Amount)
	assert.Equal(t, debit.ReferenceGroup, credit.ReferenceGroup)
}

func TestAcceptBookingInsufficientBalance(t *testing.T) {
	f := newSettlementFixture(t, 50, entity.BookingStatusSearching)

	_, err := f.svc.AcceptBooking(context.Background(), f.booking.ID.String(), f.vendorID)
	assert.ErrorIs(t, err, utils.ErrInsufficientBalance)

	assert.Equal(t, 50.0, f.vendorWallet.Balance)
	assert.Empty(t, f.ledger.created)
	assert.Nil(t, f.booking.AssignedVendorID)
}

func TestSettlePaymentDirectDebit(t *testing.T) {
	f := newSettlementFixture(t, 500, entity.BookingStatusCompleted)
	f.booking.AssignedVendorID = &f.vendorID

	// billed 2000: 5% residual rate + 2% add-on = 140
	resp, err := f.svc.SettlePayment(context.Background(), SettlePaymentInput{
		BookingID: f.booking.ID.String(),
		Amount:    2000,
		Method:    "gateway",
		EventID:   "evt_direct",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, 360.0, f.vendorWallet.Balance)
	assert.Equal(t, 140.0, f.platformWallet.Balance)
	assert.Equal(t, 0.0, f.vendorWallet.PendingBalance)

	assert.Equal(t, entity.SettlementStatusSettled, f.booking.SettlementStatus)
	require.NotNil(t, f.booking.BillingAmount)
	assert.Equal(t, 2000.0, *f.booking.BillingAmount)
	require.NotNil(t, f.booking.BillingCommission)
	assert.Equal(t, 140.0, *f.booking.BillingCommission)

	require.Len(t, f.ledger.created, 2)
	assert.Equal(t, f.ledger.created[0].ReferenceGroup, f.ledger.created[1].ReferenceGroup)
}

func TestSettlePaymentLiabilityFallback(t *testing.T) {
	f := newSettlementFixture(t, 100, entity.BookingStatusCompleted)
	f.booking.AssignedVendorID = &f.vendorID

	_, err := f.svc.SettlePayment(context.Background(), SettlePaymentInput{
		BookingID: f.booking.ID.String(),
		Amount:    2000,
		Method:    "cash",
		EventID:   "evt_liability",
	})
	require.NoError(t, err)

	// no balance moves: the full commission becomes vendor debt
	assert.Equal(t, 100.0, f.vendorWallet.Balance)
	assert.Equal(t, 0.0, f.platformWallet.Balance)
	assert.Equal(t, 140.0, f.vendorWallet.PendingBalance)
	require.NotNil(t, f.vendorWallet.PendingSince)

	assert.Equal(t, entity.SettlementStatusOutstanding, f.booking.SettlementStatus)

	require.Len(t, f.ledger.created, 2)
	liability, receivable := f.ledger.created[0], f.ledger.created[1]
	assert.Equal(t, entity.TxDirectionLiability, liability.Direction)
	assert.Equal(t, entity.TxStatusOutstanding, liability.Status)
	assert.Equal(t, entity.TxDirectionCredit, receivable.Direction)
	assert.Equal(t, entity.TxStatusOutstanding, receivable.Status)
	assert.Equal(t, liability.ReferenceGroup, receivable.ReferenceGroup)
}

func TestSettlePaymentReplay(t *testing.T) {
	f := newSettlementFixture(t, 500, entity.BookingStatusCompleted)
	f.booking.AssignedVendorID = &f.vendorID
	f.events.seen["evt_replay"] = true

	_, err := f.svc.SettlePayment(context.Background(), SettlePaymentInput{
		BookingID: f.booking.ID.String(),
		Amount:    2000,
		Method:    "gateway",
		EventID:   "evt_replay",
	})
	assert.ErrorIs(t, err, utils.ErrAlreadyProcessed)

	assert.Equal(t, 500.0, f.vendorWallet.Balance)
	assert.Empty(t, f.ledger.created)
	assert.Equal(t, entity.SettlementStatusUnsettled, f.booking.SettlementStatus)
}

func TestSettlePaymentRequiresCompletedBooking(t *testing.T) {
	f := newSettlementFixture(t, 500, entity.BookingStatusInProgress)
	f.booking.AssignedVendorID = &f.vendorID

	_, err := f.svc.SettlePayment(context.Background(), SettlePaymentInput{
		BookingID: f.booking.ID.String(),
		Amount:    2000,
		Method:    "gateway",
		EventID:   "evt_early",
	})
	assert.ErrorIs(t, err, utils.ErrBookingNotAvailable)
	assert.Empty(t, f.ledger.created)
}
