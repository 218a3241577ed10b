package usecase

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/internal/dto/response"
	"service-dispatch/pkg/database"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	ledgerCurrency = "INR"

	// How long processed event ids stay in the cache fast path. The
	// webhook_events table remains authoritative forever.
	eventDedupTTL = 48 * time.Hour
)

// SettlePaymentInput carries one payment capture, from either the cash
// endpoint or the gateway webhook. EventID is the idempotency key.
type SettlePaymentInput struct {
	BookingID string
	Amount    float64
	Method    string
	EventID   string
}

// eventGuard is the cache fast path in front of the durable
// webhook-event table.
type eventGuard interface {
	EventSeen(ctx context.Context, eventID string) (bool, error)
	MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) error
}

type SettlementService interface {
	// AcceptBooking is the race-safe first-accept-wins path: exactly one
	// vendor gets the booking, and the acceptance commission moves from
	// the vendor wallet to the platform wallet in the same transaction.
	AcceptBooking(ctx context.Context, bookingID string, vendorID uuid.UUID) (*response.BookingResponse, error)

	// SettlePayment processes one payment capture exactly once. Replays
	// with a known event id return ErrAlreadyProcessed.
	SettlePayment(ctx context.Context, input SettlePaymentInput) (*response.BookingResponse, error)
}

type settlementService struct {
	db     database.PgxIface
	repo   *repository.Repository
	events eventGuard
	log    *zap.Logger
}

func NewSettlementService(db database.PgxIface, repo *repository.Repository, events eventGuard, log *zap.Logger) SettlementService {
	return &settlementService{
		db:     db,
		repo:   repo,
		events: events,
		log:    log.With(zap.String("service", "settlement")),
	}
}

// validateAcceptance checks every precondition of an acceptance against
// the row-locked booking and vendor entry. Order matters: the most
// specific refusal wins so callers get an actionable error.
func validateAcceptance(b *entity.Booking, entry *entity.BookingVendor, now time.Time) error {
	if entry == nil {
		return utils.ErrVendorNotEligible
	}
	if b.AssignedVendorID != nil {
		return utils.ErrBookingAlreadyAssigned
	}
	if b.Status == entity.BookingStatusExpired {
		return utils.ErrBookingExpired
	}
	if b.Status != entity.BookingStatusPending && b.Status != entity.BookingStatusSearching {
		return utils.ErrBookingNotAvailable
	}
	if entry.Response != entity.VendorResponsePending {
		return utils.ErrVendorAlreadyResponded
	}
	if b.SearchTimeout != nil && now.After(*b.SearchTimeout) {
		return utils.ErrBookingExpired
	}
	return nil
}

func (s *settlementService) AcceptBooking(ctx context.Context, bookingID string, vendorID uuid.UUID) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var booking *entity.Booking

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		b, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return utils.NotFound("booking", bookingID)
		}

		entry, err := s.repo.BookingVendor.FindEntryForUpdate(ctx, tx, id, vendorID)
		if err != nil {
			return err
		}

		if err := validateAcceptance(b, entry, now); err != nil {
			return err
		}

		commission := BookingCommission(b.TotalAmount, settings)

		vendorWallet, err := s.repo.Wallet.FindByOwnerForUpdate(ctx, tx, vendorID, entity.WalletOwnerVendor)
		if err != nil {
			return err
		}
		if vendorWallet == nil {
			return utils.NotFound("wallet", vendorID.String())
		}
		if vendorWallet.Status != entity.WalletStatusActive {
			return utils.ErrWalletFrozen
		}
		if vendorWallet.Balance < commission {
			return utils.ErrInsufficientBalance
		}

		platformWallet, err := s.repo.Wallet.FindByOwnerForUpdate(ctx, tx, entity.PlatformOwnerID, entity.WalletOwnerPlatform)
		if err != nil {
			return err
		}
		if platformWallet == nil {
			return utils.NotFound("wallet", "platform")
		}

		entry.Response = entity.VendorResponseAccepted
		entry.RespondedAt = &now
		if err := s.repo.BookingVendor.UpdateResponse(ctx, tx, entry); err != nil {
			return err
		}

		if err := b.Transition(entity.BookingStatusVendorAssigned, now); err != nil {
			return err
		}
		b.AssignedVendorID = &vendorID
		b.CommissionRate = settings.CommissionPerServiceBooking
		b.CommissionAmount = commission

		// write-time guard: zero rows means someone else won the race
		// after our locks were taken in a different order
		if err := s.repo.Booking.UpdateAssignment(ctx, tx, b); err != nil {
			return err
		}

		if err := s.repo.Booking.AppendHistory(ctx, tx, &entity.BookingStatusHistory{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:  id,
			Status:     entity.BookingStatusVendorAssigned,
			ActorID:    &vendorID,
			ActorKind:  entity.ActorKindVendor,
			Reason:     "vendor accepted",
		}); err != nil {
			return err
		}

		// assignment and acceptance happen in one act here, so the
		// booking lands on accepted with both steps in the history
		if err := b.Transition(entity.BookingStatusAccepted, now); err != nil {
			return err
		}
		if err := s.repo.Booking.UpdateStatus(ctx, tx, b); err != nil {
			return err
		}
		if err := s.repo.Booking.AppendHistory(ctx, tx, &entity.BookingStatusHistory{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:  id,
			Status:     entity.BookingStatusAccepted,
			ActorID:    &vendorID,
			ActorKind:  entity.ActorKindVendor,
			Reason:     "acceptance settled",
		}); err != nil {
			return err
		}

		group := uuid.New()
		remark := fmt.Sprintf("booking commission for %s", b.BookingNo)

		if err := s.repo.Transaction.Create(ctx, tx, &entity.Transaction{
			Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			WalletID:       vendorWallet.ID,
			OwnerID:        vendorID,
			OwnerKind:      entity.WalletOwnerVendor,
			BookingID:      &id,
			Amount:         commission,
			Currency:       ledgerCurrency,
			Direction:      entity.TxDirectionDebit,
			Status:         entity.TxStatusSuccess,
			ReferenceGroup: group,
			Remark:         remark,
		}); err != nil {
			return err
		}
		if err := s.repo.Wallet.ApplyDelta(ctx, tx, vendorWallet.ID, -commission, now); err != nil {
			return err
		}

		if err := s.repo.Transaction.Create(ctx, tx, &entity.Transaction{
			Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			WalletID:       platformWallet.ID,
			OwnerID:        entity.PlatformOwnerID,
			OwnerKind:      entity.WalletOwnerPlatform,
			BookingID:      &id,
			Amount:         commission,
			Currency:       ledgerCurrency,
			Direction:      entity.TxDirectionCredit,
			Status:         entity.TxStatusSuccess,
			ReferenceGroup: group,
			Remark:         remark,
		}); err != nil {
			return err
		}
		if err := s.repo.Wallet.ApplyDelta(ctx, tx, platformWallet.ID, commission, now); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking accepted",
		zap.String("booking_id", bookingID),
		zap.String("vendor_id", vendorID.String()),
		zap.Float64("commission", booking.CommissionAmount),
	)

	entries, entErr := s.repo.BookingVendor.FindByBookingID(ctx, booking.ID)
	if entErr != nil {
		s.log.Warn("Failed to load vendor entries for response", zap.Error(entErr))
	}
	history, histErr := s.repo.Booking.FindHistory(ctx, booking.ID)
	if histErr != nil {
		s.log.Warn("Failed to load status history for response", zap.Error(histErr))
	}

	resp := response.BookingToResponse(booking, entries, history)
	return &resp, nil
}

func (s *settlementService) SettlePayment(ctx context.Context, input SettlePaymentInput) (*response.BookingResponse, error) {
	id, err := uuid.Parse(input.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", input.BookingID, err)
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", utils.ErrValidation)
	}

	// Fast path. A cache hit is always safe to trust: ids only enter the
	// cache after their transaction committed.
	if s.events != nil {
		seen, err := s.events.EventSeen(ctx, input.EventID)
		if err != nil {
			s.log.Warn("Event dedup cache unavailable, falling through to database", zap.Error(err))
		} else if seen {
			return nil, utils.ErrAlreadyProcessed
		}
	}

	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var booking *entity.Booking

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		claimed, err := s.repo.WebhookEvent.InsertIfAbsent(ctx, tx, input.EventID, &id, now)
		if err != nil {
			return err
		}
		if !claimed {
			return utils.ErrAlreadyProcessed
		}

		b, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return utils.NotFound("booking", input.BookingID)
		}
		if b.SettlementStatus != entity.SettlementStatusUnsettled {
			return utils.ErrAlreadyProcessed
		}
		if b.Status != entity.BookingStatusCompleted {
			return utils.ErrBookingNotAvailable
		}
		if b.AssignedVendorID == nil {
			return utils.ErrBookingNotAvailable
		}
		vendorID := *b.AssignedVendorID

		service, err := s.repo.Service.FindByID(ctx, b.ServiceID)
		if err != nil {
			return err
		}
		if service == nil {
			return utils.NotFound("service", b.ServiceID.String())
		}

		commission := BillingCommission(input.Amount, service.AddOnCommissionRate, settings)

		vendorWallet, err := s.repo.Wallet.FindByOwnerForUpdate(ctx, tx, vendorID, entity.WalletOwnerVendor)
		if err != nil {
			return err
		}
		if vendorWallet == nil {
			return utils.NotFound("wallet", vendorID.String())
		}

		platformWallet, err := s.repo.Wallet.FindByOwnerForUpdate(ctx, tx, entity.PlatformOwnerID, entity.WalletOwnerPlatform)
		if err != nil {
			return err
		}
		if platformWallet == nil {
			return utils.NotFound("wallet", "platform")
		}

		group := uuid.New()
		remark := fmt.Sprintf("billing commission for %s (%s)", b.BookingNo, input.Method)

		if vendorWallet.Balance >= commission {
			if err := s.repo.Transaction.Create(ctx, tx, &entity.Transaction{
				Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				WalletID:       vendorWallet.ID,
				OwnerID:        vendorID,
				OwnerKind:      entity.WalletOwnerVendor,
				BookingID:      &id,
				Amount:         commission,
				Currency:       ledgerCurrency,
				Direction:      entity.TxDirectionDebit,
				Status:         entity.TxStatusSuccess,
				ReferenceGroup: group,
				Remark:         remark,
			}); err != nil {
				return err
			}
			if err := s.repo.Wallet.ApplyDelta(ctx, tx, vendorWallet.ID, -commission, now); err != nil {
				return err
			}

			if err := s.repo.Transaction.Create(ctx, tx, &entity.Transaction{
				Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				WalletID:       platformWallet.ID,
				OwnerID:        entity.PlatformOwnerID,
				OwnerKind:      entity.WalletOwnerPlatform,
				BookingID:      &id,
				Amount:         commission,
				Currency:       ledgerCurrency,
				Direction:      entity.TxDirectionCredit,
				Status:         entity.TxStatusSuccess,
				ReferenceGroup: group,
				Remark:         remark,
			}); err != nil {
				return err
			}
			if err := s.repo.Wallet.ApplyDelta(ctx, tx, platformWallet.ID, commission, now); err != nil {
				return err
			}

			b.SettlementStatus = entity.SettlementStatusSettled
		} else {
			// Liability fallback: the vendor owes the full commission.
			// Nothing moves into the platform balance until the debt is
			// recovered, so the platform side is outstanding too.
			if err := s.repo.Transaction.Create(ctx, tx, &entity.Transaction{
				Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				WalletID:       vendorWallet.ID,
				OwnerID:        vendorID,
				OwnerKind:      entity.WalletOwnerVendor,
				BookingID:      &id,
				Amount:         commission,
				Currency:       ledgerCurrency,
				Direction:      entity.TxDirectionLiability,
				Status:         entity.TxStatusOutstanding,
				ReferenceGroup: group,
				Remark:         remark,
			}); err != nil {
				return err
			}
			if err := s.repo.Wallet.AddPending(ctx, tx, vendorWallet.ID, commission, now); err != nil {
				return err
			}

			if err := s.repo.Transaction.Create(ctx, tx, &entity.Transaction{
				Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				WalletID:       platformWallet.ID,
				OwnerID:        entity.PlatformOwnerID,
				OwnerKind:      entity.WalletOwnerPlatform,
				BookingID:      &id,
				Amount:         commission,
				Currency:       ledgerCurrency,
				Direction:      entity.TxDirectionCredit,
				Status:         entity.TxStatusOutstanding,
				ReferenceGroup: group,
				Remark:         remark,
			}); err != nil {
				return err
			}

			b.SettlementStatus = entity.SettlementStatusOutstanding
		}

		billed := input.Amount
		b.BillingAmount = &billed
		b.BillingCommission = &commission
		b.UpdatedAt = now
		if err := s.repo.Booking.UpdateSettlement(ctx, tx, b); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.MarkEventSeen(ctx, input.EventID, eventDedupTTL); err != nil {
			s.log.Warn("Failed to cache processed event id", zap.Error(err))
		}
	}

	s.log.Info("Payment settled",
		zap.String("booking_id", input.BookingID),
		zap.String("event_id", input.EventID),
		zap.String("method", input.Method),
		zap.Float64("billed", input.Amount),
		zap.Float64("commission", *booking.BillingCommission),
		zap.String("settlement", string(booking.SettlementStatus)),
	)

	resp := response.BookingToResponse(booking, nil, nil)
	return &resp, nil
}
