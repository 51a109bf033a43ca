package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"lendly/internal/reservations/availability"
	reserrors "lendly/internal/reservations/errors"
	"lendly/internal/reservations/events"
	"lendly/internal/reservations/lockkey"
	"lendly/internal/reservations/repository"
	"lendly/internal/reservations/validator"
	"lendly/pkg/config"
	apperrors "lendly/pkg/errors"
	"lendly/pkg/model"
	"lendly/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	RoleRenter = "renter"
	RoleOwner  = "owner"

	reasonSelfBooking   = "owners cannot book their own items"
	reasonAlreadyBooked = "dates already booked"
)

type ReservationService interface {
	Submit(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Accept(ctx context.Context, bookingID, actorID string) (*model.Booking, error)
	Decline(ctx context.Context, bookingID, actorID string) (*model.Booking, error)
	GroupForUser(ctx context.Context, userID, role string) (map[string][]*model.Booking, error)
}

type reservationService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	items     repository.ItemReader
	validator *validator.ReservationValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewReservationService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	items repository.ItemReader,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		items:     items,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit runs the full reservation protocol: policy validation, conflict
// check, then one atomic write creating the booking and all its per-day lock
// documents. Concurrent submitters for overlapping days are arbitrated by the
// lock collection's _id uniqueness inside the transaction, so at most one of
// them commits.
func (s *reservationService) Submit(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Reservation request validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	// A retried submission carrying a known token replays the original
	// outcome instead of re-running the protocol.
	if req.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			s.cfg.Log.Info("Replaying booking for idempotency key",
				"booking_id", existing.ID,
				"idempotency_key", req.IdempotencyKey,
			)
			return existing, nil
		}
		if !errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to check idempotency key", err)
		}
	}

	dates, err := req.Range()
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, reserrors.ErrItemNotFound) {
			return nil, apperrors.NotFoundWithID("Item", req.ItemID)
		}
		return nil, apperrors.Internal("Failed to load item", err)
	}

	if req.RenterID == item.OwnerID {
		return nil, apperrors.Validation(reasonSelfBooking, nil)
	}

	// Range precheck runs before policy evaluation; a range that fails
	// either never reaches the conflict check.
	if err := availability.CheckRange(dates, s.now()); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}
	if err := availability.Evaluate(item.Availability, dates); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if days := dates.Days(); days > s.cfg.MaxBookingRangeDays {
		return nil, apperrors.Validation("requested range is too long", map[string]any{
			"days":     days,
			"max_days": s.cfg.MaxBookingRangeDays,
		})
	}

	keys := lockkey.Derive(item.ID, dates)

	conflicts, err := s.lockRepo.FindExisting(ctx, keys)
	if err != nil {
		return nil, apperrors.Internal("Failed to check date availability", err)
	}
	if len(conflicts) > 0 {
		return nil, apperrors.Conflict(reasonAlreadyBooked).WithDetails(map[string]any{
			"conflicting_keys": conflicts,
		})
	}

	booking := s.buildBooking(req, item, dates, keys)
	locks := buildLocks(booking)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		if err := s.lockRepo.CreateAll(sessCtx, locks); err != nil {
			// Another submission claimed one of the days between our
			// read and this write; the transaction aborts and the
			// booking insert above is rolled back with it.
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict(reasonAlreadyBooked)
			}
			return apperrors.Internal("Failed to create booking locks", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to commit reservation",
			"item_id", item.ID,
			"renter_id", req.RenterID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation created",
		"booking_id", booking.ID,
		"item_id", item.ID,
		"renter_id", booking.RenterID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
		"locked_days", len(keys),
	)
	s.publisher.Publish(ctx, events.TypeRequested, booking)

	return booking, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	booking.Status = booking.EffectiveStatus(s.now())
	return booking, nil
}

func (s *reservationService) buildBooking(req *model.ReservationRequest, item *model.Item, dates model.DateRange, keys []string) *model.Booking {
	now := s.now().UTC().Truncate(time.Millisecond)

	return &model.Booking{
		ID:          uuid.NewString(),
		ItemID:      item.ID,
		ItemName:    item.Name,
		RenterID:    req.RenterID,
		RenterName:  sanitizer.NormalizeName(req.RenterName),
		RenterEmail: sanitizer.NormalizeEmail(req.RenterEmail),
		OwnerID:     item.OwnerID,
		OwnerName:   item.OwnerName,
		OwnerEmail:  item.OwnerEmail,
		StartDate:   dates.Start,
		EndDate:     dates.End,
		Status:      model.StatusPending,
		StatusHistory: []model.StatusEntry{
			{Status: model.StatusPending, At: now, By: req.RenterID},
		},
		LockIDs:        keys,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func buildLocks(booking *model.Booking) []*model.BookingLock {
	locks := make([]*model.BookingLock, 0, len(booking.LockIDs))
	for i, key := range booking.LockIDs {
		day := booking.StartDate.AddDate(0, 0, i)
		locks = append(locks, &model.BookingLock{
			ID:        key,
			BookingID: booking.ID,
			ItemID:    booking.ItemID,
			Date:      day.UTC().Format("2006-01-02"),
			OwnerID:   booking.OwnerID,
		})
	}
	return locks
}
