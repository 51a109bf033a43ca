package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "lendly/internal/reservations/errors"
	"lendly/internal/reservations/events"
	apperrors "lendly/pkg/errors"
	"lendly/pkg/model"
)

// Accept transitions a pending booking to accepted. Only the item owner may
// accept; the lock documents stay in place, now representing a confirmed
// block on those days.
func (s *reservationService) Accept(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.loadForTransition(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}

	entry := model.StatusEntry{
		Status: model.StatusAccepted,
		At:     s.now().UTC().Truncate(time.Millisecond),
		By:     actorID,
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, model.StatusAccepted, entry); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to accept booking", err)
	}

	booking.Status = model.StatusAccepted
	booking.StatusHistory = append(booking.StatusHistory, entry)
	booking.UpdatedAt = entry.At

	s.cfg.Log.Info("Booking accepted", "booking_id", bookingID, "owner_id", actorID)
	s.publisher.Publish(ctx, events.TypeAccepted, booking)

	return booking, nil
}

// Decline transitions a pending booking to declined and releases its lock
// documents in the same transaction, so the declined days become bookable
// again immediately.
func (s *reservationService) Decline(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.loadForTransition(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}

	entry := model.StatusEntry{
		Status: model.StatusDeclined,
		At:     s.now().UTC().Truncate(time.Millisecond),
		By:     actorID,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, bookingID, model.StatusDeclined, entry); err != nil {
			if errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", bookingID)
			}
			return apperrors.Internal("Failed to decline booking", err)
		}
		if err := s.lockRepo.DeleteByKeys(sessCtx, booking.LockIDs); err != nil {
			return apperrors.Internal("Failed to release booking locks", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = model.StatusDeclined
	booking.StatusHistory = append(booking.StatusHistory, entry)
	booking.UpdatedAt = entry.At

	s.cfg.Log.Info("Booking declined, locks released",
		"booking_id", bookingID,
		"owner_id", actorID,
		"released_locks", len(booking.LockIDs),
	)
	s.publisher.Publish(ctx, events.TypeDeclined, booking)

	return booking, nil
}

// loadForTransition fetches the booking and enforces the transition
// preconditions shared by Accept and Decline: the actor must be the item
// owner and the booking must still be effectively pending (a pending booking
// whose end date has passed reads as archived and cannot transition).
func (s *reservationService) loadForTransition(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if actorID == "" {
		return nil, apperrors.InvalidInput("Actor ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if actorID != booking.OwnerID {
		return nil, apperrors.Forbidden("Only the item owner can accept or decline a booking")
	}

	if status := booking.EffectiveStatus(s.now()); status != model.StatusPending {
		return nil, apperrors.Conflict("Booking is not pending").WithDetails(map[string]any{
			"status": status,
		})
	}

	return booking, nil
}
