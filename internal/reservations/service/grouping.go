package service

import (
	"context"

	apperrors "lendly/pkg/errors"
	"lendly/pkg/model"
)

// GroupForUser partitions a user's bookings into the four display buckets,
// applying read-time archival and legacy status normalization before
// bucketing. All four buckets are always present in the result.
func (s *reservationService) GroupForUser(ctx context.Context, userID, role string) (map[string][]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	var (
		bookings []*model.Booking
		err      error
	)
	switch role {
	case RoleRenter:
		bookings, err = s.repo.FindByRenter(ctx, userID)
	case RoleOwner:
		bookings, err = s.repo.FindByOwner(ctx, userID)
	default:
		return nil, apperrors.InvalidInput("role must be 'renter' or 'owner'")
	}
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings for grouping", "user_id", userID, "role", role, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	now := s.now()
	groups := map[string][]*model.Booking{
		model.StatusPending:  {},
		model.StatusAccepted: {},
		model.StatusDeclined: {},
		model.StatusArchived: {},
	}

	for _, booking := range bookings {
		status := booking.EffectiveStatus(now)
		booking.Status = status
		groups[status] = append(groups[status], booking)
	}

	return groups, nil
}
