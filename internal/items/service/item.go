package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	itemerrors "lendly/internal/items/errors"
	"lendly/internal/items/repository"
	"lendly/internal/items/validator"
	"lendly/pkg/config"
	apperrors "lendly/pkg/errors"
	"lendly/pkg/model"
	"lendly/pkg/sanitizer"
)

type ItemService interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Item, int64, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*model.Item, error)
	Update(ctx context.Context, id string, actorID string, updates *model.ItemUpdate) (*model.Item, error)
}

type itemService struct {
	repo      repository.ItemRepository
	validator *validator.ItemValidator
	cfg       *config.Config
}

func NewItemService(
	repo repository.ItemRepository,
	validator *validator.ItemValidator,
	cfg *config.Config,
) ItemService {
	return &itemService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *itemService) Create(ctx context.Context, item *model.Item) error {
	s.applyDefaults(item)
	s.sanitize(item)

	if err := s.validator.Validate(item); err != nil {
		s.cfg.Log.Warn("Item validation failed", "error", err)
		return apperrors.Validation("Item validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create item", "error", err)
		return apperrors.Internal("Failed to create item", err)
	}

	s.cfg.Log.Info("Item created",
		"id", item.ID,
		"owner_id", item.OwnerID,
		"availability_type", item.Availability.Type,
	)
	return nil
}

func (s *itemService) GetByID(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Item ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Item", id)
		}
		return nil, apperrors.Internal("Failed to retrieve item", err)
	}

	return item, nil
}

func (s *itemService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Item, int64, error) {
	var count int64
	var items []*model.Item
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count items", "error", errCount)
			errCount = apperrors.Internal("Failed to count items", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		items, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list items", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve items", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return items, count, nil
}

func (s *itemService) GetByOwner(ctx context.Context, ownerID string) ([]*model.Item, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	items, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve items by owner", err)
	}
	return items, nil
}

// Update applies owner-editable changes. Only the item's owner may mutate it.
func (s *itemService) Update(ctx context.Context, id string, actorID string, updates *model.ItemUpdate) (*model.Item, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Item ID cannot be empty")
	}
	if actorID == "" {
		return nil, apperrors.InvalidInput("Actor ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Item", id)
		}
		return nil, apperrors.Internal("Failed to check item existence", err)
	}

	if actorID != existing.OwnerID {
		return nil, apperrors.Forbidden("Only the item owner can update it")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Item update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeItemUpdates(existing, updates)
	s.sanitize(merged)

	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Item validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, itemerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Item", id)
		}
		s.cfg.Log.Error("Failed to update item", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update item", err)
	}

	s.cfg.Log.Info("Item updated", "id", id, "owner_id", actorID)
	return merged, nil
}

func (s *itemService) applyDefaults(item *model.Item) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Availability.Type == "" {
		item.Availability.Type = model.AvailabilityAlways
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
}

func (s *itemService) sanitize(item *model.Item) {
	item.Name = sanitizer.NormalizeName(item.Name)
	item.Description = sanitizer.TrimAndNormalize(item.Description)
	item.OwnerName = sanitizer.NormalizeName(item.OwnerName)
	item.OwnerEmail = sanitizer.NormalizeEmail(item.OwnerEmail)
}

func (s *itemService) mergeItemUpdates(existing *model.Item, updates *model.ItemUpdate) *model.Item {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.DailyPriceCents != nil {
		merged.DailyPriceCents = *updates.DailyPriceCents
	}
	if updates.Availability != nil {
		merged.Availability = *updates.Availability
	}
	if updates.HandoverStart != nil {
		merged.HandoverStart = *updates.HandoverStart
	}
	if updates.HandoverEnd != nil {
		merged.HandoverEnd = *updates.HandoverEnd
	}
	merged.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	return &merged
}
