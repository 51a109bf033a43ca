package service

import (
	"context"
	"testing"
	"time"

	itemerrors "lendly/internal/items/errors"
	"lendly/internal/items/validator"
	"lendly/pkg/config"
	apperrors "lendly/pkg/errors"
	"lendly/pkg/logger"
	"lendly/pkg/model"
)

// Mock repository for testing.
type mockItemRepository struct {
	createFunc      func(ctx context.Context, item *model.Item) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Item, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Item, error)
	findByOwnerFunc func(ctx context.Context, ownerID string) ([]*model.Item, error)
	updateFunc      func(ctx context.Context, id string, item *model.Item) error
	countFunc       func(ctx context.Context) (int64, error)
}

func (m *mockItemRepository) Create(ctx context.Context, item *model.Item) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	return nil
}

func (m *mockItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, itemerrors.ErrNotFound
}

func (m *mockItemRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Item, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Item{}, nil
}

func (m *mockItemRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Item, error) {
	if m.findByOwnerFunc != nil {
		return m.findByOwnerFunc(ctx, ownerID)
	}
	return []*model.Item{}, nil
}

func (m *mockItemRepository) Update(ctx context.Context, id string, item *model.Item) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, item)
	}
	return nil
}

func (m *mockItemRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockItemRepository) ItemService {
	cfg := testConfig()
	return NewItemService(repo, validator.NewItemValidator(cfg.Log), cfg)
}

func sampleItem() *model.Item {
	return &model.Item{
		OwnerID:         "owner-1",
		OwnerName:       "  Olive   Owner ",
		OwnerEmail:      " Olive@Example.COM ",
		Name:            "Cargo Bike",
		DailyPriceCents: 2500,
		Availability:    model.Availability{Type: model.AvailabilityAlways},
	}
}

func TestCreate_AppliesDefaultsAndSanitizes(t *testing.T) {
	var persisted *model.Item
	repo := &mockItemRepository{
		createFunc: func(_ context.Context, item *model.Item) error {
			persisted = item
			return nil
		},
	}

	svc := newTestService(repo)

	item := sampleItem()
	if err := svc.Create(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if persisted == nil {
		t.Fatal("expected item to be persisted")
	}
	if persisted.ID == "" {
		t.Error("expected a generated ID")
	}
	if persisted.OwnerName != "Olive Owner" {
		t.Errorf("expected normalized owner name, got %q", persisted.OwnerName)
	}
	if persisted.OwnerEmail != "olive@example.com" {
		t.Errorf("expected lowercased owner email, got %q", persisted.OwnerEmail)
	}
	if persisted.CreatedAt.IsZero() || persisted.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreate_InvalidItem(t *testing.T) {
	svc := newTestService(&mockItemRepository{})

	item := sampleItem()
	item.Name = "x"

	err := svc.Create(context.Background(), item)
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockItemRepository{})

	_, err := svc.GetByID(context.Background(), "missing")
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestGetAll_ListAndCountInParallel(t *testing.T) {
	repo := &mockItemRepository{
		countFunc: func(_ context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(_ context.Context, limit int, offset int64) ([]*model.Item, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Item{{ID: "item-1", Name: "Cargo Bike"}}, nil
		},
	}

	svc := newTestService(repo)

	// Run with -race to catch unsynchronized result writes.
	for i := 0; i < 20; i++ {
		items, count, err := svc.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(items) != 1 {
			t.Errorf("iteration %d: expected 1 item, got %d", i, len(items))
		}
	}
}

func TestUpdate_OwnerOnly(t *testing.T) {
	existing := sampleItem()
	existing.ID = "item-1"
	existing.OwnerName = "Olive Owner"
	existing.OwnerEmail = "olive@example.com"

	repo := &mockItemRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return existing, nil
		},
	}

	svc := newTestService(repo)

	newName := "Cargo Bike XL"
	updates := &model.ItemUpdate{Name: newName}

	_, err := svc.Update(context.Background(), "item-1", "intruder", updates)
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	updated, err := svc.Update(context.Background(), "item-1", "owner-1", updates)
	if err != nil {
		t.Fatalf("unexpected error for owner: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected updated name %q, got %q", newName, updated.Name)
	}
}

func TestUpdate_MergesOnlyProvidedFields(t *testing.T) {
	existing := sampleItem()
	existing.ID = "item-1"
	existing.OwnerName = "Olive Owner"
	existing.OwnerEmail = "olive@example.com"
	existing.Description = "Front-loader"

	var persisted *model.Item
	repo := &mockItemRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return existing, nil
		},
		updateFunc: func(_ context.Context, _ string, item *model.Item) error {
			persisted = item
			return nil
		},
	}

	svc := newTestService(repo)

	price := int64(3000)
	_, err := svc.Update(context.Background(), "item-1", "owner-1", &model.ItemUpdate{
		DailyPriceCents: &price,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if persisted.DailyPriceCents != 3000 {
		t.Errorf("expected updated price, got %d", persisted.DailyPriceCents)
	}
	if persisted.Name != "Cargo Bike" || persisted.Description != "Front-loader" {
		t.Errorf("expected untouched fields to survive, got name=%q desc=%q", persisted.Name, persisted.Description)
	}
}

func TestUpdate_InvalidMergedAvailability(t *testing.T) {
	existing := sampleItem()
	existing.ID = "item-1"
	existing.OwnerName = "Olive Owner"
	existing.OwnerEmail = "olive@example.com"

	repo := &mockItemRepository{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return existing, nil
		},
	}

	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), "item-1", "owner-1", &model.ItemUpdate{
		Availability: &model.Availability{Type: model.AvailabilityRecurring},
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error for weekday-less recurring policy, got %v", err)
	}
}
