package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "lendly/internal/reservations/errors"
	"lendly/internal/reservations/validator"
	"lendly/pkg/config"
	mongotx "lendly/pkg/db/mongo"
	"lendly/pkg/logger"
	"lendly/pkg/model"
)

// Mock repositories for testing.

type mockBookingRepository struct {
	createFunc               func(ctx context.Context, booking *model.Booking) error
	findByIDFunc             func(ctx context.Context, id string) (*model.Booking, error)
	findByIdempotencyKeyFunc func(ctx context.Context, key string) (*model.Booking, error)
	findByRenterFunc         func(ctx context.Context, renterID string) ([]*model.Booking, error)
	findByOwnerFunc          func(ctx context.Context, ownerID string) ([]*model.Booking, error)
	updateStatusFunc         func(ctx context.Context, id string, status string, entry model.StatusEntry) error
	executeTransactionFunc   func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	if m.findByIdempotencyKeyFunc != nil {
		return m.findByIdempotencyKeyFunc(ctx, key)
	}
	return nil, reserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByRenter(ctx context.Context, renterID string) ([]*model.Booking, error) {
	if m.findByRenterFunc != nil {
		return m.findByRenterFunc(ctx, renterID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	if m.findByOwnerFunc != nil {
		return m.findByOwnerFunc(ctx, ownerID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status string, entry model.StatusEntry) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, entry)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	// Mirrors the real manager: the callback runs with a session context and
	// its error aborts the whole write set.
	return fn(nil)
}

type mockBookingLockRepository struct {
	findExistingFunc func(ctx context.Context, keys []string) ([]string, error)
	createAllFunc    func(ctx context.Context, locks []*model.BookingLock) error
	deleteByKeysFunc func(ctx context.Context, keys []string) error
}

func (m *mockBookingLockRepository) FindExisting(ctx context.Context, keys []string) ([]string, error) {
	if m.findExistingFunc != nil {
		return m.findExistingFunc(ctx, keys)
	}
	return nil, nil
}

func (m *mockBookingLockRepository) CreateAll(ctx context.Context, locks []*model.BookingLock) error {
	if m.createAllFunc != nil {
		return m.createAllFunc(ctx, locks)
	}
	return nil
}

func (m *mockBookingLockRepository) DeleteByKeys(ctx context.Context, keys []string) error {
	if m.deleteByKeysFunc != nil {
		return m.deleteByKeysFunc(ctx, keys)
	}
	return nil
}

type mockItemReader struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Item, error)
}

func (m *mockItemReader) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reserrors.ErrItemNotFound
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.events...)
}

// duplicateKeyError builds the error shape the driver returns when a lock
// _id is already claimed; mongo.IsDuplicateKeyError recognizes it.
func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "E11000 duplicate key error"},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		MaxBookingRangeDays: 90,
	}
}

func testValidator() *validator.ReservationValidator {
	return validator.NewReservationValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

// testNow is the fixed clock used across service tests: 2026-03-01 10:00 UTC.
func testNow() time.Time {
	return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func newTestService(
	repo *mockBookingRepository,
	lockRepo *mockBookingLockRepository,
	items *mockItemReader,
	publisher *recordingPublisher,
) *reservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		items:     items,
		validator: testValidator(),
		publisher: publisher,
		cfg:       testConfig(),
		now:       testNow,
	}
}

func testItem() *model.Item {
	return &model.Item{
		ID:              "item-1",
		OwnerID:         "owner-1",
		OwnerName:       "Olive Owner",
		OwnerEmail:      "olive@example.com",
		Name:            "Cargo Bike",
		DailyPriceCents: 2500,
		Availability:    model.Availability{Type: model.AvailabilityAlways},
	}
}

func testRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		ItemID:      "item-1",
		RenterID:    "renter-1",
		RenterName:  "Rita Renter",
		RenterEmail: "rita@example.com",
		StartDate:   "2026-03-10",
		EndDate:     "2026-03-12",
	}
}
