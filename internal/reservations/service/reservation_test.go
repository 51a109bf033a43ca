package service

import (
	"context"
	"testing"
	"time"

	reserrors "lendly/internal/reservations/errors"
	apperrors "lendly/pkg/errors"
	"lendly/pkg/model"
)

func TestSubmit_CreatesBookingWithPerDayLocks(t *testing.T) {
	var createdBooking *model.Booking
	var createdLocks []*model.BookingLock

	repo := &mockBookingRepository{
		createFunc: func(_ context.Context, b *model.Booking) error {
			createdBooking = b
			return nil
		},
	}
	lockRepo := &mockBookingLockRepository{
		createAllFunc: func(_ context.Context, locks []*model.BookingLock) error {
			createdLocks = locks
			return nil
		},
	}
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}
	publisher := &recordingPublisher{}

	svc := newTestService(repo, lockRepo, items, publisher)

	booking, err := svc.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("expected status pending, got %s", booking.Status)
	}
	if booking.ID == "" {
		t.Error("expected a generated booking ID")
	}
	if booking.OwnerID != "owner-1" || booking.ItemName != "Cargo Bike" {
		t.Errorf("expected denormalized item fields, got owner=%s item=%s", booking.OwnerID, booking.ItemName)
	}

	wantKeys := []string{
		"item-1_2026-03-10",
		"item-1_2026-03-11",
		"item-1_2026-03-12",
	}
	if len(booking.LockIDs) != len(wantKeys) {
		t.Fatalf("expected %d lock IDs, got %d", len(wantKeys), len(booking.LockIDs))
	}
	for i, want := range wantKeys {
		if booking.LockIDs[i] != want {
			t.Errorf("lock ID %d: expected %q, got %q", i, want, booking.LockIDs[i])
		}
	}

	if createdBooking == nil {
		t.Fatal("expected booking to be persisted")
	}
	if len(createdLocks) != 3 {
		t.Fatalf("expected 3 lock documents, got %d", len(createdLocks))
	}
	for i, lock := range createdLocks {
		if lock.ID != wantKeys[i] {
			t.Errorf("lock %d: expected _id %q, got %q", i, wantKeys[i], lock.ID)
		}
		if lock.BookingID != booking.ID {
			t.Errorf("lock %d: expected booking_id %q, got %q", i, booking.ID, lock.BookingID)
		}
	}

	if len(booking.StatusHistory) != 1 || booking.StatusHistory[0].Status != model.StatusPending {
		t.Errorf("expected a single pending history entry, got %+v", booking.StatusHistory)
	}
	if booking.StatusHistory[0].By != "renter-1" {
		t.Errorf("expected history entry attributed to renter, got %q", booking.StatusHistory[0].By)
	}

	events := publisher.published()
	if len(events) != 1 || events[0] != "reservation.requested" {
		t.Errorf("expected a reservation.requested event, got %v", events)
	}
}

func TestSubmit_RejectsHeldDatesBeforeCommit(t *testing.T) {
	transactionRan := false
	repo := &mockBookingRepository{
		createFunc: func(_ context.Context, _ *model.Booking) error {
			transactionRan = true
			return nil
		},
	}
	lockRepo := &mockBookingLockRepository{
		findExistingFunc: func(_ context.Context, keys []string) ([]string, error) {
			return []string{keys[1]}, nil
		},
	}
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := newTestService(repo, lockRepo, items, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), testRequest())
	assertAppError(t, err, apperrors.CodeConflict, "dates already booked")

	if appErr := apperrors.AsAppError(err); appErr.Details["conflicting_keys"] == nil {
		t.Error("expected conflicting keys in error details")
	}
	if transactionRan {
		t.Error("expected no write after conflict detection")
	}
}

func TestSubmit_DuplicateLockDuringCommitAbortsBooking(t *testing.T) {
	// Both submitters pass the read phase; the loser hits the _id uniqueness
	// inside the transaction and the whole write set rolls back.
	repo := &mockBookingRepository{}
	lockRepo := &mockBookingLockRepository{
		createAllFunc: func(_ context.Context, _ []*model.BookingLock) error {
			return duplicateKeyError()
		},
	}
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}
	publisher := &recordingPublisher{}

	svc := newTestService(repo, lockRepo, items, publisher)

	_, err := svc.Submit(context.Background(), testRequest())
	assertAppError(t, err, apperrors.CodeConflict, "dates already booked")

	if events := publisher.published(); len(events) != 0 {
		t.Errorf("expected no event after aborted commit, got %v", events)
	}
}

func TestSubmit_OwnerCannotBookOwnItem(t *testing.T) {
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, items, &recordingPublisher{})

	req := testRequest()
	req.RenterID = "owner-1"

	_, err := svc.Submit(context.Background(), req)
	assertAppError(t, err, apperrors.CodeValidation, "owners cannot book their own items")
}

func TestSubmit_PastStartDateRejected(t *testing.T) {
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, items, &recordingPublisher{})

	req := testRequest()
	req.StartDate = "2026-02-20"
	req.EndDate = "2026-02-22"

	_, err := svc.Submit(context.Background(), req)
	assertAppError(t, err, apperrors.CodeValidation, "start date is in the past")
}

func TestSubmit_InvertedRangeRejected(t *testing.T) {
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, items, &recordingPublisher{})

	req := testRequest()
	req.StartDate = "2026-03-12"
	req.EndDate = "2026-03-10"

	_, err := svc.Submit(context.Background(), req)
	assertAppError(t, err, apperrors.CodeValidation, "end date is before start date")
}

func TestSubmit_RecurringPolicyRejectsMultiDay(t *testing.T) {
	item := testItem()
	item.Availability = model.Availability{
		Type:       model.AvailabilityRecurring,
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
	}
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return item, nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, items, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), testRequest())
	assertAppError(t, err, apperrors.CodeValidation, "multi-day not allowed")
}

func TestSubmit_RangeExceedingCapRejected(t *testing.T) {
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, items, &recordingPublisher{})
	svc.cfg.MaxBookingRangeDays = 2

	_, err := svc.Submit(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for over-long range")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSubmit_UnknownItem(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, &mockItemReader{}, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), testRequest())
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSubmit_InvalidRequestPayload(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, &mockItemReader{}, &recordingPublisher{})

	req := testRequest()
	req.StartDate = "10/03/2026"

	_, err := svc.Submit(context.Background(), req)
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error for malformed date, got %v", err)
	}
}

func TestSubmit_IdempotencyKeyReplaysExistingBooking(t *testing.T) {
	existing := &model.Booking{
		ID:             "booking-1",
		ItemID:         "item-1",
		RenterID:       "renter-1",
		Status:         model.StatusPending,
		IdempotencyKey: "3f6f9f1e-8f3a-4a59-9c4d-2f1f3f2a1b11",
	}

	created := 0
	repo := &mockBookingRepository{
		findByIdempotencyKeyFunc: func(_ context.Context, key string) (*model.Booking, error) {
			if key == existing.IdempotencyKey {
				return existing, nil
			}
			return nil, reserrors.ErrNotFound
		},
		createFunc: func(_ context.Context, _ *model.Booking) error {
			created++
			return nil
		},
	}

	svc := newTestService(repo, &mockBookingLockRepository{}, &mockItemReader{}, &recordingPublisher{})

	req := testRequest()
	req.IdempotencyKey = existing.IdempotencyKey

	booking, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID != "booking-1" {
		t.Errorf("expected replayed booking, got %s", booking.ID)
	}
	if created != 0 {
		t.Errorf("expected no new booking, %d created", created)
	}
}

func TestGetByID_AppliesReadTimeArchival(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return &model.Booking{
				ID:       id,
				Status:   model.StatusAccepted,
				EndDate:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
				OwnerID:  "owner-1",
				RenterID: "renter-1",
			}, nil
		},
	}

	svc := newTestService(repo, &mockBookingLockRepository{}, &mockItemReader{}, &recordingPublisher{})

	booking, err := svc.GetByID(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusArchived {
		t.Errorf("expected archived status for elapsed booking, got %s", booking.Status)
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockBookingLockRepository{}, &mockItemReader{}, &recordingPublisher{})

	_, err := svc.GetByID(context.Background(), "")
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func assertAppError(t *testing.T, err error, wantCode, wantMessage string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error %q, got nil", wantMessage)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != wantCode {
		t.Errorf("expected code %s, got %s (%v)", wantCode, appErr.Code, err)
	}
	if appErr.Message != wantMessage {
		t.Errorf("expected message %q, got %q", wantMessage, appErr.Message)
	}
}
