package service

import (
	"context"
	"sync"
	"testing"

	mongotx "lendly/pkg/db/mongo"
	apperrors "lendly/pkg/errors"
	"lendly/pkg/model"
)

// memoryLockStore mimics the lock collection's behavior: _id uniqueness with
// all-or-nothing inserts, so two overlapping claims cannot both commit.
type memoryLockStore struct {
	mu   sync.Mutex
	held map[string]string // key -> booking ID
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{held: make(map[string]string)}
}

func (s *memoryLockStore) FindExisting(_ context.Context, keys []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []string
	for _, key := range keys {
		if _, ok := s.held[key]; ok {
			found = append(found, key)
		}
	}
	return found, nil
}

func (s *memoryLockStore) CreateAll(_ context.Context, locks []*model.BookingLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lock := range locks {
		if _, ok := s.held[lock.ID]; ok {
			return duplicateKeyError()
		}
	}
	for _, lock := range locks {
		s.held[lock.ID] = lock.BookingID
	}
	return nil
}

func (s *memoryLockStore) DeleteByKeys(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.held, key)
	}
	return nil
}

func (s *memoryLockStore) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

// memoryBookingStore keeps committed bookings. Its transaction serializes
// conflicting write sets and rolls back booking inserts when the callback
// fails, matching the session abort semantics the service relies on.
type memoryBookingStore struct {
	mockBookingRepository

	txMu sync.Mutex

	mu       sync.Mutex
	bookings []*model.Booking
}

func (s *memoryBookingStore) Create(_ context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, booking)
	return nil
}

func (s *memoryBookingStore) ExecuteTransaction(_ context.Context, fn mongotx.TransactionFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.count()
	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.bookings = s.bookings[:snapshot]
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryBookingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func TestSubmit_ConcurrentOverlappingRequests_OneWinner(t *testing.T) {
	const submitters = 16

	lockStore := newMemoryLockStore()
	bookingStore := &memoryBookingStore{}

	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := &reservationService{
		repo:      bookingStore,
		lockRepo:  lockStore,
		items:     items,
		validator: testValidator(),
		publisher: &recordingPublisher{},
		cfg:       testConfig(),
		now:       testNow,
	}

	var wg sync.WaitGroup
	results := make([]error, submitters)

	wg.Add(submitters)
	for i := 0; i < submitters; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), testRequest())
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range results {
		if err == nil {
			winners++
			continue
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeConflict {
			t.Errorf("submitter %d: expected conflict for loser, got %v", i, err)
		}
		if appErr.Message != "dates already booked" {
			t.Errorf("submitter %d: unexpected conflict message %q", i, appErr.Message)
		}
	}

	if winners != 1 {
		t.Fatalf("expected exactly 1 winning submission, got %d", winners)
	}
	if got := lockStore.lockCount(); got != 3 {
		t.Errorf("expected 3 held locks after the race, got %d", got)
	}
	if got := bookingStore.count(); got != 1 {
		t.Errorf("expected 1 committed booking, got %d", got)
	}
}

func TestSubmit_SequentialOverlapRejectedByPrecheck(t *testing.T) {
	lockStore := newMemoryLockStore()
	bookingStore := &memoryBookingStore{}
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := &reservationService{
		repo:      bookingStore,
		lockRepo:  lockStore,
		items:     items,
		validator: testValidator(),
		publisher: &recordingPublisher{},
		cfg:       testConfig(),
		now:       testNow,
	}

	if _, err := svc.Submit(context.Background(), testRequest()); err != nil {
		t.Fatalf("first submission should win: %v", err)
	}

	// Partial overlap: one shared day is enough to lose.
	second := testRequest()
	second.RenterID = "renter-2"
	second.RenterName = "Rob Renter"
	second.StartDate = "2026-03-12"
	second.EndDate = "2026-03-14"

	_, err := svc.Submit(context.Background(), second)
	assertAppError(t, err, apperrors.CodeConflict, "dates already booked")

	// Adjacent, non-overlapping range still books.
	third := testRequest()
	third.RenterID = "renter-3"
	third.RenterName = "Ray Renter"
	third.StartDate = "2026-03-13"
	third.EndDate = "2026-03-14"

	if _, err := svc.Submit(context.Background(), third); err != nil {
		t.Fatalf("non-overlapping submission should win: %v", err)
	}

	if got := bookingStore.count(); got != 2 {
		t.Errorf("expected 2 committed bookings, got %d", got)
	}
	if got := lockStore.lockCount(); got != 5 {
		t.Errorf("expected 5 held locks, got %d", got)
	}
}

// The pre-commit read alone admits every submitter that checks before the
// first commit lands; only the commit-time _id claim actually arbitrates.
func TestFindExisting_ReadPhaseAloneAdmitsBothRacers(t *testing.T) {
	lockStore := newMemoryLockStore()
	keys := []string{"item-1_2026-03-10", "item-1_2026-03-11", "item-1_2026-03-12"}

	// Both racers run their conflict read before either commits.
	firstRead, err := lockStore.FindExisting(context.Background(), keys)
	if err != nil {
		t.Fatal(err)
	}
	secondRead, err := lockStore.FindExisting(context.Background(), keys)
	if err != nil {
		t.Fatal(err)
	}
	if len(firstRead) != 0 || len(secondRead) != 0 {
		t.Fatalf("expected both reads to see no conflict, got %v and %v", firstRead, secondRead)
	}

	// The store still rejects the second claim at commit time.
	claim := func(bookingID string) error {
		locks := make([]*model.BookingLock, 0, len(keys))
		for _, key := range keys {
			locks = append(locks, &model.BookingLock{ID: key, BookingID: bookingID})
		}
		return lockStore.CreateAll(context.Background(), locks)
	}

	if err := claim("booking-1"); err != nil {
		t.Fatalf("first claim should succeed: %v", err)
	}
	if err := claim("booking-2"); err == nil {
		t.Fatal("second claim must fail despite its clean read")
	}
}

func TestDecline_ReleasedDaysBecomeBookableAgain(t *testing.T) {
	lockStore := newMemoryLockStore()
	bookingStore := &memoryBookingStore{}
	items := &mockItemReader{
		findByIDFunc: func(_ context.Context, _ string) (*model.Item, error) {
			return testItem(), nil
		},
	}

	svc := &reservationService{
		repo:      bookingStore,
		lockRepo:  lockStore,
		items:     items,
		validator: testValidator(),
		publisher: &recordingPublisher{},
		cfg:       testConfig(),
		now:       testNow,
	}

	first, err := svc.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("first submission should win: %v", err)
	}

	bookingStore.findByIDFunc = func(_ context.Context, _ string) (*model.Booking, error) {
		return first, nil
	}

	if _, err := svc.Decline(context.Background(), first.ID, "owner-1"); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if got := lockStore.lockCount(); got != 0 {
		t.Fatalf("expected all locks released after decline, got %d", got)
	}

	retry := testRequest()
	retry.RenterID = "renter-2"
	retry.RenterName = "Rob Renter"

	if _, err := svc.Submit(context.Background(), retry); err != nil {
		t.Fatalf("expected released days to be bookable again: %v", err)
	}
}
