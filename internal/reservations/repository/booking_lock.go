package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lendly/pkg/config"
	"lendly/pkg/model"
)

const (
	LockCollectionName = "Booking_locks"
)

// BookingLockRepository manages the per-day lock documents that arbitrate
// between concurrent reservations of the same item.
type BookingLockRepository interface {
	// FindExisting returns the subset of keys that currently have a live
	// lock. Read-only; used for early rejection before committing.
	FindExisting(ctx context.Context, keys []string) ([]string, error)
	// CreateAll inserts one lock document per key with the key as _id. A
	// duplicate-key error means another booking claimed one of the days;
	// inside a transaction the caller's whole write set then aborts.
	CreateAll(ctx context.Context, locks []*model.BookingLock) error
	DeleteByKeys(ctx context.Context, keys []string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoBookingLockRepository) FindExisting(ctx context.Context, keys []string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		held     []string
		firstErr error
		wg       sync.WaitGroup
	)

	// One existence read per key, in parallel.
	wg.Add(len(keys))
	for _, key := range keys {
		go func(key string) {
			defer wg.Done()

			err := r.collection.FindOne(ctx, bson.M{"_id": key}).Err()
			if errors.Is(err, mongo.ErrNoDocuments) {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			held = append(held, key)
		}(key)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("failed to check lock existence: %w", firstErr)
	}

	// Restore derivation order for stable reporting.
	ordered := make([]string, 0, len(held))
	for _, key := range keys {
		for _, h := range held {
			if h == key {
				ordered = append(ordered, key)
				break
			}
		}
	}
	return ordered, nil
}

func (r *mongoBookingLockRepository) CreateAll(ctx context.Context, locks []*model.BookingLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(locks))
	for _, lock := range locks {
		lock.CreatedAt = now
		docs = append(docs, lock)
	}

	// Ordered insert: the first duplicate key aborts the rest.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (r *mongoBookingLockRepository) DeleteByKeys(ctx context.Context, keys []string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return fmt.Errorf("failed to delete booking locks: %w", err)
	}
	return nil
}
