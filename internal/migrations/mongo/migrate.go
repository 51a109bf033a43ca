package mongo

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lendly/internal/migrations/mongo/validators"
)

const (
	DefaultDBName = "lendly"
)

var (
	ItemsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "renter_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "start_date", Value: 1}}},
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetSparse(true),
		},
	}

	// Lock _id is the deterministic key, so uniqueness is free; these serve
	// release and audit queries.
	BookingLocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "date", Value: 1}}},
	}
)

func dbName() string {
	if name := os.Getenv("MONGO_DATABASE_NAME"); name != "" {
		return name
	}
	return DefaultDBName
}

func RunMigration(ctx context.Context, client *mongo.Client) error {
	db := client.Database(dbName())
	fmt.Printf("🚀 Running Lendly Mongo migrations on database: %s\n", db.Name())

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Items": {
			Indexes:   ItemsIndexes,
			Validator: validators.ItemValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Booking_locks": {
			Indexes:   BookingLocksIndexes,
			Validator: validators.BookingLockValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := rewriteLegacyStatuses(ctx, db); err != nil {
		return fmt.Errorf("failed to rewrite legacy booking statuses: %w", err)
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists, updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}

// rewriteLegacyStatuses collapses the old "confirmed" label onto "accepted".
// Idempotent: reruns match nothing.
func rewriteLegacyStatuses(ctx context.Context, db *mongo.Database) error {
	result, err := db.Collection("Bookings").UpdateMany(ctx,
		bson.M{"status": "confirmed"},
		bson.M{"$set": bson.M{"status": "accepted"}},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount > 0 {
		fmt.Printf("🔁 Rewrote %d legacy 'confirmed' booking(s) to 'accepted'\n", result.ModifiedCount)
	}
	return nil
}
