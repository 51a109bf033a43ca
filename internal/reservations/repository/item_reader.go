package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	reserrors "lendly/internal/reservations/errors"
	"lendly/pkg/config"
	"lendly/pkg/model"
)

const (
	ItemCollectionName = "Items"
)

// ItemReader is the reservation engine's read-only view of listed items. Item
// mutation belongs to the items service.
type ItemReader interface {
	FindByID(ctx context.Context, id string) (*model.Item, error)
}

type mongoItemReader struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewItemReader(cfg *config.Config) ItemReader {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoItemReader{
		cfg:        cfg,
		collection: db.Collection(ItemCollectionName),
	}
}

func (r *mongoItemReader) FindByID(ctx context.Context, id string) (*model.Item, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var item model.Item
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return &item, nil
}
