// Package mongo provides the MongoDB read-model store.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doodledocs/internal/projection"
)

type store struct {
	docs *mongo.Collection
}

// NewStore initializes the MongoDB read-model store and ensures its indexes.
func NewStore(ctx context.Context, db *mongo.Database) (projection.Store, error) {
	docs := db.Collection("documents")

	_, err := docs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure documents index: %w", err)
	}

	return &store{docs: docs}, nil
}

func (s *store) Save(ctx context.Context, doc *projection.Document) error {
	_, err := s.docs.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*projection.Document, error) {
	var doc projection.Document
	err := s.docs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, projection.ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *store) List(ctx context.Context) ([]*projection.Document, error) {
	cursor, err := s.docs.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*projection.Document
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return out, nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	if _, err := s.docs.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func (s *store) Reset(ctx context.Context) error {
	if _, err := s.docs.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("reset documents: %w", err)
	}
	return nil
}
