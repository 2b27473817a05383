// Package mongo provides the MongoDB event log backend. Each event is one
// document in the events collection; a unique (stream_id, version) index
// guarantees that a stream's total order can never be silently overwritten.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doodledocs/internal/domain"
	"doodledocs/internal/eventstore"
)

type record struct {
	ID         string      `bson:"_id"`
	StreamID   string      `bson:"stream_id"`
	Version    int64       `bson:"version"`
	Kind       domain.Kind `bson:"kind"`
	Payload    bson.Raw    `bson:"payload,omitempty"`
	OccurredAt time.Time   `bson:"occurred_at"`
}

type store struct {
	client *mongo.Client
	events *mongo.Collection
}

// NewStore initializes the MongoDB event log and ensures its indexes.
func NewStore(ctx context.Context, client *mongo.Client, db *mongo.Database) (eventstore.Store, error) {
	events := db.Collection("events")

	_, err := events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "stream_id", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure events index: %w", err)
	}

	return &store{client: client, events: events}, nil
}

func (s *store) Append(ctx context.Context, documentID string, events []domain.Event) ([]domain.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	var numbered []domain.Event
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		next, err := s.streamLength(sc, documentID)
		if err != nil {
			return nil, err
		}

		numbered = make([]domain.Event, len(events))
		docs := make([]interface{}, len(events))
		for i, e := range events {
			next++
			e.Version = next
			e.DocumentID = documentID
			numbered[i] = e

			kind, payload, err := domain.EncodePayloadBSON(e.Payload)
			if err != nil {
				return nil, err
			}
			docs[i] = record{
				ID:         e.ID,
				StreamID:   documentID,
				Version:    e.Version,
				Kind:       kind,
				Payload:    payload,
				OccurredAt: e.OccurredAt,
			}
		}

		_, err = s.events.InsertMany(sc, docs)
		return nil, err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, eventstore.ErrVersionConflict
		}
		return nil, fmt.Errorf("append events: %w", err)
	}

	return numbered, nil
}

func (s *store) Read(ctx context.Context, documentID string) ([]domain.Event, error) {
	return s.ReadRange(ctx, documentID, 1, 0)
}

func (s *store) ReadRange(ctx context.Context, documentID string, from, to int64) ([]domain.Event, error) {
	if from < 1 {
		from = 1
	}
	versions := bson.M{"$gte": from}
	if to > 0 {
		versions["$lte"] = to
	}

	cursor, err := s.events.Find(ctx,
		bson.M{"stream_id": documentID, "version": versions},
		options.Find().SetSort(bson.D{{Key: "version", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", documentID, err)
	}
	defer cursor.Close(ctx)

	var out []domain.Event
	for cursor.Next(ctx) {
		var rec record
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode event record: %w", err)
		}
		payload, err := domain.DecodePayloadBSON(rec.Kind, rec.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Event{
			ID:         rec.ID,
			DocumentID: rec.StreamID,
			Version:    rec.Version,
			OccurredAt: rec.OccurredAt.UTC(),
			Payload:    payload,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read stream %s: %w", documentID, err)
	}
	return out, nil
}

func (s *store) ListStreams(ctx context.Context) ([]string, error) {
	raw, err := s.events.Distinct(ctx, "stream_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *store) Close(ctx context.Context) error {
	return nil
}

func (s *store) streamLength(ctx context.Context, documentID string) (int64, error) {
	var last record
	err := s.events.FindOne(ctx,
		bson.M{"stream_id": documentID},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}),
	).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("read stream head: %w", err)
	}
	return last.Version, nil
}
