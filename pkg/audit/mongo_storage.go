package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStorage persists audit entries in a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
}

var _ Storage = (*MongoStorage)(nil)

// NewMongoStorage creates storage over the given collection.
func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	return &MongoStorage{coll: db.Collection(collection)}
}

// EnsureIndexes creates the flag-id/created-at index used by FindByFlagID.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "flag_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

type entryDocument struct {
	ID          string              `bson:"_id"`
	FlagID      string              `bson:"flag_id"`
	FlagKey     string              `bson:"flag_key"`
	Action      string              `bson:"action"`
	PerformedBy string              `bson:"performed_by"`
	Changes     []fieldChangeRecord `bson:"changes"`
	CreatedAt   time.Time           `bson:"created_at"`
}

type fieldChangeRecord struct {
	Field    string `bson:"field"`
	OldValue any    `bson:"old_value"`
	NewValue any    `bson:"new_value"`
}

func (s *MongoStorage) Store(ctx context.Context, entry Entry) error {
	doc := entryDocument{
		ID:          entry.ID,
		FlagID:      entry.FlagID.String(),
		FlagKey:     entry.FlagKey,
		Action:      string(entry.Action),
		PerformedBy: entry.PerformedBy,
		Changes:     make([]fieldChangeRecord, 0, len(entry.Changes)),
		CreatedAt:   entry.CreatedAt,
	}
	for _, ch := range entry.Changes {
		doc.Changes = append(doc.Changes, fieldChangeRecord(ch))
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

func (s *MongoStorage) FindByFlagID(ctx context.Context, flagID uuid.UUID) ([]Entry, error) {
	cursor, err := s.coll.Find(ctx,
		bson.D{{Key: "flag_id", Value: flagID.String()}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	defer cursor.Close(ctx)

	var result []Entry
	for cursor.Next(ctx) {
		var doc entryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Join(ErrStorageFailure, err)
		}
		entry := Entry{
			ID:          doc.ID,
			FlagID:      flagID,
			FlagKey:     doc.FlagKey,
			Action:      Action(doc.Action),
			PerformedBy: doc.PerformedBy,
			Changes:     make([]FieldChange, 0, len(doc.Changes)),
			CreatedAt:   doc.CreatedAt,
		}
		for _, ch := range doc.Changes {
			entry.Changes = append(entry.Changes, FieldChange(ch))
		}
		result = append(result, entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return result, nil
}
