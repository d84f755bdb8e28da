package feature

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore is a MongoDB-backed Store. Flags map naturally onto documents
// because the type-specific configuration blocks are nested and optional.
type MongoStore struct {
	coll *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore creates a store over the given collection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique key index. Call once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

type flagDocument struct {
	ID           string   `bson:"_id"`
	Key          string   `bson:"key"`
	Name         string   `bson:"name"`
	Description  string   `bson:"description,omitempty"`
	Type         string   `bson:"type"`
	Enabled      bool     `bson:"enabled"`
	DefaultValue bool     `bson:"default_value"`
	Percentage   *int     `bson:"percentage,omitempty"`
	Environments []string `bson:"environments,omitempty"`

	UserTargeting         *userTargetingDoc `bson:"user_targeting,omitempty"`
	OrganizationTargeting *orgTargetingDoc  `bson:"organization_targeting,omitempty"`
	Schedule              *scheduleDoc      `bson:"schedule,omitempty"`

	LastModifiedBy string     `bson:"last_modified_by,omitempty"`
	LastModifiedAt time.Time  `bson:"last_modified_at"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at"`
	DeletedAt      *time.Time `bson:"deleted_at,omitempty"`
	Version        int64      `bson:"version"`
}

type userTargetingDoc struct {
	UserIDs    []string `bson:"user_ids,omitempty"`
	UserRoles  []string `bson:"user_roles,omitempty"`
	UserEmails []string `bson:"user_emails,omitempty"`
}

type orgTargetingDoc struct {
	OrganizationIDs   []string `bson:"organization_ids,omitempty"`
	OrganizationTypes []string `bson:"organization_types,omitempty"`
}

type scheduleDoc struct {
	StartDate  *time.Time     `bson:"start_date,omitempty"`
	EndDate    *time.Time     `bson:"end_date,omitempty"`
	Recurrence *recurrenceDoc `bson:"recurrence,omitempty"`
}

type recurrenceDoc struct {
	Type       RecurrenceType `bson:"type"`
	DaysOfWeek []int          `bson:"days_of_week,omitempty"`
	TimeRanges []TimeRange    `bson:"time_ranges,omitempty"`
}

func (s *MongoStore) FindAll(ctx context.Context) ([]*FeatureFlag, error) {
	return s.findMany(ctx, bson.D{})
}

func (s *MongoStore) FindByKey(ctx context.Context, key string) (*FeatureFlag, error) {
	return s.findOne(ctx, bson.D{{Key: "key", Value: key}})
}

func (s *MongoStore) FindByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *MongoStore) FindByEnvironment(ctx context.Context, env string) ([]*FeatureFlag, error) {
	// Unscoped flags and wildcard-scoped flags apply to every environment.
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "environments", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "environments", Value: bson.D{{Key: "$size", Value: 0}}}},
		bson.D{{Key: "environments", Value: env}},
		bson.D{{Key: "environments", Value: EnvironmentAll}},
	}}}
	return s.findMany(ctx, filter)
}

func (s *MongoStore) Create(ctx context.Context, flag *FeatureFlag) error {
	if _, err := s.coll.InsertOne(ctx, toDocument(flag)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrFlagKeyExists
		}
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, flag *FeatureFlag) error {
	res, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: flag.ID.String()}}, toDocument(flag))
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if res.MatchedCount == 0 {
		return ErrFlagNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if res.DeletedCount == 0 {
		return ErrFlagNotFound
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*FeatureFlag, error) {
	var doc flagDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFlagNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return fromDocument(&doc)
}

func (s *MongoStore) findMany(ctx context.Context, filter bson.D) ([]*FeatureFlag, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer cursor.Close(ctx)

	var result []*FeatureFlag
	for cursor.Next(ctx) {
		var doc flagDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		flag, err := fromDocument(&doc)
		if err != nil {
			return nil, err
		}
		result = append(result, flag)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return result, nil
}

func toDocument(f *FeatureFlag) *flagDocument {
	doc := &flagDocument{
		ID:             f.ID.String(),
		Key:            f.Key,
		Name:           f.Name,
		Description:    f.Description,
		Type:           string(f.Type),
		Enabled:        f.Enabled,
		DefaultValue:   f.DefaultValue,
		Percentage:     f.Percentage,
		Environments:   f.Environments,
		LastModifiedBy: f.LastModifiedBy,
		LastModifiedAt: f.LastModifiedAt,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		DeletedAt:      f.DeletedAt,
		Version:        f.Version,
	}
	if f.UserTargeting != nil {
		doc.UserTargeting = (*userTargetingDoc)(f.UserTargeting)
	}
	if f.OrganizationTargeting != nil {
		doc.OrganizationTargeting = (*orgTargetingDoc)(f.OrganizationTargeting)
	}
	if f.Schedule != nil {
		doc.Schedule = &scheduleDoc{
			StartDate: f.Schedule.StartDate,
			EndDate:   f.Schedule.EndDate,
		}
		if f.Schedule.Recurrence != nil {
			doc.Schedule.Recurrence = &recurrenceDoc{
				Type:       f.Schedule.Recurrence.Type,
				DaysOfWeek: f.Schedule.Recurrence.DaysOfWeek,
				TimeRanges: f.Schedule.Recurrence.TimeRanges,
			}
		}
	}
	return doc
}

func fromDocument(doc *flagDocument) (*FeatureFlag, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	flag := &FeatureFlag{
		ID:             id,
		Key:            doc.Key,
		Name:           doc.Name,
		Description:    doc.Description,
		Type:           FlagType(doc.Type),
		Enabled:        doc.Enabled,
		DefaultValue:   doc.DefaultValue,
		Percentage:     doc.Percentage,
		Environments:   doc.Environments,
		LastModifiedBy: doc.LastModifiedBy,
		LastModifiedAt: doc.LastModifiedAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		DeletedAt:      doc.DeletedAt,
		Version:        doc.Version,
	}
	if doc.UserTargeting != nil {
		flag.UserTargeting = (*UserTargeting)(doc.UserTargeting)
	}
	if doc.OrganizationTargeting != nil {
		flag.OrganizationTargeting = (*OrganizationTargeting)(doc.OrganizationTargeting)
	}
	if doc.Schedule != nil {
		flag.Schedule = &Schedule{
			StartDate: doc.Schedule.StartDate,
			EndDate:   doc.Schedule.EndDate,
		}
		if doc.Schedule.Recurrence != nil {
			flag.Schedule.Recurrence = &Recurrence{
				Type:       doc.Schedule.Recurrence.Type,
				DaysOfWeek: doc.Schedule.Recurrence.DaysOfWeek,
				TimeRanges: doc.Schedule.Recurrence.TimeRanges,
			}
		}
	}
	return flag, nil
}
