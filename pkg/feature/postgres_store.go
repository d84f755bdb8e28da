package feature

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxori-systems/fluxori-sub012/pkg/pg"
)

// PostgresStore is a PostgreSQL-backed Store over the feature_flags table
// (see db/migrations). Type-specific configuration blocks are stored as
// JSONB. Deletes are soft: the row keeps its audit trail and the unique
// key stays reserved.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const flagColumns = `id, key, name, description, type, enabled, default_value,
	percentage, user_targeting, organization_targeting, environments, schedule,
	last_modified_by, last_modified_at, created_at, updated_at, deleted_at, version`

func (s *PostgresStore) FindAll(ctx context.Context) ([]*FeatureFlag, error) {
	return s.findMany(ctx, `SELECT `+flagColumns+` FROM feature_flags WHERE deleted_at IS NULL`)
}

func (s *PostgresStore) FindByKey(ctx context.Context, key string) (*FeatureFlag, error) {
	return s.findOne(ctx,
		`SELECT `+flagColumns+` FROM feature_flags WHERE key = $1 AND deleted_at IS NULL`, key)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error) {
	return s.findOne(ctx,
		`SELECT `+flagColumns+` FROM feature_flags WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (s *PostgresStore) FindByEnvironment(ctx context.Context, env string) ([]*FeatureFlag, error) {
	return s.findMany(ctx, `
		SELECT `+flagColumns+` FROM feature_flags
		WHERE deleted_at IS NULL
		  AND (environments IS NULL
		       OR jsonb_array_length(environments) = 0
		       OR environments ? $1
		       OR environments ? 'ALL')`, env)
}

func (s *PostgresStore) Create(ctx context.Context, flag *FeatureFlag) error {
	row, err := toRow(flag)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO feature_flags (`+flagColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		row...)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrFlagKeyExists
		}
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, flag *FeatureFlag) error {
	userTargeting, orgTargeting, environments, schedule, err := marshalBlocks(flag)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE feature_flags SET
			name = $2, description = $3, type = $4, enabled = $5,
			default_value = $6, percentage = $7, user_targeting = $8,
			organization_targeting = $9, environments = $10, schedule = $11,
			last_modified_by = $12, last_modified_at = $13, updated_at = $14,
			version = $15
		WHERE id = $1 AND deleted_at IS NULL`,
		flag.ID, flag.Name, flag.Description, string(flag.Type), flag.Enabled,
		flag.DefaultValue, flag.Percentage, userTargeting, orgTargeting,
		environments, schedule, flag.LastModifiedBy, flag.LastModifiedAt,
		flag.UpdatedAt, flag.Version)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFlagNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE feature_flags SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFlagNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*FeatureFlag, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		return nil, ErrFlagNotFound
	}
	return scanFlag(rows)
}

func (s *PostgresStore) findMany(ctx context.Context, query string, args ...any) ([]*FeatureFlag, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	var result []*FeatureFlag
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return result, nil
}

func scanFlag(rows pgx.Rows) (*FeatureFlag, error) {
	var (
		flag           FeatureFlag
		flagType       string
		userTargeting  []byte
		orgTargeting   []byte
		environments   []byte
		schedule       []byte
		lastModifiedAt time.Time
	)
	if err := rows.Scan(&flag.ID, &flag.Key, &flag.Name, &flag.Description,
		&flagType, &flag.Enabled, &flag.DefaultValue, &flag.Percentage,
		&userTargeting, &orgTargeting, &environments, &schedule,
		&flag.LastModifiedBy, &lastModifiedAt, &flag.CreatedAt,
		&flag.UpdatedAt, &flag.DeletedAt, &flag.Version); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	flag.Type = FlagType(flagType)
	flag.LastModifiedAt = lastModifiedAt

	if err := unmarshalInto(userTargeting, &flag.UserTargeting); err != nil {
		return nil, err
	}
	if err := unmarshalInto(orgTargeting, &flag.OrganizationTargeting); err != nil {
		return nil, err
	}
	if err := unmarshalInto(environments, &flag.Environments); err != nil {
		return nil, err
	}
	if err := unmarshalInto(schedule, &flag.Schedule); err != nil {
		return nil, err
	}
	return &flag, nil
}

func unmarshalInto(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func toRow(flag *FeatureFlag) ([]any, error) {
	userTargeting, orgTargeting, environments, schedule, err := marshalBlocks(flag)
	if err != nil {
		return nil, err
	}
	return []any{
		flag.ID, flag.Key, flag.Name, flag.Description, string(flag.Type),
		flag.Enabled, flag.DefaultValue, flag.Percentage, userTargeting,
		orgTargeting, environments, schedule, flag.LastModifiedBy,
		flag.LastModifiedAt, flag.CreatedAt, flag.UpdatedAt, flag.DeletedAt,
		flag.Version,
	}, nil
}

func marshalBlocks(flag *FeatureFlag) (userTargeting, orgTargeting, environments, schedule []byte, err error) {
	marshal := func(v any) ([]byte, error) {
		if v == nil {
			return nil, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		return data, nil
	}

	if flag.UserTargeting != nil {
		if userTargeting, err = marshal(flag.UserTargeting); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if flag.OrganizationTargeting != nil {
		if orgTargeting, err = marshal(flag.OrganizationTargeting); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if len(flag.Environments) > 0 {
		if environments, err = marshal(flag.Environments); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if flag.Schedule != nil {
		if schedule, err = marshal(flag.Schedule); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return userTargeting, orgTargeting, environments, schedule, nil
}
