package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage persists audit entries in the feature_flag_audit table
// (see db/migrations). Changes are stored as a JSONB array.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

var _ Storage = (*PostgresStorage)(nil)

// NewPostgresStorage creates storage over the given connection pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) Store(ctx context.Context, entry Entry) error {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO feature_flag_audit (id, flag_id, flag_key, action, performed_by, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.FlagID, entry.FlagKey, string(entry.Action),
		entry.PerformedBy, changes, entry.CreatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

func (s *PostgresStorage) FindByFlagID(ctx context.Context, flagID uuid.UUID) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, flag_id, flag_key, action, performed_by, changes, created_at
		FROM feature_flag_audit
		WHERE flag_id = $1
		ORDER BY created_at DESC`,
		flagID,
	)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var (
			entry     Entry
			action    string
			changes   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.FlagID, &entry.FlagKey, &action,
			&entry.PerformedBy, &changes, &createdAt); err != nil {
			return nil, errors.Join(ErrStorageFailure, err)
		}
		entry.Action = Action(action)
		entry.CreatedAt = createdAt
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &entry.Changes); err != nil {
				return nil, errors.Join(ErrStorageFailure, err)
			}
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return result, nil
}
