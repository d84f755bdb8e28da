package feature

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisFlagsKey = "feature:flags"    // hash: flag key -> flag JSON
	redisIndexKey = "feature:flag_ids" // hash: flag id -> flag key
)

// RedisStore is a Redis-backed Store. Flags live in a single hash keyed by
// flag key, with a secondary id-to-key hash for lookups by ID. Suited for
// deployments that already run Redis and do not need a relational backend.
type RedisStore struct {
	client redis.UniversalClient
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over the given client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) FindAll(ctx context.Context) ([]*FeatureFlag, error) {
	raw, err := s.client.HGetAll(ctx, redisFlagsKey).Result()
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	result := make([]*FeatureFlag, 0, len(raw))
	for _, data := range raw {
		flag, err := decodeFlag([]byte(data))
		if err != nil {
			return nil, err
		}
		result = append(result, flag)
	}
	return result, nil
}

func (s *RedisStore) FindByKey(ctx context.Context, key string) (*FeatureFlag, error) {
	data, err := s.client.HGet(ctx, redisFlagsKey, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFlagNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return decodeFlag(data)
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error) {
	key, err := s.client.HGet(ctx, redisIndexKey, id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFlagNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return s.FindByKey(ctx, key)
}

func (s *RedisStore) FindByEnvironment(ctx context.Context, env string) ([]*FeatureFlag, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*FeatureFlag, 0, len(all))
	for _, flag := range all {
		if flag.appliesToEnvironment(env) {
			result = append(result, flag)
		}
	}
	return result, nil
}

func (s *RedisStore) Create(ctx context.Context, flag *FeatureFlag) error {
	exists, err := s.client.HExists(ctx, redisFlagsKey, flag.Key).Result()
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if exists {
		return ErrFlagKeyExists
	}
	return s.write(ctx, flag)
}

func (s *RedisStore) Update(ctx context.Context, flag *FeatureFlag) error {
	exists, err := s.client.HExists(ctx, redisIndexKey, flag.ID.String()).Result()
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if !exists {
		return ErrFlagNotFound
	}
	return s.write(ctx, flag)
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	key, err := s.client.HGet(ctx, redisIndexKey, id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrFlagNotFound
		}
		return errors.Join(ErrStoreFailure, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, redisFlagsKey, key)
		pipe.HDel(ctx, redisIndexKey, id.String())
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, flag *FeatureFlag) error {
	data, err := json.Marshal(flag)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisFlagsKey, flag.Key, data)
		pipe.HSet(ctx, redisIndexKey, flag.ID.String(), flag.Key)
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func decodeFlag(data []byte) (*FeatureFlag, error) {
	var flag FeatureFlag
	if err := json.Unmarshal(data, &flag); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &flag, nil
}
