package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const storyCatalogKey = "escape:stories:catalog"

// StoryCacheRepository caches the serialized story catalog.
type StoryCacheRepository struct {
	Client *redis.Client
}

func NewStoryCacheRepository(client *redis.Client) *StoryCacheRepository {
	return &StoryCacheRepository{Client: client}
}

func (r *StoryCacheRepository) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := r.Client.Get(ctx, storyCatalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *StoryCacheRepository) Set(ctx context.Context, data []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, storyCatalogKey, data, ttl).Err()
}
