package database

import (
	"context"
	"escape_room_backend/internal/config"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis returns nil without error when Redis is disabled; sessions and
// the catalog cache are then skipped.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Println("Redis disabled, sessions and catalog cache are off")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return rdb, nil
}
