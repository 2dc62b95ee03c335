package config

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

// InitRedis connects when REDIS_ADDR is set. A failed ping leaves Redis nil so
// callers fall back to the database.
func InitRedis() {
	if Current.RedisAddr == "" {
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     Current.RedisAddr,
		Password: Current.RedisPassword,
		DB:       Current.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis at %s unavailable, continuing without cache: %v", Current.RedisAddr, err)
		_ = client.Close()
		return
	}

	Redis = client
	log.Printf("Redis connected at %s", Current.RedisAddr)
}
