package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var Pool *pgxpool.Pool

var Redis *redis.Client

// Connect opens the postgres pool and pings it.
func Connect(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	var err error
	Pool, err = pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	err = Pool.Ping(context.Background())
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connected successfully using PGX")
	return nil
}

// ConnectRedis opens the redis client used for signed file-URL tokens.
func ConnectRedis(addr string, db int) error {
	Redis = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Println("✅ Redis connected successfully")
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
	if Redis != nil {
		Redis.Close()
	}
}
