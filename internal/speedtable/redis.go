package speedtable

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridianmobility/streetcore/internal/graph"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis connection configuration for the time-banded speed
// feed, following the same env-variable names and TLS convention as every
// other connection config in this module.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PollInterval time.Duration
	Key          string
}

// LoadConfigFromEnv loads Redis configuration from the environment.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	pollInterval, _ := time.ParseDuration(getEnv("SPEEDTABLE_POLL_INTERVAL", "5m"))

	return &Config{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         port,
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           db,
		PollInterval: pollInterval,
		Key:          getEnv("SPEEDTABLE_REDIS_KEY", "speedtable:default"),
	}
}

// GetClient returns the global Redis client (singleton pattern): the first
// call builds it from cfg and later calls return the same client.
func GetClient(cfg *Config) (*redis.Client, error) {
	clientOnce.Do(func() {
		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}
		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("speedtable: failed to connect to Redis: %w", err)
		}
	})
	return client, clientErr
}

// wireTable is the JSON shape a replacement table is published in: a flat
// map from edge id (as a string key, since JSON object keys cannot be
// integers) to its 96-entry km/h band.
type wireTable map[string][BinsPerDay]int16

// FetchOnce reads cfg.Key from Redis and decodes it into a Table. A missing
// key is not an error: it means no override feed has published yet, and the
// caller should keep whatever table is already loaded.
func FetchOnce(ctx context.Context, client *redis.Client, cfg *Config) (*Table, error) {
	raw, err := client.Get(ctx, cfg.Key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("speedtable: read %s: %w", cfg.Key, err)
	}

	var wire wireTable
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("speedtable: decode %s: %w", cfg.Key, err)
	}

	t := NewTable()
	for key, bands := range wire {
		id, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("speedtable: edge id %q in %s is not an integer: %w", key, cfg.Key, err)
		}
		t.Speeds[graph.EdgeID(id)] = bands
	}
	return t, nil
}

// RunUpdater polls Redis every cfg.PollInterval, replacing store's table on
// success. A fetch or decode error is logged and the loop continues with
// the table already in Store unchanged, so a transient outage never leaves
// queries without a table. RunUpdater blocks until ctx is canceled, so
// callers run it in its own goroutine.
func RunUpdater(ctx context.Context, store *Store, client *redis.Client, cfg *Config) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t, err := FetchOnce(ctx, client, cfg)
			if err != nil {
				log.Printf("speedtable: refresh failed, retaining previous table: %v", err)
				continue
			}
			if t == nil {
				continue // no feed published yet
			}
			store.Replace(t)
			log.Printf("speedtable: loaded override table for %d edges", len(t.Speeds))
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
