// Package storeio is the boundary between the street-routing core and an
// external importer treated as a black box: it streams StreetGraphBuildInput
// rows out of Postgres into a graph.StreetLayer, and batch-writes
// island-pruning permission updates back. It never interprets OSM tags,
// infers speeds, or detects intersections; that labelling work belongs to
// the raw map-data import stage upstream of this core.
package storeio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianmobility/streetcore/internal/graph"
)

// batchSize caps how many statements accumulate in one pgx.Batch before it
// is flushed.
const batchSize = 1000

// ErrInvalidVertex is wrapped by LoadEdges when a row references a vertex id
// outside the vertex store's range.
var ErrInvalidVertex = errors.New("storeio: invalid vertex")

// Config holds Postgres connection configuration, following the same
// shape/env-variable names as every other connection config in this module.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

// LoadConfigFromEnv loads Postgres configuration from the environment.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	minConns, _ := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "20"))

	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		Database: getEnv("DB_NAME", "streetcore"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MinConns: int32(minConns),
		MaxConns: int32(maxConns),
	}
}

// NewPool opens a pgxpool.Pool per config, pinging once to fail fast.
func NewPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("storeio: unable to parse connection string: %w", err)
	}
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("storeio: unable to create connection pool: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storeio: unable to ping database: %w", err)
	}
	return pool, nil
}

// PostgresSource streams a StreetGraphBuildInput from Postgres tables into a
// graph.StreetLayer, and writes island-pruning results back.
type PostgresSource struct {
	Pool *pgxpool.Pool
}

// NewPostgresSource wraps an already-open pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{Pool: pool}
}

// LoadVertices streams rows from street_vertex (id, lat, lon, flags) in id
// order and appends one graph vertex per row. The source is expected to
// assign dense, zero-based, contiguous ids, since vertices are addressed by
// the dense index the store allocates; LoadVertices fails if a row's id
// does not match the next dense index it would allocate.
func (s *PostgresSource) LoadVertices(ctx context.Context, sl *graph.StreetLayer) (int, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, lat, lon, flags FROM street_vertex ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("storeio: query street_vertex: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		var lat, lon float64
		var flags uint8
		if err := rows.Scan(&id, &lat, &lon, &flags); err != nil {
			return count, fmt.Errorf("storeio: scan street_vertex row %d: %w", count, err)
		}
		if id != int64(count) {
			return count, fmt.Errorf("storeio: street_vertex.id %d is not dense (expected %d)", id, count)
		}
		v := sl.Vertices.AddVertex(lat, lon)
		if err := sl.Vertices.SetFlags(v, graph.VertexFlags(flags)); err != nil {
			return count, fmt.Errorf("storeio: set flags on vertex %d: %w", v, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("storeio: iterate street_vertex: %w", err)
	}
	log.Printf("storeio: loaded %d vertices", count)
	return count, nil
}

// LoadEdges streams rows from street_edge (one row per edge pair) and
// appends an edge pair per row, dropping any edge with no mode permission
// set in either direction (there is nothing for any mode to route over).
// Endpoints outside the vertex store's range fail the whole load with an
// error wrapping ErrInvalidVertex.
func (s *PostgresSource) LoadEdges(ctx context.Context, sl *graph.StreetLayer) (int, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT from_vertex, to_vertex, length_mm, way_id,
		       forward_flags, backward_flags,
		       forward_speed_kmh, backward_speed_kmh
		FROM street_edge
		ORDER BY id
	`)
	if err != nil {
		return 0, fmt.Errorf("storeio: query street_edge: %w", err)
	}
	defer rows.Close()

	n := sl.Vertices.NVertices()
	count, dropped := 0, 0
	for rows.Next() {
		var from, to int64
		var lengthMM int32
		var wayID int64
		var forwardFlags, backwardFlags uint32
		var forwardKMH, backwardKMH float64
		if err := rows.Scan(&from, &to, &lengthMM, &wayID, &forwardFlags, &backwardFlags, &forwardKMH, &backwardKMH); err != nil {
			return count, fmt.Errorf("storeio: scan street_edge row %d: %w", count, err)
		}
		if from < 0 || from >= int64(n) || to < 0 || to >= int64(n) {
			return count, fmt.Errorf("%w: edge references vertex out of [0,%d): from=%d to=%d", ErrInvalidVertex, n, from, to)
		}

		permissionMask := graph.FlagAllowsCar | graph.FlagAllowsBike | graph.FlagAllowsPedestrian
		if graph.EdgeFlags(forwardFlags)&permissionMask == 0 && graph.EdgeFlags(backwardFlags)&permissionMask == 0 {
			dropped++
			continue
		}

		forward, err := sl.Edges.AddEdgePair(graph.VertexID(from), graph.VertexID(to), lengthMM, wayID)
		if err != nil {
			return count, fmt.Errorf("storeio: add edge pair for street_edge row %d: %w", count, err)
		}
		if err := sl.Edges.SetFlags(forward, graph.EdgeFlags(forwardFlags)); err != nil {
			return count, err
		}
		if err := sl.Edges.SetFlags(graph.Paired(forward), graph.EdgeFlags(backwardFlags)); err != nil {
			return count, err
		}
		if err := sl.Edges.SetSpeedMPS(forward, forwardKMH/3.6); err != nil {
			return count, err
		}
		if err := sl.Edges.SetSpeedMPS(graph.Paired(forward), backwardKMH/3.6); err != nil {
			return count, err
		}

		sl.IndexForwardEdge(forward)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("storeio: iterate street_edge: %w", err)
	}
	log.Printf("storeio: loaded %d edge pairs (%d dropped for no mode permission)", count, dropped)
	return count, nil
}

// PrunedPermission is one island.Prune outcome ready to persist: a pair id
// and the flags that remain set on its forward/backward directions after
// pruning stripped a mode's permission.
type PrunedPermission struct {
	Pair                       graph.PairID
	ForwardFlags, BackwardFlags graph.EdgeFlags
}

// WritePrunedPermissions batch-updates street_edge.forward_flags/
// backward_flags for every pair island pruning touched, queuing the
// updates in a pgx.Batch that is flushed every batchSize statements.
func (s *PostgresSource) WritePrunedPermissions(ctx context.Context, updates []PrunedPermission) error {
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		results := s.Pool.SendBatch(ctx, batch)
		defer results.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("storeio: batch update failed at statement %d: %w", i, err)
			}
		}
		batch = &pgx.Batch{}
		return nil
	}

	for _, u := range updates {
		batch.Queue(`
			UPDATE street_edge SET forward_flags = $1, backward_flags = $2
			WHERE id = $3
		`, uint32(u.ForwardFlags), uint32(u.BackwardFlags), int64(u.Pair))

		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
