package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/conlan-group/listings-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. It exists so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	record     JSONB NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	latitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude  DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);
CREATE INDEX IF NOT EXISTS idx_listings_state ON listings(state);
CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveListing(ctx context.Context, listing model.StoredListing) (*model.StoredListing, error) {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
		listing.CreatedAt = time.Now().UTC()
	}
	listing.UpdatedAt = time.Now().UTC()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = listing.UpdatedAt
	}

	recordJSON, err := json.Marshal(listing.Record)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO listings (id, record, city, state, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			record = EXCLUDED.record,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = EXCLUDED.updated_at`,
		listing.ID, string(recordJSON), listing.Record.City, listing.Record.State,
		listing.Latitude, listing.Longitude, listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save listing %s", listing.ID)
	}

	return &listing, nil
}

func (s *PostgresStore) GetListing(ctx context.Context, id string) (*model.StoredListing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, record, latitude, longitude, created_at, updated_at FROM listings WHERE id = $1`,
		id,
	)
	return scanPgListing(row)
}

func (s *PostgresStore) ListListings(ctx context.Context, filter ListingFilter) ([]model.StoredListing, error) {
	query := `SELECT id, record, latitude, longitude, created_at, updated_at FROM listings WHERE 1=1`
	var args []any

	if filter.City != "" {
		args = append(args, filter.City)
		query += ` AND city = $1`
	}
	if filter.State != "" {
		args = append(args, filter.State)
		query += ` AND state = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list listings")
	}
	defer rows.Close()

	var listings []model.StoredListing
	for rows.Next() {
		l, err := scanPgListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: list listings iterate")
}

func (s *PostgresStore) DeleteListing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete listing %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPgListing(row pgx.Row) (*model.StoredListing, error) {
	var l model.StoredListing
	var recordJSON string

	err := row.Scan(&l.ID, &recordJSON, &l.Latitude, &l.Longitude, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan listing")
	}

	if err := json.Unmarshal([]byte(recordJSON), &l.Record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	return &l, nil
}
