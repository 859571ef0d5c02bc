package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/homescout-ai/homescout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_listing":         `SELECT ` + listingColumnsPG + ` FROM listings WHERE id = $1`,
	"get_neighborhood":    `SELECT ` + neighborhoodColumnsPG + ` FROM neighborhoods WHERE id = $1`,
	"insert_query":        `INSERT INTO queries (id, input, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_query_status": `UPDATE queries SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_query_result": `UPDATE queries SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_query":           `SELECT id, input, status, result, created_at, updated_at FROM queries WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id              TEXT PRIMARY KEY,
	price           DOUBLE PRECISION NOT NULL,
	bedrooms        DOUBLE PRECISION NOT NULL DEFAULT 0,
	bathrooms       DOUBLE PRECISION NOT NULL DEFAULT 0,
	square_footage  DOUBLE PRECISION NOT NULL DEFAULT 0,
	year_built      INTEGER NOT NULL DEFAULT 0,
	property_type   TEXT NOT NULL DEFAULT '',
	address         TEXT NOT NULL DEFAULT '',
	neighborhood_id TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	lon             DOUBLE PRECISION NOT NULL DEFAULT 0,
	lat             DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS neighborhoods (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	fema_flood_zone  TEXT NOT NULL DEFAULT '',
	tornado_risk     TEXT NOT NULL DEFAULT '',
	wildfire_risk    TEXT NOT NULL DEFAULT '',
	earthquake_risk  TEXT NOT NULL DEFAULT '',
	dominant_weather TEXT NOT NULL DEFAULT '',
	lon              DOUBLE PRECISION NOT NULL DEFAULT 0,
	lat              DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS queries (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	input      JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
CREATE INDEX IF NOT EXISTS idx_listings_neighborhood ON listings(neighborhood_id);
CREATE INDEX IF NOT EXISTS idx_queries_status ON queries(status);
CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at DESC);
`

const listingColumnsPG = `id, price, bedrooms, bathrooms, square_footage, year_built, property_type, address, neighborhood_id, description, lon, lat`

const neighborhoodColumnsPG = `id, name, description, fema_flood_zone, tornado_risk, wildfire_risk, earthquake_risk, dominant_weather, lon, lat`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

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

func (s *PostgresStore) SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT ` + listingColumnsPG + ` FROM listings WHERE true`
	args := []any{}
	argIdx := 1

	if filter.PriceMin > 0 {
		query += fmt.Sprintf(` AND price >= $%d`, argIdx)
		args = append(args, filter.PriceMin)
		argIdx++
	}
	if filter.PriceMax > 0 {
		query += fmt.Sprintf(` AND price <= $%d`, argIdx)
		args = append(args, filter.PriceMax)
		argIdx++
	}
	if filter.BedroomsMin > 0 {
		query += fmt.Sprintf(` AND bedrooms >= $%d`, argIdx)
		args = append(args, filter.BedroomsMin)
		argIdx++
	}
	if filter.BathroomsMin > 0 {
		query += fmt.Sprintf(` AND bathrooms >= $%d`, argIdx)
		args = append(args, filter.BathroomsMin)
		argIdx++
	}
	if filter.PropertyType != "" {
		query += fmt.Sprintf(` AND lower(property_type) = lower($%d)`, argIdx)
		args = append(args, filter.PropertyType)
		argIdx++
	}
	for _, kw := range filter.Keywords {
		query += fmt.Sprintf(` AND lower(description) LIKE $%d`, argIdx)
		args = append(args, "%"+strings.ToLower(kw)+"%")
		argIdx++
	}
	query += ` ORDER BY price ASC, id ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(&l.ID, &l.Price, &l.Bedrooms, &l.Bathrooms,
			&l.SquareFootage, &l.YearBuilt, &l.PropertyType, &l.Address,
			&l.NeighborhoodID, &l.Description, &l.Lon, &l.Lat); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: search listings iterate")
}

func (s *PostgresStore) GetListing(ctx context.Context, listingID string) (*model.Listing, error) {
	var l model.Listing
	err := s.pool.QueryRow(ctx,
		`SELECT `+listingColumnsPG+` FROM listings WHERE id = $1`,
		listingID,
	).Scan(&l.ID, &l.Price, &l.Bedrooms, &l.Bathrooms, &l.SquareFootage,
		&l.YearBuilt, &l.PropertyType, &l.Address, &l.NeighborhoodID,
		&l.Description, &l.Lon, &l.Lat)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get listing %s", listingID)
	}
	return &l, nil
}

func (s *PostgresStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	for _, l := range listings {
		if l.ID == "" {
			return 0, eris.New("postgres: listing with empty id")
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO listings (`+listingColumnsPG+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (id) DO UPDATE SET
			   price = $2, bedrooms = $3, bathrooms = $4, square_footage = $5,
			   year_built = $6, property_type = $7, address = $8,
			   neighborhood_id = $9, description = $10, lon = $11, lat = $12`,
			l.ID, l.Price, l.Bedrooms, l.Bathrooms, l.SquareFootage, l.YearBuilt,
			l.PropertyType, l.Address, l.NeighborhoodID, l.Description, l.Lon, l.Lat,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert listing %s", l.ID)
		}
	}
	return len(listings), nil
}

func (s *PostgresStore) GetNeighborhood(ctx context.Context, neighborhoodID string) (*model.Neighborhood, error) {
	var n model.Neighborhood
	err := s.pool.QueryRow(ctx,
		`SELECT `+neighborhoodColumnsPG+` FROM neighborhoods WHERE id = $1`,
		neighborhoodID,
	).Scan(&n.ID, &n.Name, &n.Description, &n.FEMAFloodZone, &n.TornadoRisk,
		&n.WildfireRisk, &n.EarthquakeRisk, &n.DominantWeather, &n.Lon, &n.Lat)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get neighborhood %s", neighborhoodID)
	}
	return &n, nil
}

func (s *PostgresStore) UpsertNeighborhoods(ctx context.Context, neighborhoods []model.Neighborhood) (int, error) {
	for _, n := range neighborhoods {
		if n.ID == "" {
			return 0, eris.New("postgres: neighborhood with empty id")
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO neighborhoods (`+neighborhoodColumnsPG+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO UPDATE SET
			   name = $2, description = $3, fema_flood_zone = $4, tornado_risk = $5,
			   wildfire_risk = $6, earthquake_risk = $7, dominant_weather = $8,
			   lon = $9, lat = $10`,
			n.ID, n.Name, n.Description, n.FEMAFloodZone, n.TornadoRisk,
			n.WildfireRisk, n.EarthquakeRisk, n.DominantWeather, n.Lon, n.Lat,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert neighborhood %s", n.ID)
		}
	}
	return len(neighborhoods), nil
}

func (s *PostgresStore) CreateQuery(ctx context.Context, input model.QueryInput) (*model.Query, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal query input")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO queries (id, input, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, inputJSON, string(model.QueryStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert query")
	}

	return &model.Query{
		ID:        id,
		Input:     input,
		Status:    model.QueryStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateQueryStatus(ctx context.Context, queryID string, status model.QueryStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE queries SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), queryID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update query status %s", queryID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("query not found: %s", queryID)
	}
	return nil
}

func (s *PostgresStore) UpdateQueryResult(ctx context.Context, queryID string, result *model.QueryResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal query result")
	}

	status := model.QueryStatusComplete
	if result != nil && result.Error != "" {
		status = model.QueryStatusFailed
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE queries SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(status), time.Now().UTC(), queryID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update query result %s", queryID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("query not found: %s", queryID)
	}
	return nil
}

func (s *PostgresStore) GetQuery(ctx context.Context, queryID string) (*model.Query, error) {
	var q model.Query
	var inputJSON []byte
	var resultNull *[]byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, input, status, result, created_at, updated_at FROM queries WHERE id = $1`,
		queryID,
	).Scan(&q.ID, &inputJSON, &q.Status, &resultNull, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get query %s", queryID)
	}

	if err := json.Unmarshal(inputJSON, &q.Input); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal query input")
	}
	if resultNull != nil {
		q.Result = &model.QueryResult{}
		if err := json.Unmarshal(*resultNull, q.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal query result")
		}
	}
	return &q, nil
}

func (s *PostgresStore) ListQueries(ctx context.Context, filter QueryFilter) ([]model.Query, error) {
	query := `SELECT id, input, status, result, created_at, updated_at FROM queries WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list queries")
	}
	defer rows.Close()

	var queries []model.Query
	for rows.Next() {
		var q model.Query
		var inputJSON []byte
		var resultNull *[]byte

		if err := rows.Scan(&q.ID, &inputJSON, &q.Status, &resultNull, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan query")
		}
		if err := json.Unmarshal(inputJSON, &q.Input); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal query input")
		}
		if resultNull != nil {
			q.Result = &model.QueryResult{}
			if err := json.Unmarshal(*resultNull, q.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal query result")
			}
		}
		queries = append(queries, q)
	}
	return queries, eris.Wrap(rows.Err(), "postgres: list queries iterate")
}

// PruneQueries deletes all but the most recent keep queries.
func (s *PostgresStore) PruneQueries(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM queries WHERE id NOT IN (
		   SELECT id FROM queries ORDER BY created_at DESC, id DESC LIMIT $1
		 )`,
		keep,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune queries")
	}
	return int(tag.RowsAffected()), nil
}
