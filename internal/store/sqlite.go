package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/homescout-ai/homescout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id              TEXT PRIMARY KEY,
	price           REAL NOT NULL,
	bedrooms        REAL NOT NULL DEFAULT 0,
	bathrooms       REAL NOT NULL DEFAULT 0,
	square_footage  REAL NOT NULL DEFAULT 0,
	year_built      INTEGER NOT NULL DEFAULT 0,
	property_type   TEXT NOT NULL DEFAULT '',
	address         TEXT NOT NULL DEFAULT '',
	neighborhood_id TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	lon             REAL NOT NULL DEFAULT 0,
	lat             REAL NOT NULL DEFAULT 0
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
	lon              REAL NOT NULL DEFAULT 0,
	lat              REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS queries (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
CREATE INDEX IF NOT EXISTS idx_listings_neighborhood ON listings(neighborhood_id);
CREATE INDEX IF NOT EXISTS idx_queries_status ON queries(status);
CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const listingColumns = `id, price, bedrooms, bathrooms, square_footage, year_built, property_type, address, neighborhood_id, description, lon, lat`

func (s *SQLiteStore) SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	var args []any

	if filter.PriceMin > 0 {
		query += ` AND price >= ?`
		args = append(args, filter.PriceMin)
	}
	if filter.PriceMax > 0 {
		query += ` AND price <= ?`
		args = append(args, filter.PriceMax)
	}
	if filter.BedroomsMin > 0 {
		query += ` AND bedrooms >= ?`
		args = append(args, filter.BedroomsMin)
	}
	if filter.BathroomsMin > 0 {
		query += ` AND bathrooms >= ?`
		args = append(args, filter.BathroomsMin)
	}
	if filter.PropertyType != "" {
		query += ` AND lower(property_type) = lower(?)`
		args = append(args, filter.PropertyType)
	}
	for _, kw := range filter.Keywords {
		query += ` AND lower(description) LIKE ?`
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	query += ` ORDER BY price ASC, id ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search listings")
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: search listings iterate")
}

func (s *SQLiteStore) GetListing(ctx context.Context, listingID string) (*model.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`,
		listingID,
	)
	l, err := scanListing(row)
	if err == errNoListing {
		return nil, eris.Errorf("listing not found: %s", listingID)
	}
	return l, err
}

func (s *SQLiteStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert listings")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO listings (`+listingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   price = excluded.price, bedrooms = excluded.bedrooms, bathrooms = excluded.bathrooms,
		   square_footage = excluded.square_footage, year_built = excluded.year_built,
		   property_type = excluded.property_type, address = excluded.address,
		   neighborhood_id = excluded.neighborhood_id, description = excluded.description,
		   lon = excluded.lon, lat = excluded.lat`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert listing")
	}
	defer stmt.Close()

	for _, l := range listings {
		if l.ID == "" {
			return 0, eris.New("sqlite: listing with empty id")
		}
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.Price, l.Bedrooms, l.Bathrooms, l.SquareFootage, l.YearBuilt,
			l.PropertyType, l.Address, l.NeighborhoodID, l.Description, l.Lon, l.Lat,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert listing %s", l.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert listings")
	}
	return len(listings), nil
}

const neighborhoodColumns = `id, name, description, fema_flood_zone, tornado_risk, wildfire_risk, earthquake_risk, dominant_weather, lon, lat`

func (s *SQLiteStore) GetNeighborhood(ctx context.Context, neighborhoodID string) (*model.Neighborhood, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+neighborhoodColumns+` FROM neighborhoods WHERE id = ?`,
		neighborhoodID,
	)

	var n model.Neighborhood
	err := row.Scan(&n.ID, &n.Name, &n.Description, &n.FEMAFloodZone,
		&n.TornadoRisk, &n.WildfireRisk, &n.EarthquakeRisk, &n.DominantWeather,
		&n.Lon, &n.Lat)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("neighborhood not found: %s", neighborhoodID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get neighborhood")
	}
	return &n, nil
}

func (s *SQLiteStore) UpsertNeighborhoods(ctx context.Context, neighborhoods []model.Neighborhood) (int, error) {
	if len(neighborhoods) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert neighborhoods")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO neighborhoods (`+neighborhoodColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name, description = excluded.description,
		   fema_flood_zone = excluded.fema_flood_zone, tornado_risk = excluded.tornado_risk,
		   wildfire_risk = excluded.wildfire_risk, earthquake_risk = excluded.earthquake_risk,
		   dominant_weather = excluded.dominant_weather, lon = excluded.lon, lat = excluded.lat`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert neighborhood")
	}
	defer stmt.Close()

	for _, n := range neighborhoods {
		if n.ID == "" {
			return 0, eris.New("sqlite: neighborhood with empty id")
		}
		if _, err := stmt.ExecContext(ctx,
			n.ID, n.Name, n.Description, n.FEMAFloodZone, n.TornadoRisk,
			n.WildfireRisk, n.EarthquakeRisk, n.DominantWeather, n.Lon, n.Lat,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert neighborhood %s", n.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert neighborhoods")
	}
	return len(neighborhoods), nil
}

func (s *SQLiteStore) CreateQuery(ctx context.Context, input model.QueryInput) (*model.Query, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal query input")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO queries (id, input, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(inputJSON), string(model.QueryStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert query")
	}

	return &model.Query{
		ID:        id,
		Input:     input,
		Status:    model.QueryStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateQueryStatus(ctx context.Context, queryID string, status model.QueryStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE queries SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), queryID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update query status %s", queryID)
	}
	return checkRowsAffected(res, "query", queryID)
}

func (s *SQLiteStore) UpdateQueryResult(ctx context.Context, queryID string, result *model.QueryResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal query result")
	}

	status := model.QueryStatusComplete
	if result != nil && result.Error != "" {
		status = model.QueryStatusFailed
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE queries SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(status), time.Now().UTC(), queryID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update query result %s", queryID)
	}
	return checkRowsAffected(res, "query", queryID)
}

func (s *SQLiteStore) GetQuery(ctx context.Context, queryID string) (*model.Query, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, status, result, created_at, updated_at FROM queries WHERE id = ?`,
		queryID,
	)
	return scanQuery(row)
}

func (s *SQLiteStore) ListQueries(ctx context.Context, filter QueryFilter) ([]model.Query, error) {
	query := `SELECT id, input, status, result, created_at, updated_at FROM queries WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list queries")
	}
	defer rows.Close()

	var queries []model.Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, *q)
	}
	return queries, eris.Wrap(rows.Err(), "sqlite: list queries iterate")
}

// PruneQueries deletes all but the most recent keep queries.
func (s *SQLiteStore) PruneQueries(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM queries WHERE id NOT IN (
		   SELECT id FROM queries ORDER BY created_at DESC, id DESC LIMIT ?
		 )`,
		keep,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune queries")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

var errNoListing = eris.New("listing not found")

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanListing(row scannable) (*model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ID, &l.Price, &l.Bedrooms, &l.Bathrooms, &l.SquareFootage,
		&l.YearBuilt, &l.PropertyType, &l.Address, &l.NeighborhoodID,
		&l.Description, &l.Lon, &l.Lat)
	if err == sql.ErrNoRows {
		return nil, errNoListing
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan listing")
	}
	return &l, nil
}

func scanQuery(row scannable) (*model.Query, error) {
	var q model.Query
	var inputJSON string
	var resultJSON sql.NullString

	err := row.Scan(&q.ID, &inputJSON, &q.Status, &resultJSON, &q.CreatedAt, &q.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("query not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan query")
	}

	if err := json.Unmarshal([]byte(inputJSON), &q.Input); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal query input")
	}
	if resultJSON.Valid {
		q.Result = &model.QueryResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), q.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal query result")
		}
	}
	return &q, nil
}
