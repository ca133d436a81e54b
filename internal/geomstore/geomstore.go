// Package geomstore fetches raw geometries intersecting a tile envelope from
// the remote spatial warehouse.
package geomstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"vectile/internal/db"
	"vectile/internal/metrics"
)

// Record is one geometry in well-known-binary form, in the warehouse CRS.
type Record []byte

// FetchResult is the ordered record sequence returned by one bounded query.
type FetchResult struct {
	Records []Record
}

// Count returns the number of fetched records. The warehouse query carries a
// LIMIT, so Count == limit means the true intersecting set may be larger.
func (r FetchResult) Count() int {
	return len(r.Records)
}

// Fetcher retrieves geometries intersecting an envelope, capped at limit rows
// on the query side.
type Fetcher interface {
	FetchIntersecting(ctx context.Context, envelope orb.Polygon, limit int) (FetchResult, error)
}

// RemoteQueryError wraps a connection, timeout, or query failure against the
// warehouse. The message names the query target but never credentials.
type RemoteQueryError struct {
	Target string
	Err    error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("remote query against %s failed: %v", e.Target, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

// Store is the pgx-backed Fetcher. One connection is checked out of the pool
// per call and released on every exit path.
type Store struct {
	log          zerolog.Logger
	pool         *db.Pool
	table        string
	geomColumn   string
	queryTimeout time.Duration
	metrics      *metrics.Metrics
}

type Options struct {
	Table        string
	GeomColumn   string
	QueryTimeout time.Duration
}

func New(log zerolog.Logger, pool *db.Pool, opts Options, m *metrics.Metrics) *Store {
	table := strings.TrimSpace(opts.Table)
	if table == "" {
		table = "features"
	}
	col := strings.TrimSpace(opts.GeomColumn)
	if col == "" {
		col = "geometry"
	}
	qt := opts.QueryTimeout
	if qt <= 0 {
		qt = 10 * time.Second
	}
	return &Store{
		log:          log,
		pool:         pool,
		table:        table,
		geomColumn:   col,
		queryTimeout: qt,
		metrics:      m,
	}
}

// Target identifies the query destination for diagnostics.
func (s *Store) Target() string {
	return s.table + "." + s.geomColumn
}

// FetchIntersecting runs one spatial query: WKB geometries from the
// configured table that intersect the envelope, LIMIT limit. The predicate
// and the row cap are pushed down to the warehouse so cost stays bounded.
func (s *Store) FetchIntersecting(ctx context.Context, envelope orb.Polygon, limit int) (FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return FetchResult{}, &RemoteQueryError{Target: s.Target(), Err: err}
	}
	defer conn.Release()

	b := envelope.Bound()
	q := fmt.Sprintf(
		`SELECT ST_AsBinary(%[1]s) FROM %[2]s `+
			`WHERE ST_Intersects(%[1]s, ST_MakeEnvelope($1, $2, $3, $4, 4326)) LIMIT $5`,
		sanitizeIdent(s.geomColumn), sanitizeIdent(s.table),
	)

	start := time.Now()
	rows, err := conn.Query(ctx, q, b.Min[0], b.Min[1], b.Max[0], b.Max[1], limit)
	if err != nil {
		return FetchResult{}, &RemoteQueryError{Target: s.Target(), Err: err}
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return FetchResult{}, &RemoteQueryError{Target: s.Target(), Err: err}
		}
		if len(raw) == 0 {
			continue
		}
		records = append(records, Record(raw))
	}
	if err := rows.Err(); err != nil {
		return FetchResult{}, &RemoteQueryError{Target: s.Target(), Err: err}
	}

	s.metrics.ObserveRemoteQuery(time.Since(start))
	s.log.Debug().
		Str("target", s.Target()).
		Int("records", len(records)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("warehouse fetch")

	return FetchResult{Records: records}, nil
}

// sanitizeIdent quotes a possibly schema-qualified identifier from config so
// it can be spliced into the query text.
func sanitizeIdent(ident string) string {
	parts := strings.Split(ident, ".")
	return pgx.Identifier(parts).Sanitize()
}
