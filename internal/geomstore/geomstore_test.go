package geomstore

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vectile/internal/db"
	"vectile/internal/tilegrid"
)

func TestNew_defaults(t *testing.T) {
	s := New(zerolog.Nop(), nil, Options{}, nil)
	if s.Target() != "features.geometry" {
		t.Fatalf("unexpected default target %q", s.Target())
	}
	if s.queryTimeout != 10*time.Second {
		t.Fatalf("unexpected default timeout %v", s.queryTimeout)
	}
}

func TestSanitizeIdent(t *testing.T) {
	cases := map[string]string{
		"buildings":            `"buildings"`,
		"public.buildings":     `"public"."buildings"`,
		`weird"name`:           `"weird""name"`,
		"geom; DROP TABLE x--": `"geom; DROP TABLE x--"`,
	}
	for in, want := range cases {
		if got := sanitizeIdent(in); got != want {
			t.Fatalf("sanitizeIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetchIntersecting_noPoolIsRemoteQueryError(t *testing.T) {
	s := New(zerolog.Nop(), nil, Options{Table: "buildings"}, nil)
	env, err := tilegrid.Envelope(tilegrid.Coord{Z: 0, X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.FetchIntersecting(context.Background(), env, 100)
	if err == nil {
		t.Fatal("expected error without a pool")
	}
	rqe, ok := err.(*RemoteQueryError)
	if !ok {
		t.Fatalf("expected *RemoteQueryError, got %T", err)
	}
	if !strings.Contains(rqe.Error(), "buildings.geometry") {
		t.Fatalf("error should name the query target: %v", rqe)
	}
}

// Integration test against a real PostGIS database; skipped unless
// TEST_DATABASE_URL points at one with a seeded geometry table.
func TestFetchIntersecting_postgis(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostGIS integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	table := "vectile_test_geoms"
	for _, q := range []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		`DROP TABLE IF EXISTS ` + table,
		`CREATE TABLE ` + table + ` (id serial primary key, geom geometry(Polygon, 4326))`,
		`INSERT INTO ` + table + ` (geom) VALUES
			(ST_GeomFromText('POLYGON((5.38 52.15, 5.39 52.15, 5.39 52.16, 5.38 52.16, 5.38 52.15))', 4326)),
			(ST_GeomFromText('POLYGON((5.40 52.15, 5.41 52.15, 5.41 52.16, 5.40 52.16, 5.40 52.15))', 4326))`,
	} {
		if _, err := conn.Exec(ctx, q); err != nil {
			conn.Release()
			t.Fatalf("seed %q: %v", q, err)
		}
	}
	conn.Release()

	s := New(zerolog.Nop(), pool, Options{Table: table, GeomColumn: "geom"}, nil)

	env, err := tilegrid.Envelope(tilegrid.Coord{Z: 0, X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.FetchIntersecting(ctx, env, 100)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Count() != 2 {
		t.Fatalf("expected 2 records, got %d", res.Count())
	}

	// A tile far from the seeded geometries comes back empty.
	env, err = tilegrid.Envelope(tilegrid.Coord{Z: 10, X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	res, err = s.FetchIntersecting(ctx, env, 100)
	if err != nil {
		t.Fatalf("fetch empty region: %v", err)
	}
	if res.Count() != 0 {
		t.Fatalf("expected no records, got %d", res.Count())
	}
}
