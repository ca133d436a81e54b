package tilegrid

import (
	"errors"
	"testing"
)

func TestParseCoord_Valid(t *testing.T) {
	cases := []struct {
		z, x, y string
		want    Coord
	}{
		{"0", "0", "0", Coord{0, 0, 0}},
		{"1", "1", "0", Coord{1, 1, 0}},
		{"12", "2096", "1345", Coord{12, 2096, 1345}},
		{"19", "524287", "524287", Coord{19, 524287, 524287}},
	}
	for _, tc := range cases {
		got, err := ParseCoord(tc.z, tc.x, tc.y)
		if err != nil {
			t.Fatalf("ParseCoord(%s/%s/%s) unexpected error: %v", tc.z, tc.x, tc.y, err)
		}
		if got != tc.want {
			t.Fatalf("ParseCoord(%s/%s/%s) = %v, want %v", tc.z, tc.x, tc.y, got, tc.want)
		}
	}
}

func TestParseCoord_Invalid(t *testing.T) {
	cases := [][3]string{
		{"-1", "0", "0"},
		{"0", "1", "0"},
		{"0", "0", "1"},
		{"2", "4", "0"},
		{"2", "0", "-1"},
		{"abc", "0", "0"},
		{"1", "x", "0"},
		{"1", "0", "0.5"},
		{"31", "0", "0"},
	}
	for _, tc := range cases {
		_, err := ParseCoord(tc[0], tc[1], tc[2])
		if err == nil {
			t.Fatalf("ParseCoord(%s/%s/%s) expected error, got none", tc[0], tc[1], tc[2])
		}
		var ice *InvalidCoordinateError
		if !errors.As(err, &ice) {
			t.Fatalf("ParseCoord(%s/%s/%s) error type = %T, want *InvalidCoordinateError", tc[0], tc[1], tc[2], err)
		}
	}
}

func TestEnvelope_RootTileCoversWorld(t *testing.T) {
	poly, err := Envelope(Coord{0, 0, 0})
	if err != nil {
		t.Fatalf("Envelope(0/0/0): %v", err)
	}
	if len(poly) == 0 || len(poly[0]) < 5 {
		t.Fatalf("expected a closed ring, got %v", poly)
	}
	b := poly.Bound()
	if b.Min[0] > -179.9 || b.Max[0] < 179.9 {
		t.Fatalf("root tile should span all longitudes, got %v", b)
	}
	// Web-Mercator clips latitude around ±85.05.
	if b.Min[1] > -85 || b.Max[1] < 85 {
		t.Fatalf("root tile should span mercator latitudes, got %v", b)
	}
}

func TestEnvelope_NonDegenerateWithinCRSBounds(t *testing.T) {
	coords := []Coord{
		{1, 0, 0}, {1, 1, 1},
		{5, 16, 10}, {12, 2096, 1345}, {18, 134508, 86124},
	}
	for _, c := range coords {
		poly, err := Envelope(c)
		if err != nil {
			t.Fatalf("Envelope(%v): %v", c, err)
		}
		b := poly.Bound()
		if !(b.Min[0] < b.Max[0] && b.Min[1] < b.Max[1]) {
			t.Fatalf("Envelope(%v) is degenerate: %v", c, b)
		}
		if b.Min[0] < -180 || b.Max[0] > 180 || b.Min[1] < -90 || b.Max[1] > 90 {
			t.Fatalf("Envelope(%v) outside WGS84 bounds: %v", c, b)
		}
	}
}

func TestEnvelope_AdjacentTilesShareEdge(t *testing.T) {
	left, err := Envelope(Coord{3, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	right, err := Envelope(Coord{3, 3, 3})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := left.Bound().Max[0], right.Bound().Min[0]; got != want {
		t.Fatalf("adjacent tiles should share an edge: %v vs %v", got, want)
	}
}

func TestEnvelope_InvalidCoordinate(t *testing.T) {
	for _, c := range []Coord{{-1, 0, 0}, {0, 1, 0}, {3, 8, 0}} {
		if _, err := Envelope(c); err == nil {
			t.Fatalf("Envelope(%v) expected error", c)
		}
	}
}
