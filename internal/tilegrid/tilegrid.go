// Package tilegrid implements the Web-Mercator tile pyramid math: parsing and
// validating {z}/{x}/{y} coordinates and deriving the geographic envelope a
// tile covers.
package tilegrid

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom bounds the accepted zoom range. Tile indices are held in uint32 by
// the pyramid math, so the level must stay well below 32.
const MaxZoom = 30

// Coord identifies one tile in the Web-Mercator tile pyramid.
type Coord struct {
	Z int
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Valid reports whether the coordinate lies inside the pyramid: zoom in
// [0, MaxZoom] and column/row in [0, 2^zoom).
func (c Coord) Valid() bool {
	if c.Z < 0 || c.Z > MaxZoom {
		return false
	}
	n := int64(1) << uint(c.Z)
	return int64(c.X) >= 0 && int64(c.X) < n && int64(c.Y) >= 0 && int64(c.Y) < n
}

// Tile returns the orb maptile representation. Only meaningful for valid
// coordinates.
func (c Coord) Tile() maptile.Tile {
	return maptile.New(uint32(c.X), uint32(c.Y), maptile.Zoom(c.Z))
}

// InvalidCoordinateError marks a tile path that is malformed or outside the
// pyramid. The endpoint maps it to a client error.
type InvalidCoordinateError struct {
	ZXY string
}

func (e *InvalidCoordinateError) Error() string {
	return "invalid tile coordinate " + e.ZXY
}

// ParseCoord builds a Coord from raw path parameters. Non-numeric or
// out-of-range input yields an InvalidCoordinateError.
func ParseCoord(zs, xs, ys string) (Coord, error) {
	z, errZ := strconv.Atoi(zs)
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errZ != nil || errX != nil || errY != nil {
		return Coord{}, &InvalidCoordinateError{ZXY: zs + "/" + xs + "/" + ys}
	}
	c := Coord{Z: z, X: x, Y: y}
	if !c.Valid() {
		return Coord{}, &InvalidCoordinateError{ZXY: c.String()}
	}
	return c, nil
}

// Envelope returns the tile's bounding polygon in WGS84 lon/lat, the CRS
// stored geometries are queried in. Pure; fails only on invalid coordinates.
func Envelope(c Coord) (orb.Polygon, error) {
	if !c.Valid() {
		return nil, &InvalidCoordinateError{ZXY: c.String()}
	}
	return c.Tile().Bound().ToPolygon(), nil
}
