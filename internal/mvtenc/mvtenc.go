// Package mvtenc serializes fetched geometries into a Mapbox Vector Tile
// payload: WKB in, tile-local protobuf bytes out.
package mvtenc

import (
	"fmt"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"

	"vectile/internal/geomstore"
	"vectile/internal/tilegrid"
)

// DefaultLayerName is the single logical layer clients address in their
// style ("source-layer").
const DefaultLayerName = "layer"

// EncodingError marks malformed geometry input. The endpoint degrades to the
// empty tile instead of failing the request.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("tile encoding failed: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encoder builds single-layer MVT payloads.
type Encoder struct {
	layerName string
	extent    uint32
}

type Options struct {
	LayerName string
	Extent    uint32
}

func New(opts Options) *Encoder {
	name := opts.LayerName
	if name == "" {
		name = DefaultLayerName
	}
	extent := opts.Extent
	if extent == 0 {
		extent = mvt.DefaultExtent
	}
	return &Encoder{layerName: name, extent: extent}
}

// Encode reprojects each WKB record into tile-local coordinates for c, clips
// to the tile extent, and marshals one MVT layer. An empty record set yields
// a well-formed zero-feature tile; a degenerate nil marshal result is
// replaced by the canonical zero-length payload. Deterministic for a given
// input.
func (e *Encoder) Encode(c tilegrid.Coord, records []geomstore.Record) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, rec := range records {
		g, err := wkb.Unmarshal(rec)
		if err != nil {
			return nil, &EncodingError{Err: err}
		}
		fc.Append(geojson.NewFeature(g))
	}

	layer := mvt.NewLayer(e.layerName, fc)
	layer.Version = 2
	layer.Extent = e.extent

	layers := mvt.Layers{layer}
	layers.ProjectToTile(c.Tile())
	layers.Clip(mvt.MapboxGLDefaultExtentBound)

	data, err := mvt.Marshal(layers)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
