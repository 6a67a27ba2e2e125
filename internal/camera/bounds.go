package camera

import (
	"github.com/twpayne/go-geom"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/mapengine"
)

// Extent returns the lon/lat bounding box of the placement-valid records.
// It reports false when none are placeable.
func Extent(records []domain.Record) (mapengine.Bounds, bool) {
	flat := make([]float64, 0, 2*len(records))
	for _, r := range records {
		pos, ok := domain.Placeable(r)
		if !ok {
			continue
		}
		flat = append(flat, pos.Lon, pos.Lat)
	}
	if len(flat) == 0 {
		return mapengine.Bounds{}, false
	}

	b := geom.NewMultiPointFlat(geom.XY, flat).Bounds()
	return mapengine.Bounds{
		South: b.Min(1),
		West:  b.Min(0),
		North: b.Max(1),
		East:  b.Max(0),
	}, true
}
