// Package spatial answers radius queries over stop coordinates with an R-tree.
//
// Distances are measured in degrees using a flat km-to-degree conversion
// (1° ≈ 111 km). That is exact enough near the equator and at city scale;
// at high latitudes the longitude axis is over-counted, so results near the
// edge of the radius may be missing. This is a documented approximation.
package spatial

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

// KMPerDegree converts a radius in kilometers to degrees.
const KMPerDegree = 111.0

// Match is one stop inside the query circle.
type Match struct {
	StopID      string
	Lat, Lon    float64
	DistanceDeg float64
}

// Index holds one zero-area box per stop, keyed by stop id.
type Index struct {
	tree rtree.RTreeG[string]
}

// Build indexes every stop of the dataset.
func Build(d *gtfs.Dataset) *Index {
	idx := &Index{}
	for id, s := range d.Stops {
		idx.Insert(id, s.Lat, s.Lon)
	}
	return idx
}

// Insert adds a point. Only Build calls it on a published index.
func (idx *Index) Insert(stopID string, lat, lon float64) {
	p := [2]float64{lon, lat}
	idx.tree.Insert(p, p, stopID)
}

func (idx *Index) Len() int { return idx.tree.Len() }

// Within returns every stop whose degree-space distance to (lat, lon) is at
// most radiusKM/111. Candidates come from the bounding square and are then
// cut down to the inscribed circle. Matches are ordered by distance, then id.
func (idx *Index) Within(lat, lon, radiusKM float64) []Match {
	if radiusKM < 0 || math.IsNaN(radiusKM) {
		return nil
	}
	delta := radiusKM / KMPerDegree
	min := [2]float64{lon - delta, lat - delta}
	max := [2]float64{lon + delta, lat + delta}

	var out []Match
	idx.tree.Search(min, max, func(pmin, _ [2]float64, stopID string) bool {
		dLon := pmin[0] - lon
		dLat := pmin[1] - lat
		dist := math.Sqrt(dLon*dLon + dLat*dLat)
		if dist <= delta {
			out = append(out, Match{StopID: stopID, Lat: pmin[1], Lon: pmin[0], DistanceDeg: dist})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceDeg != out[j].DistanceDeg {
			return out[i].DistanceDeg < out[j].DistanceDeg
		}
		return out[i].StopID < out[j].StopID
	})
	return out
}
