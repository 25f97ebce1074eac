package gtfs

import "math"

// ShapeForTrip returns the ordered polyline of the trip's shape, or nil when
// the trip has no shape.
func (d *Dataset) ShapeForTrip(tripID string) []ShapePoint {
	t, ok := d.Trips[tripID]
	if !ok || t.ShapeID == "" {
		return nil
	}
	return d.Shapes[t.ShapeID]
}

// ShapeLengthKM sums the great-circle length of a polyline.
func ShapeLengthKM(pts []ShapePoint) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += HaversineKM(pts[i-1].Lat, pts[i-1].Lon, pts[i].Lat, pts[i].Lon)
	}
	return total
}

// HaversineKM is the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
