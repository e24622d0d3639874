package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates in kilometres.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ValidCoordinate reports whether lat/lng are inside the WGS84 ranges.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// Office is the reference point punches are measured against.
type Office struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Evaluator decides whether a punch location counts as on-site.
type Evaluator struct {
	office Office
}

func NewEvaluator(office Office) *Evaluator {
	return &Evaluator{office: office}
}

func (e *Evaluator) Office() Office {
	return e.office
}

// OnSite reports whether the coordinates fall within the office radius.
// Missing coordinates are never on-site. Callers validate ranges first.
func (e *Evaluator) OnSite(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	return DistanceKm(*lat, *lng, e.office.Latitude, e.office.Longitude) <= e.office.RadiusKm
}
