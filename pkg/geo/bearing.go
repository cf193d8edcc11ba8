package geo

import "math"

// PointAtRatio returns the point on segment AB at the given ratio in [0,1].
func PointAtRatio(aLat, aLon, bLat, bLon, ratio float64) (lat, lon float64) {
	return aLat + ratio*(bLat-aLat), aLon + ratio*(bLon-aLon)
}

// Bearing returns the initial compass bearing in degrees [0, 360) from
// point 1 to point 2.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2r)
	x := math.Cos(lat1r)*math.Sin(lat2r) - math.Sin(lat1r)*math.Cos(lat2r)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(theta+360, 360)
}

// AngleDiff returns the signed difference b-a in degrees, normalized to
// [-180, 180), i.e. the smallest rotation from bearing a to bearing b.
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a+540, 360) - 180
	return d
}
