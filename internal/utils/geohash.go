package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/piresc/ridertrack/internal/pkg/models"
)

// EarthRadiusMeters is the mean earth radius used for distance math
const EarthRadiusMeters = 6371000.0

// EncodeFix converts a fix position to a geohash string
func EncodeFix(fix models.Fix, precision uint) string {
	return geohash.EncodeWithPrecision(fix.Lat, fix.Lng, precision)
}

// DecodeGeohash converts a geohash string to the center latitude and longitude
func DecodeGeohash(hash string) (latitude, longitude float64) {
	return geohash.Decode(hash)
}

// HaversineMeters returns the great circle distance between two points in meters
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180.0
	phi2 := lat2 * math.Pi / 180.0
	dPhi := (lat2 - lat1) * math.Pi / 180.0
	dLambda := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// clamp rounding noise so antipodal points don't produce NaN
	a = math.Min(1, math.Max(0, a))
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

// DistanceBetweenFixes is HaversineMeters over two fixes
func DistanceBetweenFixes(a, b models.Fix) float64 {
	return HaversineMeters(a.Lat, a.Lng, b.Lat, b.Lng)
}
