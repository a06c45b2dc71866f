package utils

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// LocationMismatchMeters is how far a device fix may sit from the
// catalog coordinates before the submission carries a mismatch warning.
const LocationMismatchMeters = 500.0

// ValidateCoordinate checks the ranges of a lat/lon pair.
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", lon)
	}
	if lat == 0 && lon == 0 {
		return errors.New("coordinate (0, 0) is not a usable fix")
	}
	return nil
}

// DistanceMeters returns the haversine distance between two fixes.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.Distance(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// LocationMismatch reports whether the device fix is suspiciously far
// from the catalog location, and the measured distance.
func LocationMismatch(deviceLat, deviceLon, catalogLat, catalogLon float64) (float64, bool) {
	d := DistanceMeters(deviceLat, deviceLon, catalogLat, catalogLon)
	return d, d > LocationMismatchMeters
}
