package utils

import (
	"github.com/mmcloughlin/geohash"
	"github.com/piresc/fleetwatch/internal/pkg/models"
)

// EncodeCoordinates converts a position to a geohash string of the given length
func EncodeCoordinates(c models.Coordinates, precision uint) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}

// GeohashPrefix shortens a geohash to precision characters, keeping it
// unchanged when it is already short enough
func GeohashPrefix(hash string, precision uint) string {
	if uint(len(hash)) <= precision {
		return hash
	}
	return hash[:precision]
}
