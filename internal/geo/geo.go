// Package geo holds the position value objects shared by the parser,
// store, and fan-out layers: a validated latitude/longitude pair and the
// Maidenhead grid locator used by beacon packets.
package geo

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/chrissnell/aprsingest/internal/apperr"
)

// Coordinate is an immutable, validated latitude/longitude pair.
type Coordinate struct {
	lat float64
	lon float64
}

// NewCoordinate validates and constructs a Coordinate. Latitude must lie
// in [-90, 90] and longitude in [-180, 180].
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, apperr.Validation("latitude", fmt.Sprintf("out of range [-90,90]: %f", lat))
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, apperr.Validation("longitude", fmt.Sprintf("out of range [-180,180]: %f", lon))
	}
	return Coordinate{lat: round6(lat), lon: round6(lon)}, nil
}

func (c Coordinate) Lat() float64 { return c.lat }
func (c Coordinate) Lon() float64 { return c.lon }

// AreaCell returns the fan-out area-group key for this coordinate:
// "area:<floor(lat)>_<floor(lon)>".
func (c Coordinate) AreaCell() string {
	return fmt.Sprintf("area:%d_%d", int(math.Floor(c.lat)), int(math.Floor(c.lon)))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

var locatorPattern = regexp.MustCompile(`^[A-R]{2}[0-9]{2}([A-X]{2}([0-9]{2})?)?$`)

// Locator is an immutable Maidenhead grid locator, stored uppercase.
type Locator struct {
	value string
}

// ParseLocator validates and constructs a Locator from a 4-, 6-, or
// 8-character grid string.
func ParseLocator(raw string) (Locator, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if !locatorPattern.MatchString(value) {
		return Locator{}, apperr.Validation("locator", fmt.Sprintf("malformed maidenhead grid: %q", raw))
	}
	return Locator{value: value}, nil
}

func (l Locator) Value() string  { return l.value }
func (l Locator) IsZero() bool   { return l.value == "" }
func (l Locator) String() string { return l.value }

// ToCenterPosition converts the locator to the Coordinate at the center
// of the grid cell it names, per the precision implied by its length.
func (l Locator) ToCenterPosition() (Coordinate, error) {
	return LocatorCenter(l.value)
}

// LocatorCenter decodes a Maidenhead grid string directly to the
// Coordinate at its cell center, without requiring a validated Locator.
// It is the shared utility behind both Locator.ToCenterPosition and the
// parser's `[GRID]comment` beacon handler.
func LocatorCenter(raw string) (Coordinate, error) {
	g := strings.ToUpper(strings.TrimSpace(raw))
	if !locatorPattern.MatchString(g) {
		return Coordinate{}, apperr.Validation("locator", fmt.Sprintf("malformed maidenhead grid: %q", raw))
	}

	// Field: 20deg x 10deg, letters A-R.
	lon := float64(g[0]-'A')*20 - 180
	lat := float64(g[1]-'A')*10 - 90

	// Square: 2deg x 1deg, digits 0-9.
	lon += float64(g[2]-'0') * 2
	lat += float64(g[3]-'0') * 1

	// Cell width/height shrink as more precision is supplied; start at
	// square-level granularity, shrink 24-fold for the subsquare letters
	// and 10-fold for the extended digits, so the running "+" below always lands at the
	// current cell's center.
	lonSpan := 2.0
	latSpan := 1.0

	if len(g) >= 6 {
		// Subsquare: 5' x 2.5', letters A-X -> 1/24 degree per unit.
		lon += float64(g[4]-'A') * (2.0 / 24.0)
		lat += float64(g[5]-'A') * (1.0 / 24.0)
		lonSpan = 2.0 / 24.0
		latSpan = 1.0 / 24.0
	}

	if len(g) == 8 {
		// Extended square: 10x finer than the subsquare.
		lon += float64(g[6]-'0') * (lonSpan / 10.0)
		lat += float64(g[7]-'0') * (latSpan / 10.0)
		lonSpan /= 10.0
		latSpan /= 10.0
	}

	lon += lonSpan / 2.0
	lat += latSpan / 2.0

	return NewCoordinate(lat, lon)
}

// FromCoordinates encodes a Coordinate back to a Maidenhead grid string
// at the given precision (4, 6, or 8 characters), the inverse of
// LocatorCenter for cell-center inputs.
func FromCoordinates(c Coordinate, precision int) (string, error) {
	if precision != 4 && precision != 6 && precision != 8 {
		return "", apperr.Validation("precision", fmt.Sprintf("must be 4, 6, or 8: %d", precision))
	}

	lon := c.lon + 180
	lat := c.lat + 90

	fieldLon := int(lon / 20)
	fieldLat := int(lat / 10)
	lon -= float64(fieldLon) * 20
	lat -= float64(fieldLat) * 10

	squareLon := int(lon / 2)
	squareLat := int(lat / 1)
	lon -= float64(squareLon) * 2
	lat -= float64(squareLat) * 1

	out := []byte{
		byte('A' + fieldLon),
		byte('A' + fieldLat),
		byte('0' + squareLon),
		byte('0' + squareLat),
	}

	if precision >= 6 {
		subLon := int(lon / (2.0 / 24.0))
		subLat := int(lat / (1.0 / 24.0))
		lon -= float64(subLon) * (2.0 / 24.0)
		lat -= float64(subLat) * (1.0 / 24.0)
		out = append(out, byte('A'+subLon), byte('A'+subLat))
	}

	if precision == 8 {
		extLon := int(lon / (2.0 / 240.0))
		extLat := int(lat / (1.0 / 240.0))
		out = append(out, byte('0'+extLon), byte('0'+extLat))
	}

	return string(out), nil
}
