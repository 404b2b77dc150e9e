package geo

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/validator"
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLatitude(c.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if !validator.IsValidLongitude(c.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}

	return errs.Err()
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// LocationFix is a single location sample.
type LocationFix struct {
	Coordinate
	SampledAt      time.Time `json:"sampled_at"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty"`
	Source         string    `json:"source,omitempty"`
}

// Age reports how old the fix is at now.
func (f LocationFix) Age(now time.Time) time.Duration {
	return now.Sub(f.SampledAt)
}

// DistanceMeters is the haversine great-circle distance between a and b.
func DistanceMeters(a, b Coordinate) float64 {
	return utils.CalculateHaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
