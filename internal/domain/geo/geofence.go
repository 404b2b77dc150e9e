package geo

import "fmt"

// OfficeGeofence is a circular area around the office. It is immutable once built.
type OfficeGeofence struct {
	center       Coordinate
	radiusMeters float64
}

func NewOfficeGeofence(center Coordinate, radiusMeters float64) (*OfficeGeofence, error) {
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geofence center: %w", err)
	}
	if !(radiusMeters > 0) {
		return nil, ErrInvalidRadius
	}
	return &OfficeGeofence{center: center, radiusMeters: radiusMeters}, nil
}

func (g *OfficeGeofence) Center() Coordinate {
	return g.center
}

func (g *OfficeGeofence) RadiusMeters() float64 {
	return g.radiusMeters
}

// Distance returns how far p is from the center, in meters.
func (g *OfficeGeofence) Distance(p Coordinate) float64 {
	return DistanceMeters(p, g.center)
}

// Contains reports whether p lies inside the fence. The boundary counts as inside.
func (g *OfficeGeofence) Contains(p Coordinate) bool {
	return g.Distance(p) <= g.radiusMeters
}
