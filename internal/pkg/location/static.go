package location

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
)

// StaticSource always reports the same coordinate, stamped with the current time.
type StaticSource struct {
	coordinate geo.Coordinate
	now        func() time.Time
}

func NewStaticSource(c geo.Coordinate) *StaticSource {
	return &StaticSource{coordinate: c, now: time.Now}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Fix(ctx context.Context) (geo.LocationFix, error) {
	if err := ctx.Err(); err != nil {
		return geo.LocationFix{}, err
	}
	return geo.LocationFix{
		Coordinate: s.coordinate,
		SampledAt:  s.now(),
		Source:     s.Name(),
	}, nil
}
