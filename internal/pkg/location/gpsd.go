package location

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
)

const DefaultGPSDAddr = "127.0.0.1:2947"

var watchCommand = []byte(`?WATCH={"enable":true,"json":true};` + "\n")

// GPSDSource reads fixes from a gpsd daemon using its JSON protocol.
type GPSDSource struct {
	addr   string
	dialer net.Dialer
}

func NewGPSDSource(addr string) *GPSDSource {
	if addr == "" {
		addr = DefaultGPSDAddr
	}
	return &GPSDSource{addr: addr}
}

func (g *GPSDSource) Name() string { return "gpsd" }

// tpvReport is the subset of a gpsd TPV object we use.
type tpvReport struct {
	Class string   `json:"class"`
	Mode  int      `json:"mode"`
	Time  string   `json:"time"`
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Eph   *float64 `json:"eph"`
	Epx   *float64 `json:"epx"`
	Epy   *float64 `json:"epy"`
}

// Fix watches gpsd until the first 2D/3D fix arrives.
func (g *GPSDSource) Fix(ctx context.Context) (geo.LocationFix, error) {
	conn, err := g.dialer.DialContext(ctx, "tcp", g.addr)
	if err != nil {
		return geo.LocationFix{}, fmt.Errorf("failed to connect to gpsd at %s: %w", g.addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := conn.Write(watchCommand); err != nil {
		return geo.LocationFix{}, fmt.Errorf("failed to send WATCH to gpsd: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var report tpvReport
		if err := json.Unmarshal(scanner.Bytes(), &report); err != nil {
			continue
		}
		if fix, ok := report.toFix(); ok {
			return fix, nil
		}
	}

	if ctx.Err() != nil {
		return geo.LocationFix{}, ctx.Err()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return geo.LocationFix{}, fmt.Errorf("failed to read from gpsd: %w", err)
	}
	return geo.LocationFix{}, errors.New("gpsd closed the connection before reporting a fix")
}

// toFix accepts TPV reports with mode 2 (2D) or 3 (3D) and a position.
func (r tpvReport) toFix() (geo.LocationFix, bool) {
	if r.Class != "TPV" || r.Mode < 2 || r.Lat == nil || r.Lon == nil {
		return geo.LocationFix{}, false
	}

	sampledAt := time.Now().UTC()
	if r.Time != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.Time); err == nil {
			sampledAt = t
		}
	}

	fix := geo.LocationFix{
		Coordinate: geo.Coordinate{Latitude: *r.Lat, Longitude: *r.Lon},
		SampledAt:  sampledAt,
		Source:     "gpsd",
	}
	switch {
	case r.Eph != nil:
		acc := *r.Eph
		fix.AccuracyMeters = &acc
	case r.Epx != nil && r.Epy != nil:
		acc := math.Max(*r.Epx, *r.Epy)
		fix.AccuracyMeters = &acc
	}
	return fix, true
}
