package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/cmlabs-hris/attendance-client-go/internal/config"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/location"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-client-go/internal/repository/remote"
	attendanceService "github.com/cmlabs-hris/attendance-client-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/attendance-client-go/internal/service/auth"
	"golang.org/x/oauth2"
)

// app is the composition root shared by every command.
type app struct {
	cfg   *config.Config
	in    io.Reader
	lines *bufio.Reader
	out   io.Writer

	authService       auth.AuthService
	attendanceService attendance.AttendanceService
	workingHours      attendance.WorkingHours
	geofence          *geo.OfficeGeofence
	permissions       geo.PermissionResetter
	hub               *sse.Hub
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	a := &app{
		cfg:          cfg,
		in:           in,
		lines:        bufio.NewReader(in),
		out:          out,
		hub:          sse.NewHub(),
		workingHours: attendance.WorkingHours{Start: cfg.Office.WorkStart, End: cfg.Office.WorkEnd},
	}

	store, err := openTokenStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	// The API client needs the auth service's tokens and the auth service
	// needs the API client, so tokens are looked up lazily.
	tokens := apiclient.TokenSourceFunc(func() (*oauth2.Token, error) {
		return a.authService.TokenSource().Token()
	})
	api, err := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, tokens,
		apiclient.WithUnauthorizedHandler(func() { a.authService.Invalidate() }))
	if err != nil {
		return nil, err
	}

	var authenticator auth.Authenticator
	switch cfg.API.AuthMode {
	case config.AuthModeOAuth2:
		authenticator = remote.NewPasswordAuthenticator(api, cfg.API.OAuthClientID, cfg.API.OAuthClientSecret)
	case config.AuthModeJSON:
		authenticator = remote.NewJSONAuthenticator(api)
	default:
		return nil, fmt.Errorf("%w: %s", auth.ErrUnsupportedAuthMode, cfg.API.AuthMode)
	}
	a.authService = authService.NewAuthService(remote.NewAuthRepository(api), authenticator, store)

	a.geofence, err = geo.NewOfficeGeofence(geo.Coordinate{Latitude: cfg.Office.Latitude, Longitude: cfg.Office.Longitude}, cfg.Office.RadiusMeters)
	if err != nil {
		return nil, err
	}

	provider := location.NewProvider(newLocationSource(cfg.Location), newPrompter(cfg.Location, a.lines, out))
	a.permissions = provider
	validator := attendanceService.NewValidator(provider, a.geofence, cfg.Location.Timeout, cfg.Location.MaxAge)

	a.attendanceService = attendanceService.NewAttendanceService(
		remote.NewAttendanceRepository(api),
		validator,
		a.publishSession,
	)

	slog.Debug("Client initialised",
		"api", api.BaseURL(),
		"auth_mode", cfg.API.AuthMode,
		"location_source", cfg.Location.Source,
		"office", a.geofence.Center().String(),
		"radius_m", a.geofence.RadiusMeters())
	return a, nil
}

// publishSession forwards session changes to the signed-in user's event streams.
func (a *app) publishSession(snapshot attendance.SessionSnapshot) {
	session, err := a.authService.Current()
	if err != nil {
		return
	}
	a.hub.Publish(session.User.ID, sse.Event{Event: sse.EventSession, Data: snapshot})
}

func openTokenStore(cfg config.StorageConfig) (*storage.LocalStorage, error) {
	passphrase := cfg.Passphrase
	if passphrase == "" {
		id, err := storage.DeviceID(filepath.Join(filepath.Dir(cfg.Path), "device-id"))
		if err != nil {
			return nil, err
		}
		passphrase = id
	}
	return storage.NewLocalStorage(cfg.Path, passphrase)
}

func newLocationSource(cfg config.LocationConfig) location.Source {
	if cfg.Source == config.LocationSourceStatic {
		return location.NewStaticSource(geo.Coordinate{Latitude: *cfg.StaticLatitude, Longitude: *cfg.StaticLongitude})
	}
	return location.NewGPSDSource(cfg.GPSDAddr)
}

func newPrompter(cfg config.LocationConfig, in io.Reader, out io.Writer) location.Prompter {
	switch cfg.Permission {
	case config.PermissionGranted:
		return location.FixedPrompter(true)
	case config.PermissionDenied:
		return location.FixedPrompter(false)
	}
	return location.NewTerminalPrompter(in, out)
}
