package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/apiclient"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newAPI(t *testing.T, r http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	api, err := apiclient.New(srv.URL, time.Second,
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access-1"}))
	require.NoError(t, err)
	return api
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAttendanceRepository_CheckIn(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/attendance/check-in", func(w http.ResponseWriter, req *http.Request) {
		var body attendance.RecordEventRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.InDelta(t, 40.7128, body.Latitude, 1e-9)
		assert.InDelta(t, -74.006, body.Longitude, 1e-9)
		require.NotNil(t, body.Notes)
		assert.Equal(t, "on time", *body.Notes)

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":          "att-1",
			"userId":      "u-1",
			"date":        "2026-10-18",
			"checkInTime": "2026-10-18T09:01:00Z",
			"status":      "present",
			"location":    map[string]any{"latitude": body.Latitude, "longitude": body.Longitude},
		})
	})
	repo := NewAttendanceRepository(newAPI(t, r))

	notes := "on time"
	rec, err := repo.CheckIn(context.Background(), attendance.RecordEventRequest{Latitude: 40.7128, Longitude: -74.006, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "att-1", rec.ID)
	assert.Equal(t, attendance.RecordStatusPresent, rec.Status)
	require.NotNil(t, rec.CheckInTime)
	assert.Nil(t, rec.CheckOutTime)
}

func TestAttendanceRepository_CheckOutRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/attendance/check-out", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Not checked in"})
	})
	repo := NewAttendanceRepository(newAPI(t, r))

	_, err := repo.CheckOut(context.Background(), attendance.RecordEventRequest{})
	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Not checked in", apiErr.Message)
}

func TestAttendanceRepository_Today(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/attendance/today", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := NewAttendanceRepository(newAPI(t, r)).Today(context.Background())
		assert.ErrorIs(t, err, attendance.ErrNoRecordToday)
	})

	t.Run("empty body", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/attendance/today", func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte("null"))
		})
		_, err := NewAttendanceRepository(newAPI(t, r)).Today(context.Background())
		assert.ErrorIs(t, err, attendance.ErrNoRecordToday)
	})
}

func TestAttendanceRepository_HistoryAndStats(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/attendance/history", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "2026-10-01", req.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-10-31", req.URL.Query().Get("endDate"))
		assert.False(t, req.URL.Query().Has("status"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "a", "status": "present"},
			{"id": "b", "status": "late"},
		})
	})
	r.Get("/attendance/stats", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "2026-10", req.URL.Query().Get("month"))
		writeJSON(w, http.StatusOK, attendance.Stats{Present: 10, Late: 2, Absent: 1, Total: 13, Percentage: 92.3})
	})
	repo := NewAttendanceRepository(newAPI(t, r))

	records, err := repo.History(context.Background(), attendance.HistoryFilter{StartDate: "2026-10-01", EndDate: "2026-10-31"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, attendance.RecordStatusLate, records[1].Status)

	stats, err := repo.Stats(context.Background(), attendance.StatsFilter{Month: "2026-10"})
	require.NoError(t, err)
	assert.Equal(t, 13, stats.Total)
}

func TestAttendanceRepository_GetByID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/attendance/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "att-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Attendance not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "att-1"})
	})
	repo := NewAttendanceRepository(newAPI(t, r))

	rec, err := repo.GetByID(context.Background(), "att-1")
	require.NoError(t, err)
	assert.Equal(t, "att-1", rec.ID)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAuthRepository(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		assert.Empty(t, req.Header.Get("Authorization"))
		writeJSON(w, http.StatusCreated, map[string]any{
			"user":  map[string]any{"id": "u-1", "email": "jane@example.com", "name": "Jane", "role": "employee"},
			"token": "tok",
		})
	})
	r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer access-1", req.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "u-1", "email": "jane@example.com", "name": "Jane", "role": "admin"})
	})
	r.Put("/auth/profile", func(w http.ResponseWriter, req *http.Request) {
		var body user.UpdateProfileRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{"id": "u-1", "name": *body.Name, "role": "employee"})
	})
	r.Post("/auth/change-password", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "old-secret", body["oldPassword"])
		assert.Equal(t, "new-secret", body["newPassword"])
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	repo := NewAuthRepository(newAPI(t, r))
	ctx := context.Background()

	reg, err := repo.Register(ctx, auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", reg.User.ID)

	me, err := repo.Me(ctx)
	require.NoError(t, err)
	assert.True(t, me.IsAdmin())

	name := "Janet"
	updated, err := repo.UpdateProfile(ctx, user.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.Name)

	require.NoError(t, repo.ChangePassword(ctx, auth.ChangePasswordRequest{OldPassword: "old-secret", NewPassword: "new-secret"}))
	require.NoError(t, repo.Logout(ctx))
}

func TestPasswordAuthenticator(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/oauth/token", func(w http.ResponseWriter, req *http.Request) {
		id, secret, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "fira-api-client", id)
		assert.Equal(t, "please-change-this", secret)
		require.NoError(t, req.ParseForm())

		switch req.PostForm.Get("grant_type") {
		case "password":
			if req.PostForm.Get("password") != "secret1" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Bad credentials"})
				return
			}
			assert.Equal(t, "jane@example.com", req.PostForm.Get("username"))
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "access-1", "refresh_token": "refresh-1", "token_type": "bearer", "expires_in": 3600,
			})
		case "refresh_token":
			if req.PostForm.Get("refresh_token") != "refresh-1" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "access-2", "token_type": "bearer", "expires_in": 3600})
		}
	})
	authn := NewPasswordAuthenticator(newAPI(t, r), "fira-api-client", "please-change-this")
	ctx := context.Background()

	tok, err := authn.Authenticate(ctx, auth.LoginRequest{Username: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
	assert.InDelta(t, 3600, tok.ExpiresIn, 5)

	_, err = authn.Authenticate(ctx, auth.LoginRequest{Username: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	refreshed, err := authn.Refresh(ctx, "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", refreshed.AccessToken)
	assert.Equal(t, "refresh-1", refreshed.RefreshToken)

	_, err = authn.Refresh(ctx, "stale")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	_, err = authn.Refresh(ctx, "")
	assert.ErrorIs(t, err, auth.ErrRefreshUnavailable)
}

func TestJSONAuthenticator(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body auth.LoginRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "access-1",
			"user":         map[string]any{"id": "u-1", "email": body.Username, "name": "Jane", "role": "employee"},
		})
	})
	authn := NewJSONAuthenticator(newAPI(t, r))
	ctx := context.Background()

	tok, err := authn.Authenticate(ctx, auth.LoginRequest{Username: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	require.NotNil(t, tok.User)
	assert.Equal(t, "u-1", tok.User.ID)

	_, err = authn.Authenticate(ctx, auth.LoginRequest{Username: "jane@example.com", Password: "nope"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = authn.Refresh(ctx, "anything")
	assert.ErrorIs(t, err, auth.ErrRefreshUnavailable)
}
