package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
	"github.com/cmlabs-hris/attendance-client-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Session(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ResetLocationPermission(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	authService       auth.AuthService
	permissions       geo.PermissionResetter
}

// NewAttendanceHandler takes the location provider's permission cache; nil
// means the provider does not cache answers.
func NewAttendanceHandler(attendanceService attendance.AttendanceService, authService auth.AuthService, permissions geo.PermissionResetter) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		authService:       authService,
		permissions:       permissions,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCheckRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		slog.Error("Check in failed", "error", err)
		response.HandleError(w, err)
		return
	}
	writeCheckResponse(w, result, "Check in successful")
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCheckRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		slog.Error("Check out failed", "error", err)
		response.HandleError(w, err)
		return
	}
	writeCheckResponse(w, result, "Check out successful")
}

// decodeCheckRequest accepts an empty body since notes are optional.
func (h *attendanceHandlerImpl) decodeCheckRequest(w http.ResponseWriter, r *http.Request) (attendance.CheckRequest, bool) {
	var req attendance.CheckRequest

	if err := requireSessionUser(r, h.authService); err != nil {
		response.HandleError(w, err)
		return req, false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

func writeCheckResponse(w http.ResponseWriter, result attendance.CheckResponse, message string) {
	if !result.Authorized {
		response.Denied(w, result, string(result.Reason), result.Message)
		return
	}
	response.Created(w, message, result)
}

// Session implements AttendanceHandler.
func (h *attendanceHandlerImpl) Session(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.Session())
}

// ResetLocationPermission implements AttendanceHandler. The next check-in or
// check-out asks for location permission again.
func (h *attendanceHandlerImpl) ResetLocationPermission(w http.ResponseWriter, r *http.Request) {
	if h.permissions != nil {
		h.permissions.ResetPermission()
	}
	slog.Info("Location permission reset from bridge")
	response.SuccessWithMessage(w, "Location permission will be requested on the next check", nil)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	record, err := h.attendanceService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, record)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := attendance.HistoryFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Status:    q.Get("status"),
	}

	records, err := h.attendanceService.History(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, records, &response.Meta{TotalItems: int64(len(records))})
}

// Stats implements AttendanceHandler.
func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	filter := attendance.StatsFilter{Month: r.URL.Query().Get("month")}

	stats, err := h.attendanceService.Stats(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attendance ID is required", nil)
		return
	}

	record, err := h.attendanceService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, record)
}
