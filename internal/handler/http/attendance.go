package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	FacePunch(w http.ResponseWriter, r *http.Request)
	RequestRegularization(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	RejectRegularization(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	faceService       face.FaceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, faceService face.FaceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		faceService:       faceService,
	}
}

// Punch implements AttendanceHandler.
func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Punch decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = employeeID

	h.markPunch(w, r, req)
}

// FacePunch implements AttendanceHandler.
func (h *attendanceHandlerImpl) FacePunch(w http.ResponseWriter, r *http.Request) {
	var req attendance.FacePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Face punch decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	match, err := h.faceService.Verify(r.Context(), face.VerifyRequest{Descriptor: req.Descriptor})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !match.Match {
		response.HandleError(w, face.ErrFaceNotRecognized)
		return
	}

	req.PunchRequest.EmployeeID = match.EmployeeID
	h.markPunch(w, r, req.PunchRequest)
}

func (h *attendanceHandlerImpl) markPunch(w http.ResponseWriter, r *http.Request, req attendance.PunchRequest) {
	result, err := h.attendanceService.MarkPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Type == attendance.PunchClockIn {
		response.Created(w, result.Message, result.Attendance)
		return
	}
	response.SuccessWithMessage(w, result.Message, result.Attendance)
}

// RequestRegularization implements AttendanceHandler.
func (h *attendanceHandlerImpl) RequestRegularization(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.RegularizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Regularization decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.attendanceService.RequestRegularization(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Regularization Request Sent", result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	query := r.URL.Query()
	filter := attendance.MyAttendanceFilter{
		Date:      optionalParam(query, "date"),
		StartDate: optionalParam(query, "start_date"),
		EndDate:   optionalParam(query, "end_date"),
		Status:    optionalParam(query, "status"),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
	}
	filter.Page, filter.Limit = pagination(query)

	results, err := h.attendanceService.GetMyAttendance(r.Context(), employeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, listMeta(results))
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := attendance.AttendanceFilter{
		EmployeeID:           optionalParam(query, "employee_id"),
		EmployeeName:         optionalParam(query, "employee_name"),
		Date:                 optionalParam(query, "date"),
		StartDate:            optionalParam(query, "start_date"),
		EndDate:              optionalParam(query, "end_date"),
		Status:               optionalParam(query, "status"),
		RegularizationStatus: optionalParam(query, "regularization_status"),
		SortBy:               query.Get("sort_by"),
		SortOrder:            query.Get("sort_order"),
	}
	filter.Page, filter.Limit = pagination(query)

	// Validate filter
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.attendanceService.ListDashboard(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, listMeta(results))
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.DailySummary(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetAttendance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.AdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Attendance update decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.AdminUpdateRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Record Updated Successfully", result)
}

// RejectRegularization implements AttendanceHandler.
func (h *attendanceHandlerImpl) RejectRegularization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.RejectRegularization(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Regularization Rejected", result)
}

func optionalParam(query url.Values, key string) *string {
	if value := query.Get(key); value != "" {
		return &value
	}
	return nil
}

// pagination reads page and limit; anything unparsable falls back to the filter defaults.
func pagination(query url.Values) (page, limit int) {
	page = 1
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	limit = 20
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	return page, limit
}

func listMeta(results attendance.ListAttendanceResponse) *response.Meta {
	return &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
	}
}
