package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	fileService file.FileService
	policy      attendance.Policy
	office      *geo.Evaluator
	events      attendance.EventStream
	logger      *slog.Logger
	now         func() time.Time
}

// passThrough are the errors returned to callers unchanged; anything else from
// the repository is reported as a storage failure.
var passThrough = []error{
	attendance.ErrDuplicateClockIn,
	attendance.ErrNoPriorClockIn,
	attendance.ErrAlreadyClockedOut,
	attendance.ErrRegularizationNotPending,
	attendance.ErrInvalidRegularization,
	attendance.ErrRecordNotFound,
	attendance.ErrConcurrentUpdate,
	employee.ErrEmployeeNotFound,
}

func (a *AttendanceServiceImpl) storageError(op string, err error) error {
	for _, known := range passThrough {
		if errors.Is(err, known) {
			return err
		}
	}
	a.logger.Error("attendance storage failure", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%s: %w: %w", op, attendance.ErrStorage, err)
}

// MarkPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkPunch(ctx context.Context, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchResponse{}, err
	}

	nowUTC := a.now().UTC()
	if a.policy.IsWeekend(nowUTC) {
		metrics.PunchesTotal.WithLabelValues(string(req.Type), metrics.ResultRejected).Inc()
		return attendance.PunchResponse{}, attendance.ErrWeekendRejected
	}

	var (
		resp attendance.PunchResponse
		err  error
	)
	switch req.Type {
	case attendance.PunchClockIn:
		resp, err = a.clockIn(ctx, req, nowUTC)
	default:
		resp, err = a.clockOut(ctx, req, nowUTC)
	}

	switch {
	case err == nil:
		metrics.PunchesTotal.WithLabelValues(string(req.Type), metrics.ResultOK).Inc()
	case errors.Is(err, attendance.ErrStorage):
		metrics.PunchesTotal.WithLabelValues(string(req.Type), metrics.ResultError).Inc()
	default:
		metrics.PunchesTotal.WithLabelValues(string(req.Type), metrics.ResultRejected).Inc()
	}
	return resp, err
}

func (a *AttendanceServiceImpl) clockIn(ctx context.Context, req attendance.PunchRequest, nowUTC time.Time) (attendance.PunchResponse, error) {
	date := a.policy.LocalDate(nowUTC)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.PunchResponse{}, a.storageError("get attendance", err)
	}
	if existing != nil {
		return attendance.PunchResponse{}, attendance.ErrDuplicateClockIn
	}

	status, lateMinutes := attendance.Classify(nowUTC, a.policy.ShiftStartOn(nowUTC))
	workMode := attendance.WorkModeFor(a.office.OnSite(req.Latitude, req.Longitude))

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	proofURL, err := a.uploadProof(ctx, req, date)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		ID:              id.String(),
		EmployeeID:      req.EmployeeID,
		Date:            date,
		ClockInTime:     &nowUTC,
		ClockInProofURL: proofURL,
		Status:          status,
		WorkMode:        workMode,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		LateMinutes:     lateMinutes,
		Regularization:  attendance.Regularization{Status: attendance.RegularizationNone},
	})
	if err != nil {
		a.discardProof(ctx, proofURL)
		return attendance.PunchResponse{}, a.storageError("create attendance", err)
	}

	resp := a.mapAttendanceToResponse(ctx, created)
	a.publish(attendance.EventClockIn, resp)
	return attendance.PunchResponse{
		Message:    fmt.Sprintf("Clocked In as %s. Mode: %s", status, workMode),
		Attendance: resp,
	}, nil
}

func (a *AttendanceServiceImpl) clockOut(ctx context.Context, req attendance.PunchRequest, nowUTC time.Time) (attendance.PunchResponse, error) {
	date := a.policy.LocalDate(nowUTC)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.PunchResponse{}, a.storageError("get attendance", err)
	}
	if existing == nil || existing.ClockInTime == nil {
		return attendance.PunchResponse{}, attendance.ErrNoPriorClockIn
	}
	if existing.ClockOutTime != nil {
		return attendance.PunchResponse{}, attendance.ErrAlreadyClockedOut
	}

	proofURL, err := a.uploadProof(ctx, req, date)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	updated, err := a.AttendanceRepository.Modify(ctx, existing.ID, func(att *attendance.Attendance) error {
		return att.ClockOut(nowUTC, proofURL)
	})
	if err != nil {
		a.discardProof(ctx, proofURL)
		return attendance.PunchResponse{}, a.storageError("clock out", err)
	}

	resp := a.mapAttendanceToResponse(ctx, updated)
	a.publish(attendance.EventClockOut, resp)
	return attendance.PunchResponse{
		Message:    "Clocked Out Successfully",
		Attendance: resp,
	}, nil
}

func (a *AttendanceServiceImpl) uploadProof(ctx context.Context, req attendance.PunchRequest, date string) (*string, error) {
	if req.Image == nil || *req.Image == "" {
		return nil, nil
	}
	key, err := a.fileService.UploadAttendanceProof(ctx, req.EmployeeID, date, string(req.Type), *req.Image)
	if err != nil {
		return nil, a.storageError("upload proof", err)
	}
	return &key, nil
}

func (a *AttendanceServiceImpl) publish(eventType string, resp attendance.AttendanceResponse) {
	if a.events == nil {
		return
	}
	a.events.Publish(attendance.Event{
		Type:       eventType,
		EmployeeID: resp.EmployeeID,
		Attendance: resp,
	})
}

// discardProof removes a proof whose record write failed.
func (a *AttendanceServiceImpl) discardProof(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := a.fileService.DeleteFile(ctx, *key); err != nil {
		a.logger.Warn("failed to remove orphaned proof", slog.String("key", *key), slog.Any("error", err))
	}
}

// RequestRegularization implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RequestRegularization(ctx context.Context, req attendance.RegularizationRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	newIn, newOut := req.ProposedTimes()
	if err := a.checkProposedDay(req.Date, newIn, newOut); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	att, err := a.AttendanceRepository.UpsertRegularization(ctx, req.EmployeeID, req.Date,
		attendance.NewPendingRegularization(req.Reason, newIn, newOut))
	if err != nil {
		return attendance.AttendanceResponse{}, a.storageError("request regularization", err)
	}

	metrics.RegularizationsTotal.WithLabelValues("requested").Inc()
	resp := a.mapAttendanceToResponse(ctx, att)
	a.publish(attendance.EventRegularizationRequested, resp)
	return resp, nil
}

// checkProposedDay requires proposed times to fall on the regularized date in the policy location.
func (a *AttendanceServiceImpl) checkProposedDay(date string, newIn, newOut *time.Time) error {
	var errs validator.ValidationErrors
	if newIn != nil && a.policy.LocalDate(*newIn) != date {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in_time",
			Message: "clock_in_time must fall on " + date,
		})
	}
	if newOut != nil && a.policy.LocalDate(*newOut) != date {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_out_time",
			Message: "clock_out_time must fall on " + date,
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AdminUpdateRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AdminUpdateRecord(ctx context.Context, req attendance.AdminUpdateRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
	}

	var status *attendance.Status
	if req.Status != nil {
		s := attendance.Status(*req.Status)
		status = &s
	}
	var workMode *attendance.WorkMode
	if req.WorkMode != nil {
		m := attendance.WorkMode(*req.WorkMode)
		workMode = &m
	}

	approved := false
	att, err := a.AttendanceRepository.Modify(ctx, req.ID, func(att *attendance.Attendance) error {
		approved = att.Regularization.Status == attendance.RegularizationPending
		return att.ApplyAdminUpdate(status, workMode)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, a.storageError("admin update", err)
	}

	if approved {
		metrics.RegularizationsTotal.WithLabelValues("approved").Inc()
	}
	resp := a.mapAttendanceToResponse(ctx, att)
	a.publish(attendance.EventRecordUpdated, resp)
	return resp, nil
}

// RejectRegularization implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectRegularization(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
	}

	att, err := a.AttendanceRepository.Modify(ctx, id, func(att *attendance.Attendance) error {
		return att.RejectRegularization()
	})
	if err != nil {
		return attendance.AttendanceResponse{}, a.storageError("reject regularization", err)
	}

	metrics.RegularizationsTotal.WithLabelValues("rejected").Inc()
	resp := a.mapAttendanceToResponse(ctx, att)
	a.publish(attendance.EventRegularizationRejected, resp)
	return resp, nil
}

// ListDashboard implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListDashboard(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, a.storageError("list attendances", err)
	}

	return a.buildListResponse(ctx, attendances, total, filter), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	scoped := filter.ForEmployee(employeeID)
	if err := scoped.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, scoped)
	if err != nil {
		return attendance.ListAttendanceResponse{}, a.storageError("list my attendances", err)
	}

	return a.buildListResponse(ctx, attendances, total, scoped), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
	}

	att, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, a.storageError("get attendance", err)
	}
	return a.mapAttendanceToResponse(ctx, att), nil
}

// DailySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DailySummary(ctx context.Context, date string) (attendance.DailySummaryResponse, error) {
	if date == "" {
		date = a.policy.LocalDate(a.now())
	}
	if _, valid := validator.IsValidDate(date); !valid {
		return attendance.DailySummaryResponse{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	counts, err := a.AttendanceRepository.CountByStatus(ctx, date)
	if err != nil {
		return attendance.DailySummaryResponse{}, a.storageError("count attendances", err)
	}

	resp := attendance.DailySummaryResponse{
		Date:   date,
		Counts: make(map[string]int64, len(attendance.Statuses)),
	}
	for _, status := range attendance.Statuses {
		resp.Counts[string(status)] = counts[status]
		resp.Total += counts[status]
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) buildListResponse(ctx context.Context, attendances []attendance.Attendance, total int64, filter attendance.AttendanceFilter) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, a.mapAttendanceToResponse(ctx, att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	offset := (filter.Page - 1) * filter.Limit
	showing := fmt.Sprintf("0 of %d", total)
	if int64(offset) < total {
		showing = fmt.Sprintf("%d-%d of %d", offset+1, min(offset+filter.Limit, int(total)), total)
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// timePtrToString formats an optional instant as RFC3339 in UTC.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

// proofURL resolves a stored proof key; the key itself is returned if it cannot be resolved.
func (a *AttendanceServiceImpl) proofURL(ctx context.Context, key *string) *string {
	if key == nil || *key == "" {
		return key
	}
	url, err := a.fileService.GetFileURL(ctx, *key)
	if err != nil {
		a.logger.Warn("failed to resolve proof url", slog.String("key", *key), slog.Any("error", err))
		return key
	}
	return &url
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func (a *AttendanceServiceImpl) mapAttendanceToResponse(ctx context.Context, att attendance.Attendance) attendance.AttendanceResponse {
	var summary *attendance.EmployeeSummary
	if att.EmployeeName != nil {
		summary = &attendance.EmployeeSummary{
			ID:   att.EmployeeID,
			Name: *att.EmployeeName,
		}
		if att.EmployeeCode != nil {
			summary.EmployeeCode = *att.EmployeeCode
		}
		if att.EmployeeEmail != nil {
			summary.Email = *att.EmployeeEmail
		}
	}

	return attendance.AttendanceResponse{
		ID:               att.ID,
		EmployeeID:       att.EmployeeID,
		Employee:         summary,
		Date:             att.Date,
		ClockInTime:      timePtrToString(att.ClockInTime),
		ClockOutTime:     timePtrToString(att.ClockOutTime),
		ClockInProofURL:  a.proofURL(ctx, att.ClockInProofURL),
		ClockOutProofURL: a.proofURL(ctx, att.ClockOutProofURL),
		Status:           string(att.Status),
		WorkMode:         string(att.WorkMode),
		Latitude:         att.Latitude,
		Longitude:        att.Longitude,
		IsLate:           att.Status == attendance.StatusLate,
		LateMinutes:      att.LateMinutes,
		TotalWorkHours:   att.TotalWorkHours,
		Regularization: attendance.RegularizationResponse{
			Status:      string(att.Regularization.Status),
			Reason:      att.Regularization.Reason,
			NewClockIn:  timePtrToString(att.Regularization.NewClockIn),
			NewClockOut: timePtrToString(att.Regularization.NewClockOut),
		},
		CreatedAt: att.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: att.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	fileService file.FileService,
	policy attendance.Policy,
	office *geo.Evaluator,
	events attendance.EventStream,
	logger *slog.Logger,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		fileService:          fileService,
		policy:               policy,
		office:               office,
		events:               events,
		logger:               logger,
		now:                  time.Now,
	}
}
