package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employeeID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	adminID    = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5c"
	recordID   = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5d"
)

type fakeAuthService struct {
	jwtService jwt.Service
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, auth.ErrInvalidCredentials
}

func (f *fakeAuthService) Logout(ctx context.Context, token string) error {
	if err := f.jwtService.RevokeToken(token); err != nil {
		return auth.ErrInvalidToken
	}
	return nil
}

type fakeEmployeeService struct {
	employee.EmployeeService
	registered []employee.RegisterRequest
}

func (f *fakeEmployeeService) Register(ctx context.Context, req employee.RegisterRequest) (employee.EmployeeResponse, error) {
	f.registered = append(f.registered, req)
	return employee.EmployeeResponse{ID: employeeID, Email: req.Email, Role: string(req.Role)}, nil
}

func (f *fakeEmployeeService) GetProfile(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: id}, nil
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	punches []attendance.PunchRequest
	err     error
}

func (f *fakeAttendanceService) MarkPunch(ctx context.Context, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	if f.err != nil {
		return attendance.PunchResponse{}, f.err
	}
	f.punches = append(f.punches, req)
	return attendance.PunchResponse{
		Message:    "Clocked In as Present. Mode: Office",
		Attendance: attendance.AttendanceResponse{ID: recordID, EmployeeID: req.EmployeeID, Status: "Present"},
	}, nil
}

func (f *fakeAttendanceService) ListDashboard(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{
		TotalCount:  1,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  1,
		Showing:     "1-1 of 1",
		Attendances: []attendance.AttendanceResponse{{ID: recordID}},
	}, nil
}

func (f *fakeAttendanceService) AdminUpdateRecord(ctx context.Context, req attendance.AdminUpdateRequest) (attendance.AttendanceResponse, error) {
	if f.err != nil {
		return attendance.AttendanceResponse{}, f.err
	}
	return attendance.AttendanceResponse{ID: req.ID, Status: *req.Status}, nil
}

type fakeFaceService struct {
	match face.MatchResponse
}

func (f *fakeFaceService) Verify(ctx context.Context, req face.VerifyRequest) (face.MatchResponse, error) {
	if err := req.Validate(); err != nil {
		return face.MatchResponse{}, err
	}
	return f.match, nil
}

func (f *fakeFaceService) Invalidate() {}

// fakeEventStream replays queued events and then closes the subscription.
type fakeEventStream struct {
	queued     []attendance.Event
	subscriber string
	all        bool
}

func (f *fakeEventStream) Publish(event attendance.Event) {
	f.queued = append(f.queued, event)
}

func (f *fakeEventStream) Subscribe(employeeID string, all bool) (<-chan attendance.Event, func()) {
	f.subscriber, f.all = employeeID, all
	ch := make(chan attendance.Event, len(f.queued))
	for _, event := range f.queued {
		ch <- event
	}
	close(ch)
	return ch, func() {}
}

type testServer struct {
	handler    http.Handler
	jwtService *jwt.JWTService
	employees  *fakeEmployeeService
	attendance *fakeAttendanceService
	faces      *fakeFaceService
	events     *fakeEventStream
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		jwtService: jwt.NewJWTService("handler-test-secret", time.Hour),
		employees:  &fakeEmployeeService{},
		attendance: &fakeAttendanceService{},
		faces:      &fakeFaceService{},
		events:     &fakeEventStream{},
	}
	authService := &fakeAuthService{jwtService: s.jwtService}

	s.handler = NewRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   1 << 20,
	}, s.jwtService, Handlers{
		Auth:       NewAuthHandler(authService, s.employees),
		Employee:   NewEmployeeHandler(s.employees),
		Attendance: NewAttendanceHandler(s.attendance, s.faces),
		Face:       NewFaceHandler(s.faces),
		Stream:     NewStreamHandler(s.events),
	})
	return s
}

func (s *testServer) token(t *testing.T, id string, role employee.Role) string {
	t.Helper()
	token, _, err := s.jwtService.GenerateAccessToken(id, "someone@example.com", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp response.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)
	punch := map[string]any{"type": "clock-in"}

	t.Run("missing token", func(t *testing.T) {
		rec, resp := s.do(t, http.MethodPost, "/api/v1/attendance/punch", "", punch)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, resp.Success)
	})

	t.Run("employee punches as themselves", func(t *testing.T) {
		rec, resp := s.do(t, http.MethodPost, "/api/v1/attendance/punch", s.token(t, employeeID, employee.RoleEmployee), map[string]any{
			"type":        "clock-in",
			"employee_id": adminID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Clocked In as Present. Mode: Office", resp.Message)

		last := s.attendance.punches[len(s.attendance.punches)-1]
		assert.Equal(t, employeeID, last.EmployeeID)
	})

	t.Run("revoked token", func(t *testing.T) {
		token := s.token(t, employeeID, employee.RoleEmployee)
		rec, _ := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = s.do(t, http.MethodPost, "/api/v1/attendance/punch", token, punch)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin routes", func(t *testing.T) {
		rec, resp := s.do(t, http.MethodGet, "/api/v1/attendance?page=2&limit=5", s.token(t, employeeID, employee.RoleEmployee), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)

		rec, resp = s.do(t, http.MethodGet, "/api/v1/attendance?page=2&limit=5", s.token(t, adminID, employee.RoleAdmin), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 5, resp.Meta.Limit)
		assert.EqualValues(t, 1, resp.Meta.TotalItems)
	})
}

func TestRegisterCannotGrantAdmin(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":          "Mallory",
		"email":         "mallory@example.com",
		"employee_code": "EMP-666",
		"password":      "password123",
		"role":          "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Registration Successful", resp.Message)
	require.Len(t, s.employees.registered, 1)
	assert.Equal(t, employee.RoleEmployee, s.employees.registered[0].Role)
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestFacePunch(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"descriptor": []float64{0.1, 0.2}, "type": "clock-in"}

	t.Run("unknown face", func(t *testing.T) {
		s.faces.match = face.MatchResponse{Match: false}
		rec, _ := s.do(t, http.MethodPost, "/api/v1/attendance/face-punch", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, s.attendance.punches)
	})

	t.Run("matched face punches for that employee", func(t *testing.T) {
		s.faces.match = face.MatchResponse{Match: true, EmployeeID: employeeID, Distance: 0.2}
		rec, _ := s.do(t, http.MethodPost, "/api/v1/attendance/face-punch", "", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, s.attendance.punches, 1)
		assert.Equal(t, employeeID, s.attendance.punches[0].EmployeeID)
	})

	t.Run("verify returns match flag", func(t *testing.T) {
		s.faces.match = face.MatchResponse{Match: false}
		rec, resp := s.do(t, http.MethodPost, "/api/v1/face/verify", "", map[string]any{"descriptor": []float64{0.1}})
		require.Equal(t, http.StatusOK, rec.Code)
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, data["match"])
	})

	t.Run("missing descriptor", func(t *testing.T) {
		rec, resp := s.do(t, http.MethodPost, "/api/v1/face/verify", "", map[string]any{})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Contains(t, resp.Error.Details, "descriptor")
	})
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, employeeID, employee.RoleEmployee)

	cases := []struct {
		err    error
		status int
	}{
		{attendance.ErrDuplicateClockIn, http.StatusConflict},
		{attendance.ErrAlreadyClockedOut, http.StatusConflict},
		{attendance.ErrConcurrentUpdate, http.StatusConflict},
		{attendance.ErrNoPriorClockIn, http.StatusBadRequest},
		{attendance.ErrWeekendRejected, http.StatusBadRequest},
		{attendance.ErrRecordNotFound, http.StatusNotFound},
		{fmt.Errorf("create attendance: %w: %w", attendance.ErrStorage, fmt.Errorf("connection reset")), http.StatusInternalServerError},
		{validator.ValidationErrors{{Field: "type", Message: "type is required"}}, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			s.attendance.err = tc.err
			rec, resp := s.do(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]any{"type": "clock-in"})
			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestAdminUpdate(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, adminID, employee.RoleAdmin)

	rec, resp := s.do(t, http.MethodPut, "/api/v1/attendance/"+recordID, admin, map[string]any{"status": "Present"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Record Updated Successfully", resp.Message)

	s.attendance.err = attendance.ErrRegularizationNotPending
	rec, _ = s.do(t, http.MethodPut, "/api/v1/attendance/"+recordID, admin, map[string]any{"status": "Present"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransportGuards(t *testing.T) {
	s := newTestServer(t)

	t.Run("json only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("email=a"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "attendance_http_requests_total")
	})
}

func TestAttendanceStream(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		s := newTestServer(t)
		rec, _ := s.do(t, http.MethodGet, "/api/v1/attendance/stream", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("employee receives own events", func(t *testing.T) {
		s := newTestServer(t)
		s.events.Publish(attendance.Event{
			Type:       attendance.EventClockIn,
			EmployeeID: employeeID,
			Attendance: attendance.AttendanceResponse{ID: recordID, EmployeeID: employeeID},
		})

		rec, _ := s.do(t, http.MethodGet, "/api/v1/attendance/stream", s.token(t, employeeID, employee.RoleEmployee), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.Equal(t, employeeID, s.events.subscriber)
		assert.False(t, s.events.all)

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "event: connected\n"))
		assert.Contains(t, body, "event: attendance.clock_in\n")
		assert.Contains(t, body, recordID)
	})

	t.Run("admin subscribes to everyone", func(t *testing.T) {
		s := newTestServer(t)
		rec, _ := s.do(t, http.MethodGet, "/api/v1/attendance/stream", s.token(t, adminID, employee.RoleAdmin), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, s.events.all)
	})
}
