package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

const streamKeepalive = 30 * time.Second

type StreamHandler interface {
	Attendance(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	events    attendance.EventStream
	keepalive time.Duration
}

func NewStreamHandler(events attendance.EventStream) StreamHandler {
	return &streamHandlerImpl{events: events, keepalive: streamKeepalive}
}

// Attendance streams attendance events as server-sent events. Admins receive
// every employee's events.
func (h *streamHandlerImpl) Attendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	role, err := middleware.RoleFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.events.Subscribe(employeeID, role == employee.RoleAdmin)
	defer cleanup()

	if err := sse.WriteEvent(w, "connected", map[string]string{"status": "connected", "employee_id": employeeID}); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		slog.Error("Attendance stream flush error", "error", err)
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent(w, event.Type, event); err != nil {
				slog.Error("Attendance stream write error", "error", err)
				return
			}
		case <-keepalive.C:
			if err := sse.WriteEvent(w, "ping", map[string]int64{"timestamp": time.Now().Unix()}); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
