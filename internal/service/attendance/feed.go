package attendance

import (
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

const adminTopic = "admins"

func employeeTopic(employeeID string) string {
	return "employee:" + employeeID
}

// Feed is the in-process attendance.EventStream backed by an sse.Hub.
type Feed struct {
	hub *sse.Hub[attendance.Event]
}

func NewFeed(hub *sse.Hub[attendance.Event]) *Feed {
	return &Feed{hub: hub}
}

// Publish implements attendance.EventStream.
func (f *Feed) Publish(event attendance.Event) {
	dropped := f.hub.PublishToMany([]string{adminTopic, employeeTopic(event.EmployeeID)}, event)
	if dropped > 0 {
		metrics.StreamDroppedTotal.Add(float64(dropped))
	}
}

// Subscribe implements attendance.EventStream.
func (f *Feed) Subscribe(employeeID string, all bool) (<-chan attendance.Event, func()) {
	topic := employeeTopic(employeeID)
	if all {
		topic = adminTopic
	}

	events, cleanup := f.hub.Subscribe(topic)
	metrics.StreamSubscribers.Inc()

	var once sync.Once
	return events, func() {
		once.Do(func() {
			cleanup()
			metrics.StreamSubscribers.Dec()
		})
	}
}
