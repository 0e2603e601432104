package sse

import "github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"

// AttendanceTopic carries record lifecycle events for live dashboards.
const AttendanceTopic = "attendance"

type attendanceFeed struct {
	hub *Hub
}

// NewAttendanceFeed adapts the hub to attendance.EventPublisher.
func NewAttendanceFeed(hub *Hub) attendance.EventPublisher {
	return &attendanceFeed{hub: hub}
}

func (f *attendanceFeed) PublishRecordEvent(eventType string, record attendance.RecordResponse) {
	f.hub.Publish(Event{
		Topic: AttendanceTopic,
		Event: eventType,
		Data:  record,
	})
}
