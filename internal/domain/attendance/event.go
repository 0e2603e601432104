package attendance

// Record lifecycle events published to live subscribers.
const (
	EventCheckedIn     = "attendance.checked_in"
	EventCheckedOut    = "attendance.checked_out"
	EventAutoCompleted = "attendance.auto_completed"
	EventDeleted       = "attendance.deleted"
)

// EventPublisher receives record lifecycle events. Implementations must not block.
type EventPublisher interface {
	PublishRecordEvent(eventType string, record RecordResponse)
}

type noopPublisher struct{}

func (noopPublisher) PublishRecordEvent(string, RecordResponse) {}

// NoopPublisher discards every event.
var NoopPublisher EventPublisher = noopPublisher{}
