package deploy

// EventKind labels a tracker transition.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventAccepted  EventKind = "accepted"
	EventProgress  EventKind = "progress"
	EventFailed    EventKind = "failed"
	EventCompleted EventKind = "completed"
	EventCancelled EventKind = "cancelled"
)

// Event is emitted to an EventSink on every tracker transition.
type Event struct {
	Attempt       uint64    `json:"attempt"`
	Kind          EventKind `json:"kind"`
	Subdomain     string    `json:"subdomain"`
	Progress      float64   `json:"progress"`
	TimeRemaining int       `json:"timeRemaining"`
	Error         string    `json:"error,omitempty"`
	Result        *Result   `json:"result,omitempty"`
}

// EventSink receives tracker events. Record is called outside the tracker
// lock and must not call back into the tracker synchronously. Start and
// CloseDialog record on the caller's goroutine, often under the caller's
// own lock, so Record must not block.
type EventSink interface {
	Record(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Record(e Event) { f(e) }
