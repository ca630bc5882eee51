package domain

// Usage event types recorded around the generation flow.
const (
	UsageEventSubmit    = "video_submit"
	UsageEventCompleted = "video_completed"
	UsageEventFailed    = "video_failed"
)

// UsageEvent is one append-only analytics row.
type UsageEvent struct {
	AccountID  string
	JobID      string
	EventType  string
	Success    bool
	LatencyMS  int
	Country    string
	Properties map[string]any
}
