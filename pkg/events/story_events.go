package events

const (
	IdeasRequested = "IDEAS_REQUESTED"
	IdeasGenerated = "IDEAS_GENERATED"
	IdeasFailed    = "IDEAS_FAILED"
	PlanRequested  = "PLAN_REQUESTED"
	PlanGenerated  = "PLAN_GENERATED"
	PlanFailed     = "PLAN_FAILED"
	SessionEnded   = "SESSION_ENDED"
)

// Every story event carries the session it belongs to under this key.
const SessionIDKey = "session_id"

// SessionID extracts the owning session from a story event payload.
func SessionID(e Event) string {
	id, _ := e.Payload()[SessionIDKey].(string)
	return id
}
