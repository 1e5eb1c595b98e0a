package contract

type EventType string

const (
	EventPing EventType = "ping"

	EventConnectionKill EventType = "CONNECTION_KILL"
	EventSessionExpired EventType = "SESSION_EXPIRED"
	EventAck            EventType = "ACK"

	EventAnalysisStarted   EventType = "ANALYSIS_STARTED"
	EventAnalysisProgress  EventType = "ANALYSIS_PROGRESS"
	EventAnalysisCompleted EventType = "ANALYSIS_COMPLETED"
	EventAnalysisFailed    EventType = "ANALYSIS_FAILED"
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type EventType `json:"type"`
}

// OutgoingSocketMessage is what we send to the Client
type OutgoingSocketMessage struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}
