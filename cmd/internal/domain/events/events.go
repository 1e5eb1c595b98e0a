package events

import "echodft/cmd/internal/contract"

type SocketEvent interface {
	GetType() contract.EventType
}

type Ack struct{}

func (*Ack) GetType() contract.EventType {
	return contract.EventAck
}

type SessionExpired struct{}

func (*SessionExpired) GetType() contract.EventType {
	return contract.EventSessionExpired
}

type AnalysisStarted struct {
	Domain        string `json:"domain"`
	CompareDomain string `json:"compareDomain,omitempty"`
	Pipeline      string `json:"pipeline"`
}

func (e *AnalysisStarted) GetType() contract.EventType {
	return contract.EventAnalysisStarted
}

// AnalysisProgress is sent for every research query and once more when the
// final analysis request goes out.
type AnalysisProgress struct {
	Domain string `json:"domain"`
	Stage  string `json:"stage"`
	Step   int    `json:"step"`
	Total  int    `json:"total"`
}

func (e *AnalysisProgress) GetType() contract.EventType {
	return contract.EventAnalysisProgress
}

type AnalysisCompleted struct {
	*contract.CompanySummary
	Cached bool `json:"cached"`
}

func (e *AnalysisCompleted) GetType() contract.EventType {
	return contract.EventAnalysisCompleted
}

type AnalysisFailed struct {
	Domain string `json:"domain"`
	Error  string `json:"error"`
}

func (e *AnalysisFailed) GetType() contract.EventType {
	return contract.EventAnalysisFailed
}
