package analyzer

import (
	"context"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/infrastructure/aigateway"
)

// Completer is the part of the gateway client a pipeline needs.
type Completer interface {
	Complete(ctx context.Context, req aigateway.CompletionRequest) (string, error)
}

// Target is one company to analyze, optionally against a second one.
type Target struct {
	URL           string
	Domain        string
	CompareDomain string
}

type Stage string

const (
	StageResearch  Stage = "RESEARCH"
	StageAnalyzing Stage = "ANALYZING"
)

// Progress is told about every step a pipeline takes. It may be nil.
type Progress func(stage Stage, step, total int)

func (p Progress) notify(stage Stage, step, total int) {
	if p != nil {
		p(stage, step, total)
	}
}

type Result struct {
	Report entity.Report

	// ResearchUsed is set when at least one research answer made it into
	// the analysis prompt.
	ResearchUsed bool
}

// Pipeline turns a target into a report. Implementations never cache and
// never retry: every call reaches the gateway.
type Pipeline interface {
	Kind() entity.PipelineKind
	Analyze(ctx context.Context, target Target, progress Progress) (*Result, error)
}
