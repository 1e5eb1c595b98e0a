package analyzer

import (
	"context"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/infrastructure/aigateway"
)

const DefaultSingleShotModel = "llama-3.3-70b-versatile"

// SingleShotPipeline asks one model for the whole report.
type SingleShotPipeline struct {
	gateway Completer
	model   string
}

func NewSingleShotPipeline(gateway Completer, model string) *SingleShotPipeline {
	if model == "" {
		model = DefaultSingleShotModel
	}
	return &SingleShotPipeline{gateway: gateway, model: model}
}

func (p *SingleShotPipeline) Kind() entity.PipelineKind {
	return entity.PipelineSingleShot
}

func (p *SingleShotPipeline) Analyze(ctx context.Context, target Target, progress Progress) (*Result, error) {
	progress.notify(StageAnalyzing, 1, 1)

	text, err := p.gateway.Complete(ctx, aigateway.CompletionRequest{
		Model:       p.model,
		System:      singleShotSystemPrompt,
		User:        BuildSingleShotPrompt(target.Domain, target.CompareDomain),
		Temperature: analysisTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	report, err := ParseReport(text)
	if err != nil {
		return nil, err
	}
	return &Result{Report: report}, nil
}
