package analyzer

import (
	"context"
	"errors"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/infrastructure/aigateway"
	"echodft/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

const (
	DefaultResearchModel = "google/gemini-2.5-flash"
	DefaultAnalysisModel = "google/gemini-2.5-pro"

	researchTemperature = 0.3
	analysisTemperature = 0.4
)

// ResearchPipeline first asks a fast model a handful of research questions,
// then hands the answers to a stronger model that writes the report.
type ResearchPipeline struct {
	gateway       Completer
	researchModel string
	analysisModel string
}

func NewResearchPipeline(gateway Completer, researchModel, analysisModel string) *ResearchPipeline {
	if researchModel == "" {
		researchModel = DefaultResearchModel
	}
	if analysisModel == "" {
		analysisModel = DefaultAnalysisModel
	}

	return &ResearchPipeline{
		gateway:       gateway,
		researchModel: researchModel,
		analysisModel: analysisModel,
	}
}

func (p *ResearchPipeline) Kind() entity.PipelineKind {
	return entity.PipelineResearch
}

func (p *ResearchPipeline) Analyze(ctx context.Context, target Target, progress Progress) (*Result, error) {
	queries := ResearchQueries(target.Domain, utils.CompanyNameHint(target.Domain))

	answers, err := p.research(ctx, queries, progress)
	if err != nil {
		return nil, err
	}

	research := BuildResearchBlob(queries, answers)
	log.Infof("research for %s gathered, %d chars", target.Domain, len(research))

	progress.notify(StageAnalyzing, 1, 1)
	text, err := p.gateway.Complete(ctx, aigateway.CompletionRequest{
		Model:       p.analysisModel,
		System:      analysisSystemPrompt,
		User:        BuildAnalysisPrompt(target.Domain, research, target.CompareDomain),
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
	return &Result{Report: report, ResearchUsed: research != ""}, nil
}

// research asks every query in order. A failed query leaves an empty answer
// behind and the rest carry on; only a missing key or a cancelled request
// stop the loop, since no later query could succeed either.
func (p *ResearchPipeline) research(ctx context.Context, queries []string, progress Progress) ([]string, error) {
	answers := make([]string, len(queries))
	for i, query := range queries {
		progress.notify(StageResearch, i+1, len(queries))

		answer, err := p.gateway.Complete(ctx, aigateway.CompletionRequest{
			Model:       p.researchModel,
			System:      researchSystemPrompt,
			User:        researchUserPrompt(query),
			Temperature: researchTemperature,
		})
		if err != nil {
			if errors.Is(err, aigateway.ErrMissingCredential) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warnf("research query %q failed: %v", query, err)
			continue
		}
		answers[i] = answer
	}
	return answers, nil
}
