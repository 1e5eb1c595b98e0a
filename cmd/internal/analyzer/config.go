package analyzer

import (
	"fmt"
	"os"
	"strings"

	"echodft/cmd/internal/infrastructure/aigateway"
)

const (
	defaultLovableGatewayURL = "https://ai.gateway.lovable.dev/v1"
	defaultGroqBaseURL       = "https://api.groq.com/openai/v1"
)

const (
	PipelineNameResearch = "research"
	PipelineNameSingle   = "single"
)

type Config struct {
	Pipeline string

	LovableAPIKey     string
	LovableGatewayURL string
	ResearchModel     string
	AnalysisModel     string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
}

// ConfigFromEnv reads the pipeline settings. A missing API key is not an
// error here: every analysis request fails on its own until it is set.
func ConfigFromEnv() Config {
	return Config{
		Pipeline:          strings.ToLower(envOr("ANALYSIS_PIPELINE", PipelineNameResearch)),
		LovableAPIKey:     os.Getenv("LOVABLE_API_KEY"),
		LovableGatewayURL: envOr("LOVABLE_GATEWAY_URL", defaultLovableGatewayURL),
		ResearchModel:     envOr("RESEARCH_MODEL", DefaultResearchModel),
		AnalysisModel:     envOr("ANALYSIS_MODEL", DefaultAnalysisModel),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:       envOr("GROQ_BASE_URL", defaultGroqBaseURL),
		GroqModel:         envOr("GROQ_MODEL", DefaultSingleShotModel),
	}
}

// NewPipeline builds the pipeline selected by cfg.Pipeline.
func NewPipeline(cfg Config) (Pipeline, error) {
	switch cfg.Pipeline {
	case PipelineNameResearch, "":
		gateway := aigateway.NewClient(aigateway.Config{
			APIKey:  cfg.LovableAPIKey,
			BaseURL: cfg.LovableGatewayURL,
			KeyEnv:  "LOVABLE_API_KEY",
		})
		return NewResearchPipeline(gateway, cfg.ResearchModel, cfg.AnalysisModel), nil
	case PipelineNameSingle:
		gateway := aigateway.NewClient(aigateway.Config{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			KeyEnv:  "GROQ_API_KEY",
		})
		return NewSingleShotPipeline(gateway, cfg.GroqModel), nil
	default:
		return nil, fmt.Errorf("unknown analysis pipeline %q", cfg.Pipeline)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
