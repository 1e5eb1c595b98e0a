package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/infrastructure/aigateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{"company": {"name": "Example"}, "traffic": {"monthlyVisitors": 5000}}`

// fakeGateway answers research prompts from a queue and the JSON request
// with analysis.
type fakeGateway struct {
	research    []func() (string, error)
	analysis    string
	analysisErr error

	requests []aigateway.CompletionRequest
}

func (f *fakeGateway) Complete(_ context.Context, req aigateway.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if req.JSON {
		return f.analysis, f.analysisErr
	}

	next := f.research[0]
	f.research = f.research[1:]
	return next()
}

func answer(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func failure(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func TestResearchPipeline_OneQueryFails(t *testing.T) {
	gw := &fakeGateway{
		research: []func() (string, error){
			answer("90M visits"),
			failure(errors.New("boom")),
			answer("$1B ARR"),
			answer("8000 employees"),
			answer("DA 92"),
		},
		analysis: "```json\n" + analysisJSON + "\n```",
	}

	var stages []string
	progress := func(stage Stage, step, total int) {
		stages = append(stages, fmt.Sprintf("%s:%d/%d", stage, step, total))
	}

	res, err := NewResearchPipeline(gw, "", "").Analyze(context.Background(), Target{Domain: "example.com"}, progress)
	require.NoError(t, err)

	assert.True(t, res.ResearchUsed)
	assert.Equal(t, "Example", res.Report.Object(entity.KeyCompany).String("name"))

	require.Len(t, gw.requests, 6)
	for _, req := range gw.requests[:5] {
		assert.Equal(t, DefaultResearchModel, req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 0.0001)
		assert.False(t, req.JSON)
	}

	final := gw.requests[5]
	assert.Equal(t, DefaultAnalysisModel, final.Model)
	assert.InDelta(t, 0.4, final.Temperature, 0.0001)
	assert.True(t, final.JSON)
	assert.NotEmpty(t, final.User)
	assert.Contains(t, final.User, "90M visits")
	assert.Contains(t, final.User, "DA 92")
	assert.NotContains(t, final.User, "tech stack built with technologies")

	assert.Equal(t, []string{
		"RESEARCH:1/5", "RESEARCH:2/5", "RESEARCH:3/5", "RESEARCH:4/5", "RESEARCH:5/5", "ANALYZING:1/1",
	}, stages)
}

func TestResearchPipeline_AllQueriesFail(t *testing.T) {
	fail := failure(&aigateway.UpstreamError{Status: http.StatusInternalServerError})
	gw := &fakeGateway{
		research: []func() (string, error){fail, fail, fail, fail, fail},
		analysis: analysisJSON,
	}

	res, err := NewResearchPipeline(gw, "", "").Analyze(context.Background(), Target{Domain: "example.com"}, nil)
	require.NoError(t, err)

	assert.False(t, res.ResearchUsed)
	assert.Contains(t, gw.requests[5].User, "No research data could be gathered")
}

func TestResearchPipeline_MissingCredentialStopsEarly(t *testing.T) {
	gw := &fakeGateway{
		research: []func() (string, error){failure(&aigateway.MissingCredentialError{Env: "LOVABLE_API_KEY"})},
	}

	_, err := NewResearchPipeline(gw, "", "").Analyze(context.Background(), Target{Domain: "example.com"}, nil)

	assert.ErrorIs(t, err, aigateway.ErrMissingCredential)
	assert.Len(t, gw.requests, 1)
}

func TestResearchPipeline_AnalysisErrors(t *testing.T) {
	five := func() []func() (string, error) {
		return []func() (string, error){answer("a"), answer("b"), answer("c"), answer("d"), answer("e")}
	}

	t.Run("rate limit", func(t *testing.T) {
		gw := &fakeGateway{research: five(), analysisErr: aigateway.ErrRateLimited}
		_, err := NewResearchPipeline(gw, "", "").Analyze(context.Background(), Target{Domain: "x.com"}, nil)
		assert.ErrorIs(t, err, aigateway.ErrRateLimited)
	})

	t.Run("unparseable", func(t *testing.T) {
		gw := &fakeGateway{research: five(), analysis: "Sorry, I can't help with that."}
		res, err := NewResearchPipeline(gw, "", "").Analyze(context.Background(), Target{Domain: "x.com"}, nil)
		assert.ErrorIs(t, err, ErrParseFailed)
		assert.Nil(t, res)
	})
}

func TestSingleShotPipeline(t *testing.T) {
	gw := &fakeGateway{analysis: analysisJSON}

	res, err := NewSingleShotPipeline(gw, "").Analyze(context.Background(), Target{Domain: "example.com", CompareDomain: "other.com"}, nil)
	require.NoError(t, err)

	require.Len(t, gw.requests, 1)
	assert.Equal(t, DefaultSingleShotModel, gw.requests[0].Model)
	assert.Contains(t, gw.requests[0].User, "Also analyze other.com")
	assert.False(t, res.ResearchUsed)
	assert.Equal(t, entity.PipelineSingleShot, NewSingleShotPipeline(gw, "").Kind())
}

// The research pipeline against a real HTTP gateway: one research query is
// rejected upstream and the analysis still goes through.
func TestResearchPipeline_OverHTTP(t *testing.T) {
	var mu sync.Mutex
	researchCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		content := "research answer"
		if body.Model == DefaultResearchModel {
			mu.Lock()
			researchCalls++
			n := researchCalls
			mu.Unlock()

			if n == 3 {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"message":"upstream"}}`))
				return
			}
		} else {
			assert.Equal(t, 4, strings.Count(body.Messages[1].Content, "research answer"))
			content = "```json\n" + analysisJSON + "\n```"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	defer srv.Close()

	cfg := Config{Pipeline: PipelineNameResearch, LovableAPIKey: "k", LovableGatewayURL: srv.URL}
	pipeline, err := NewPipeline(cfg)
	require.NoError(t, err)

	res, err := pipeline.Analyze(context.Background(), Target{Domain: "example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, researchCalls)
	assert.Equal(t, "Example", res.Report.Object(entity.KeyCompany).String("name"))
}

func TestNewPipeline(t *testing.T) {
	p, err := NewPipeline(Config{Pipeline: PipelineNameSingle})
	require.NoError(t, err)
	assert.Equal(t, entity.PipelineSingleShot, p.Kind())

	p, err = NewPipeline(Config{})
	require.NoError(t, err)
	assert.Equal(t, entity.PipelineResearch, p.Kind())

	_, err = NewPipeline(Config{Pipeline: "magic"})
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ANALYSIS_PIPELINE", "Single")
	t.Setenv("GROQ_API_KEY", "gsk")
	t.Setenv("GROQ_MODEL", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, PipelineNameSingle, cfg.Pipeline)
	assert.Equal(t, "gsk", cfg.GroqAPIKey)
	assert.Equal(t, DefaultSingleShotModel, cfg.GroqModel)
	assert.Equal(t, defaultGroqBaseURL, cfg.GroqBaseURL)
}
