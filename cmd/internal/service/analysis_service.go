package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"echodft/cmd/internal/analyzer"
	"echodft/cmd/internal/contract"
	"echodft/cmd/internal/domain/dashboard"
	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/domain/events"
	"echodft/cmd/internal/domain/policy"
	"echodft/cmd/internal/infrastructure/aigateway"
	"echodft/cmd/internal/infrastructure/aws/storage"
	"echodft/cmd/internal/utils"
	"echodft/cmd/internal/utils/apierror"
	"echodft/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const DefaultRowLimit = 50

type AnalysisRepository interface {
	Save(analysis *entity.CompanyAnalysis) error
	FindByID(userID, id int64) (*entity.CompanyAnalysis, error)
	FindLatestByUserAndDomain(userID int64, domain, compareDomain string) (*entity.CompanyAnalysis, error)
	FindRecentByUser(userID int64, limit int) ([]*entity.CompanyAnalysis, error)
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, userID int64, evt events.SocketEvent)
}

type AnalysisService struct {
	AnalysisRepo AnalysisRepository
	Pipeline     analyzer.Pipeline
	Validate     *validator.Validate
	Policy       *policy.AnalysisPolicy

	// Archive and Events are optional.
	Archive storage.S3Client
	Events  EventDispatcher

	// RowLimit bounds how many saved records make up a dashboard.
	RowLimit int
}

func NewAnalysisService(
	repo AnalysisRepository,
	pipeline analyzer.Pipeline,
	validate *validator.Validate,
	archive storage.S3Client,
	dispatcher EventDispatcher,
	rowLimit int,
) *AnalysisService {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}

	return &AnalysisService{
		AnalysisRepo: repo,
		Pipeline:     pipeline,
		Validate:     validate,
		Policy:       policy.NewAnalysisPolicy(),
		Archive:      archive,
		Events:       dispatcher,
		RowLimit:     rowLimit,
	}
}

// Analyze serves a saved record when the user already has one for the same
// pair of domains, and runs the pipeline otherwise (or when forced to).
func (s *AnalysisService) Analyze(ctx context.Context, actor *entity.User, req *contract.AnalyzeCompanyRequest) (*contract.AnalyzeCompanyResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationErrorAsAnalysis(err)
	}

	if apierr := s.Policy.CanAnalyze(actor, req.CompareURL != "", req.ForceRefresh); apierr != nil {
		return nil, apierr
	}

	domain, err := utils.NormalizeDomain(req.URL)
	if err != nil {
		return nil, apierror.InvalidURLError
	}

	var compareDomain string
	if req.CompareURL != "" {
		if compareDomain, err = utils.NormalizeDomain(req.CompareURL); err != nil {
			return nil, apierror.InvalidURLError
		}
	}

	state, err := s.loadDashboard(actor)
	if err != nil {
		return nil, apierror.AnalysisFailedError
	}
	state = dashboard.Reduce(state, dashboard.AnalysisRequested{Domain: domain})

	cached, apierr := s.findCached(actor, state, domain, compareDomain, req.ForceRefresh)
	if apierr != nil {
		return nil, apierr
	}

	emit, done := s.startEmitter(actor.ID)
	defer done()

	if cached != nil {
		state = dashboard.Reduce(state, dashboard.CachedRecordServed{Record: cached})
		emit(&events.AnalysisCompleted{CompanySummary: toCompanySummary(cached), Cached: true})
		return toCachedResponse(cached, state.Source), nil
	}

	log.Infof("analyzing company %s (compare: %q, pipeline: %s)", domain, compareDomain, s.Pipeline.Kind())
	emit(&events.AnalysisStarted{Domain: domain, CompareDomain: compareDomain, Pipeline: string(s.Pipeline.Kind())})

	target := analyzer.Target{URL: req.URL, Domain: domain, CompareDomain: compareDomain}
	progress := func(stage analyzer.Stage, step, total int) {
		emit(&events.AnalysisProgress{Domain: domain, Stage: string(stage), Step: step, Total: total})
	}

	result, err := s.Pipeline.Analyze(ctx, target, progress)
	if err != nil {
		apierr := mapPipelineError(domain, err)
		state = dashboard.Reduce(state, dashboard.AnalysisFailed{Message: apierr.Message})
		emit(&events.AnalysisFailed{Domain: domain, Error: state.Error})
		return nil, apierr
	}
	log.Infof("analysis complete for %s", domain)

	now := utils.NowUTC()
	record := entity.NewCompanyAnalysis(actor.ID, req.URL, domain, compareDomain, s.Pipeline.Kind(), result.Report)
	record.ID = uid.Generate()
	record.CreatedAt = now
	record.ArchiveKey = s.archive(ctx, domain, result.Report)

	saved := true
	if err := s.AnalysisRepo.Save(record); err != nil {
		// The user still gets the analysis, only the next lookup
		// will have to pay for a new one.
		log.Errorf("failed to save analysis of %s for user %d: %v", domain, actor.ID, err)
		saved = false
	}

	state = dashboard.Reduce(state, dashboard.AnalysisSucceeded{Record: record})
	emit(&events.AnalysisCompleted{CompanySummary: toCompanySummary(record)})

	resp := &contract.AnalyzeCompanyResponse{
		Success:          true,
		Analysis:         result.Report,
		Timestamp:        utils.FormatEpoch(now),
		ResearchDataUsed: result.ResearchUsed,
		Source:           state.Source.String(),
	}
	if saved {
		resp.RecordID = strconv.FormatInt(record.ID, 10)
	}
	return resp, nil
}

func (s *AnalysisService) ListCompanies(actor *entity.User, req *contract.CompanyFilterRequest) (*contract.CompanyListResponse, apierror.ErrorResponse) {
	if apierr := s.Policy.CanViewSaved(actor); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	state, err := s.loadDashboard(actor)
	if err != nil {
		return nil, apierror.InternalServerError
	}
	state = dashboard.Reduce(state, dashboard.FilterChanged{
		Filter: dashboard.Filter{Industry: req.Industry, Query: req.Query},
	})

	visible := state.Visible()
	companies := make([]*contract.CompanySummary, len(visible))
	for i, rec := range visible {
		companies[i] = toCompanySummary(rec)
	}

	industries := state.Industries()
	if industries == nil {
		industries = []string{}
	}
	return &contract.CompanyListResponse{Companies: companies, Industries: industries}, nil
}

func (s *AnalysisService) GetCompany(actor *entity.User, rawID string) (*contract.CompanyDetailResponse, apierror.ErrorResponse) {
	if apierr := s.Policy.CanViewSaved(actor); apierr != nil {
		return nil, apierr
	}

	id, ok := utils.ParseSnowflake(rawID)
	if !ok {
		return nil, apierror.InvalidIDError
	}

	rec, err := s.AnalysisRepo.FindByID(actor.ID, id)
	if err != nil {
		log.Errorf("failed to fetch analysis %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if apierr := s.Policy.CanSee(rec, actor); apierr != nil {
		return nil, apierr
	}
	return &contract.CompanyDetailResponse{CompanySummary: toCompanySummary(rec), Analysis: rec.Report()}, nil
}

func (s *AnalysisService) loadDashboard(actor *entity.User) (dashboard.State, error) {
	records, err := s.AnalysisRepo.FindRecentByUser(actor.ID, s.RowLimit)
	if err != nil {
		log.Errorf("failed to load saved analyses of user %d: %v", actor.ID, err)
		return dashboard.State{}, err
	}
	return dashboard.Reduce(dashboard.State{}, dashboard.RecordsLoaded{Records: records}), nil
}

// findCached asks the dashboard first. Records older than the row limit
// are not on the dashboard, so a miss still checks the database.
func (s *AnalysisService) findCached(actor *entity.User, state dashboard.State, domain, compareDomain string, force bool) (*entity.CompanyAnalysis, apierror.ErrorResponse) {
	source, rec := dashboard.Decide(state, domain, compareDomain, force)
	if source == dashboard.SourceCache || force {
		return rec, nil
	}

	if len(state.Saved) < s.RowLimit {
		return nil, nil
	}

	rec, err := s.AnalysisRepo.FindLatestByUserAndDomain(actor.ID, domain, compareDomain)
	if err != nil {
		log.Errorf("failed to look up saved analysis of %s: %v", domain, err)
		return nil, apierror.AnalysisFailedError
	}
	return rec, nil
}

// archive uploads the report to S3 and returns its key. Failures only cost
// the archive copy, so they are logged and an empty key is returned.
func (s *AnalysisService) archive(ctx context.Context, domain string, report entity.Report) string {
	if s.Archive == nil {
		return ""
	}

	data, err := json.Marshal(report)
	if err != nil {
		log.Errorf("failed to encode report of %s for archiving: %v", domain, err)
		return ""
	}

	key, err := s.Archive.UploadFile(ctx, data, fmt.Sprintf("%s/%s.json", domain, uuid.NewString()))
	if err != nil {
		log.Errorf("failed to archive report of %s: %v", domain, err)
		return ""
	}
	return key
}

// startEmitter returns a non-blocking, ordered event sink for one request.
// done must be called once no more events will be emitted.
func (s *AnalysisService) startEmitter(userID int64) (emit func(events.SocketEvent), done func()) {
	if s.Events == nil {
		return func(events.SocketEvent) {}, func() {}
	}

	ch := make(chan events.SocketEvent, 16)
	go func() {
		for evt := range ch {
			s.Events.Dispatch(context.Background(), userID, evt)
		}
	}()

	emit = func(evt events.SocketEvent) {
		select {
		case ch <- evt:
		default:
			log.Warnf("dropping %s event for user %d", evt.GetType(), userID)
		}
	}
	return emit, func() { close(ch) }
}

func mapPipelineError(domain string, err error) *apierror.AnalysisError {
	var missing *aigateway.MissingCredentialError
	var upstream *aigateway.UpstreamError

	switch {
	case errors.As(err, &missing):
		log.Errorf("cannot analyze %s: %v", domain, err)
		return apierror.NewAnalysisError(http.StatusInternalServerError, missing.Error())
	case errors.Is(err, aigateway.ErrRateLimited):
		return apierror.RateLimitedError
	case errors.Is(err, aigateway.ErrPaymentRequired):
		return apierror.PaymentRequiredError
	case errors.As(err, &upstream):
		log.Errorf("AI Gateway error: %d %s", upstream.Status, upstream.Body)
		return apierror.NewAnalysisError(http.StatusInternalServerError, "AI Gateway error: %d", upstream.Status)
	case errors.Is(err, analyzer.ErrParseFailed):
		return apierror.ParseFailedError
	default:
		log.Errorf("analysis of %s failed: %v", domain, err)
		return apierror.AnalysisFailedError
	}
}

func toCachedResponse(rec *entity.CompanyAnalysis, source dashboard.Source) *contract.AnalyzeCompanyResponse {
	return &contract.AnalyzeCompanyResponse{
		Success:          true,
		Analysis:         rec.Report(),
		Timestamp:        utils.FormatEpoch(rec.CreatedAt),
		ResearchDataUsed: rec.Pipeline == entity.PipelineResearch,
		Cached:           true,
		Source:           source.String(),
		RecordID:         strconv.FormatInt(rec.ID, 10),
	}
}

func toCompanySummary(rec *entity.CompanyAnalysis) *contract.CompanySummary {
	techs := []string(rec.Technologies)
	if techs == nil {
		techs = []string{}
	}

	return &contract.CompanySummary{
		ID:            strconv.FormatInt(rec.ID, 10),
		Name:          rec.Name,
		Domain:        rec.Domain,
		CompareDomain: rec.CompareDomain,
		Description:   rec.Description,
		Industry:      rec.Industry,
		BusinessModel: rec.BusinessModel,
		Technologies:  techs,
		Pipeline:      string(rec.Pipeline),
		CreatedAt:     utils.FormatEpoch(rec.CreatedAt),
	}
}
