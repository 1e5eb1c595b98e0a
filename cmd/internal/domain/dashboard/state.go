package dashboard

import (
	"slices"
	"strings"

	"echodft/cmd/internal/domain/entity"
)

// Source tells where the current analysis came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceCache
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "network"
}

type Filter struct {
	Industry string
	Query    string
}

// State is the dashboard of one user. It is a value: every change goes
// through Reduce, which hands back a new State and leaves the old one intact.
type State struct {
	Saved   []*entity.CompanyAnalysis
	Current *entity.CompanyAnalysis
	Source  Source
	Filter  Filter

	// Pending holds the domain being analyzed, if any.
	Pending string
	Error   string
}

// Action is anything Reduce knows how to apply.
type Action interface {
	apply(s State) State
}

// RecordsLoaded replaces the saved list, newest first.
type RecordsLoaded struct {
	Records []*entity.CompanyAnalysis
}

type AnalysisRequested struct {
	Domain string
}

// CachedRecordServed makes a saved record current without a network call.
type CachedRecordServed struct {
	Record *entity.CompanyAnalysis
}

// AnalysisSucceeded makes a fresh record current and puts it on top of the
// saved list.
type AnalysisSucceeded struct {
	Record *entity.CompanyAnalysis
}

type AnalysisFailed struct {
	Message string
}

type FilterChanged struct {
	Filter Filter
}

func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a RecordsLoaded) apply(s State) State {
	s.Saved = slices.Clone(a.Records)
	return s
}

func (a AnalysisRequested) apply(s State) State {
	s.Pending = a.Domain
	s.Error = ""
	return s
}

func (a CachedRecordServed) apply(s State) State {
	s.Current = a.Record
	s.Source = SourceCache
	s.Pending = ""
	s.Error = ""
	return s
}

func (a AnalysisSucceeded) apply(s State) State {
	saved := make([]*entity.CompanyAnalysis, 0, len(s.Saved)+1)
	saved = append(saved, a.Record)
	s.Saved = append(saved, s.Saved...)

	s.Current = a.Record
	s.Source = SourceNetwork
	s.Pending = ""
	s.Error = ""
	return s
}

func (a AnalysisFailed) apply(s State) State {
	s.Pending = ""
	s.Error = a.Message
	return s
}

func (a FilterChanged) apply(s State) State {
	s.Filter = a.Filter
	return s
}

// Decide picks between the cache and the network for a request. The cache
// only wins when a saved record matches both domains and no refresh was asked.
func Decide(s State, domain, compareDomain string, force bool) (Source, *entity.CompanyAnalysis) {
	if force {
		return SourceNetwork, nil
	}
	if rec := s.Find(domain, compareDomain); rec != nil {
		return SourceCache, rec
	}
	return SourceNetwork, nil
}

// Find returns the newest saved record for the pair, relying on Saved being
// newest first.
func (s State) Find(domain, compareDomain string) *entity.CompanyAnalysis {
	for _, rec := range s.Saved {
		if rec.Domain == domain && rec.CompareDomain == compareDomain {
			return rec
		}
	}
	return nil
}

// Visible is the saved list after the industry and search filters.
func (s State) Visible() []*entity.CompanyAnalysis {
	industry := strings.TrimSpace(s.Filter.Industry)
	query := strings.ToLower(strings.TrimSpace(s.Filter.Query))

	visible := make([]*entity.CompanyAnalysis, 0, len(s.Saved))
	for _, rec := range s.Saved {
		if industry != "" && !strings.EqualFold(rec.Industry, industry) {
			continue
		}
		if query != "" && !matches(rec, query) {
			continue
		}
		visible = append(visible, rec)
	}
	return visible
}

func matches(rec *entity.CompanyAnalysis, query string) bool {
	return strings.Contains(strings.ToLower(rec.Name), query) ||
		strings.Contains(strings.ToLower(rec.Domain), query)
}

// Industries lists the distinct industries of the saved records, sorted.
func (s State) Industries() []string {
	var industries []string
	for _, rec := range s.Saved {
		if rec.Industry != "" && !slices.Contains(industries, rec.Industry) {
			industries = append(industries, rec.Industry)
		}
	}
	slices.Sort(industries)
	return industries
}
