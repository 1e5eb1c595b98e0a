package contract

import "echodft/cmd/internal/domain/entity"

type AnalyzeCompanyRequest struct {
	URL          string `json:"url" validate:"required,weburl"`
	CompareURL   string `json:"compareUrl" validate:"omitempty,weburl"`
	ForceRefresh bool   `json:"forceRefresh"`
}

// AnalyzeCompanyResponse keeps the field names the dashboard already reads.
type AnalyzeCompanyResponse struct {
	Success          bool          `json:"success"`
	Analysis         entity.Report `json:"analysis"`
	Timestamp        string        `json:"timestamp"`
	ResearchDataUsed bool          `json:"researchDataUsed"`
	Cached           bool          `json:"cached"`
	Source           string        `json:"source"`
	RecordID         string        `json:"recordId,omitempty"`
}

type CompanyFilterRequest struct {
	Industry string `query:"industry" validate:"omitempty,max=120" sanitize:"collapse"`
	Query    string `query:"q" validate:"omitempty,max=200" sanitize:"collapse"`
}

type CompanySummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Domain        string   `json:"domain"`
	CompareDomain string   `json:"compareDomain,omitempty"`
	Description   string   `json:"description"`
	Industry      string   `json:"industry"`
	BusinessModel string   `json:"businessModel"`
	Technologies  []string `json:"technologies"`
	Pipeline      string   `json:"pipeline"`
	CreatedAt     string   `json:"createdAt"`
}

type CompanyListResponse struct {
	Companies  []*CompanySummary `json:"companies"`
	Industries []string          `json:"industries"`
}

type CompanyDetailResponse struct {
	*CompanySummary
	Analysis entity.Report `json:"analysis"`
}
