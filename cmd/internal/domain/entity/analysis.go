package entity

import (
	"encoding/json"
	"slices"
	"strings"
)

type PipelineKind string

const (
	PipelineResearch   PipelineKind = "RESEARCH"
	PipelineSingleShot PipelineKind = "SINGLE_SHOT"
)

// techCategories is the order in which grouped technologies are flattened.
var techCategories = []string{"frontend", "backend", "database", "hosting", "analytics", "marketing"}

// CompanyAnalysis is one saved analysis result of a user.
//
// Document holds the whole report as the model emitted it and is what a
// cached response returns. The per-field columns only serve listing and
// filtering.
type CompanyAnalysis struct {
	ID            int64        `gorm:"primaryKey;autoIncrement:false"`
	UserID        int64        `gorm:"not null;index:idx_analysis_owner_domain,priority:1"`
	Domain        string       `gorm:"not null;index:idx_analysis_owner_domain,priority:2"`
	CompareDomain string       `gorm:"not null;default:''"`
	SourceURL     string       `gorm:"not null"`
	Pipeline      PipelineKind `gorm:"not null"`

	Name          string `gorm:"not null"`
	Description   string
	Industry      string `gorm:"index"`
	BusinessModel string
	Technologies  StringList

	Company     RawJSON
	TechStack   RawJSON
	Traffic     RawJSON
	Revenue     RawJSON
	SEO         RawJSON `gorm:"column:seo"`
	Social      RawJSON
	Growth      RawJSON
	Competition RawJSON
	AIInsights  RawJSON `gorm:"column:ai_insights"`
	DataQuality RawJSON
	Comparison  RawJSON

	LovablePrompt string
	Document      RawJSON `gorm:"column:report"`
	ArchiveKey    string
	CreatedAt     int64 `gorm:"not null;index;autoCreateTime:false"`
}

// NewCompanyAnalysis copies the fields of a fresh report into a record.
// ID, ArchiveKey and CreatedAt are left for the caller.
func NewCompanyAnalysis(userID int64, sourceURL, domain, compareDomain string, pipeline PipelineKind, report Report) *CompanyAnalysis {
	company := report.Object(KeyCompany)
	document, _ := json.Marshal(report)

	name := company.String("name")
	if name == "" {
		name = domain
	}

	return &CompanyAnalysis{
		UserID:        userID,
		Domain:        domain,
		CompareDomain: compareDomain,
		SourceURL:     sourceURL,
		Pipeline:      pipeline,
		Name:          name,
		Description:   company.String("description"),
		Industry:      company.String("industry"),
		BusinessModel: company.String("businessModel"),
		Technologies:  flattenTechStack(report.Object(KeyTechStack)),
		Company:       report.Raw(KeyCompany),
		TechStack:     report.Raw(KeyTechStack),
		Traffic:       report.Raw(KeyTraffic),
		Revenue:       report.Raw(KeyRevenue),
		SEO:           report.Raw(KeySEO),
		Social:        report.Raw(KeySocial),
		Growth:        deriveGrowth(report),
		Competition:   report.Raw(KeyCompetition),
		AIInsights:    report.Raw(KeyAIInsights),
		DataQuality:   report.Raw(KeyDataQuality),
		Comparison:    report.Raw(KeyComparison),
		LovablePrompt: report.String(KeyLovablePrompt),
		Document:      document,
	}
}

// Report returns the stored payload unchanged. Rows saved before the
// document column existed are put back together from the per-field columns.
func (a *CompanyAnalysis) Report() Report {
	var r Report
	if len(a.Document) > 0 && json.Unmarshal(a.Document, &r) == nil && r != nil {
		return r
	}

	r = Report{}
	put := func(key string, v RawJSON) {
		if len(v) > 0 {
			r[key] = json.RawMessage(v)
		}
	}

	put(KeyCompany, a.Company)
	put(KeyTraffic, a.Traffic)
	put(KeySEO, a.SEO)
	put(KeyTechStack, a.TechStack)
	put(KeyRevenue, a.Revenue)
	put(KeySocial, a.Social)
	put(KeyCompetition, a.Competition)
	put(KeyAIInsights, a.AIInsights)
	put(KeyDataQuality, a.DataQuality)
	put(KeyComparison, a.Comparison)

	if a.LovablePrompt != "" {
		prompt, _ := json.Marshal(a.LovablePrompt)
		put(KeyLovablePrompt, prompt)
	}
	return r
}

// flattenTechStack turns {"frontend": ["React"], ...} into a single
// de-duplicated list. Known categories come first, the rest alphabetically.
func flattenTechStack(groups Report) StringList {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		if k == "dataSource" || slices.Contains(techCategories, k) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	keys = append(slices.Clone(techCategories), keys...)

	seen := make(map[string]bool)
	techs := StringList{}
	for _, k := range keys {
		raw, ok := groups[k]
		if !ok {
			continue
		}

		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			continue
		}

		for _, item := range items {
			item = strings.TrimSpace(item)
			lower := strings.ToLower(item)
			if item == "" || seen[lower] {
				continue
			}
			seen[lower] = true
			techs = append(techs, item)
		}
	}
	return techs
}

// deriveGrowth collects the growth rates scattered in the report into one
// document, since the model schema has no top-level growth object.
func deriveGrowth(report Report) RawJSON {
	growth := map[string]json.RawMessage{}
	if v := report.Object(KeyTraffic).Raw("growthRate"); v != nil {
		growth["traffic"] = json.RawMessage(v)
	}
	if v := report.Object(KeyRevenue).Raw("growthRate"); v != nil {
		growth["revenue"] = json.RawMessage(v)
	}

	if len(growth) == 0 {
		return nil
	}

	b, err := json.Marshal(growth)
	if err != nil {
		return nil
	}
	return b
}
