package entity

import (
	"encoding/json"
	"strings"
)

// Top-level keys of the report emitted by the analysis model.
const (
	KeyCompany       = "company"
	KeyTraffic       = "traffic"
	KeySEO           = "seo"
	KeyTechStack     = "techStack"
	KeyRevenue       = "revenue"
	KeySocial        = "social"
	KeyCompetition   = "competition"
	KeyAIInsights    = "aiInsights"
	KeyLovablePrompt = "lovablePrompt"
	KeyDataQuality   = "dataQuality"
	KeyComparison    = "comparison"
)

// Report is the analysis exactly as the model returned it. Only the top level
// is decoded; every sub-object keeps its original bytes.
type Report map[string]json.RawMessage

// Raw returns the raw sub-document under key, or nil.
func (r Report) Raw(key string) RawJSON {
	v, ok := r[key]
	if !ok || isNull(v) {
		return nil
	}
	return RawJSON(v)
}

// String reads key as a string. Non-string scalars are returned as their
// JSON text, so a model answering 2015 instead of "2015" still reads fine.
func (r Report) String(key string) string {
	return stringValue(r[key])
}

// Object decodes the sub-document under key as a JSON object. A missing or
// non-object value yields an empty map.
func (r Report) Object(key string) Report {
	obj := Report{}
	if v, ok := r[key]; ok {
		_ = json.Unmarshal(v, &obj)
	}
	return obj
}

func stringValue(v json.RawMessage) string {
	if len(v) == 0 || isNull(v) {
		return ""
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(v))
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}
