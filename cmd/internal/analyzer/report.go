package analyzer

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"echodft/cmd/internal/domain/entity"

	"github.com/labstack/gommon/log"
)

var ErrParseFailed = errors.New("failed to parse ai analysis")

var (
	leadingFence  = regexp.MustCompile("(?i)^```(json)?\\n?")
	trailingFence = regexp.MustCompile("\\n?```\\s*$")
)

// logPreviewLen caps how much of an unparseable answer reaches the log.
const logPreviewLen = 500

// StripCodeFences removes a markdown code fence wrapped around the model
// answer, if any.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseReport decodes the model answer into a report. The answer must be a
// JSON object; its fields are not checked against the schema.
func ParseReport(text string) (entity.Report, error) {
	cleaned := StripCodeFences(text)

	var report entity.Report
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil || report == nil {
		log.Errorf("failed to parse ai response: %s", preview(cleaned))
		return nil, ErrParseFailed
	}
	return report, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= logPreviewLen {
		return s
	}
	return string(r[:logPreviewLen])
}
