package utils

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL   = errors.New("url is empty")
	ErrInvalidURL = errors.New("url is invalid")
)

// NormalizeDomain reduces a company URL to its bare hostname:
// "https://www.example.com/path" -> "example.com".
//
// Inputs without a scheme ("example.com/pricing") are treated as https.
func NormalizeDomain(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" || strings.ContainsAny(host, " \t") {
		return "", ErrInvalidURL
	}
	return strings.TrimPrefix(host, "www."), nil
}

// CompanyNameHint guesses a company name from its domain, which is only
// used to make the research queries a bit more specific.
func CompanyNameHint(domain string) string {
	name, _, _ := strings.Cut(domain, ".")
	return name
}
