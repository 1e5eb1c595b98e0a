package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"scheme, www and path", "https://www.example.com/path", "example.com"},
		{"plain https", "https://example.com", "example.com"},
		{"http with query", "http://www.stripe.com/pricing?plan=pro", "stripe.com"},
		{"uppercase host", "HTTPS://WWW.Example.COM", "example.com"},
		{"port is dropped", "https://www.example.com:8443/a", "example.com"},
		{"no scheme", "www.notion.so/product", "notion.so"},
		{"subdomain kept", "https://app.example.com", "app.example.com"},
		{"inner www kept", "https://api.www.example.com", "api.www.example.com"},
		{"surrounding spaces", "  https://www.example.com  ", "example.com"},
		{"trailing dot", "https://www.example.com./", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDomain(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDomain_Errors(t *testing.T) {
	_, err := NormalizeDomain("   ")
	assert.ErrorIs(t, err, ErrEmptyURL)

	_, err = NormalizeDomain("https://")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = NormalizeDomain("https://exa mple.com")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestCompanyNameHint(t *testing.T) {
	assert.Equal(t, "stripe", CompanyNameHint("stripe.com"))
	assert.Equal(t, "app", CompanyNameHint("app.example.com"))
	assert.Equal(t, "localhost", CompanyNameHint("localhost"))
}
