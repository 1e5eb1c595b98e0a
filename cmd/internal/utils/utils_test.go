package utils

import (
	"errors"
	"fmt"
	"testing"

	"echodft/cmd/internal/utils/apierror"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	req := struct {
		URL      string
		Query    string `sanitize:"collapse"`
		Password string `sanitize:"-"`
		Tags     []string
		Force    bool
		hidden   string
	}{
		URL:      "  https://linear.app ",
		Query:    "  issue \t  tracker ",
		Password: " keep me ",
		Tags:     []string{" a ", "b "},
		Force:    true,
		hidden:   " untouched ",
	}

	Sanitize(&req)

	assert.Equal(t, "https://linear.app", req.URL)
	assert.Equal(t, "issue tracker", req.Query)
	assert.Equal(t, " keep me ", req.Password)
	assert.Equal(t, []string{"a", "b"}, req.Tags)
	assert.True(t, req.Force)
	assert.Equal(t, " untouched ", req.hidden)

	assert.Panics(t, func() { Sanitize(req) })
}

func TestParseSnowflake(t *testing.T) {
	id, ok := ParseSnowflake(" 1786512345678901248 ")
	assert.True(t, ok)
	assert.Equal(t, int64(1786512345678901248), id)

	for _, raw := range []string{"", "abc", "0", "-4", "1.5"} {
		_, ok := ParseSnowflake(raw)
		assert.False(t, ok, raw)
	}
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", FormatEpoch(1700000000000))
}

func TestMapCognitoError(t *testing.T) {
	wrapped := fmt.Errorf("sign up: %w", &types.CodeMismatchException{Message: aws.String("bad code")})

	assert.Equal(t, apierror.IDPConfirmCodeMismatchError, MapCognitoError(wrapped))
	assert.Equal(t, apierror.IDPExistingEmailError, MapCognitoError(&types.UsernameExistsException{}))
	assert.Equal(t, apierror.IDPCredentialsMismatchError, MapCognitoError(&types.NotAuthorizedException{}))
	assert.Equal(t, apierror.InternalServerError, MapCognitoError(errors.New("throttled")))
}
