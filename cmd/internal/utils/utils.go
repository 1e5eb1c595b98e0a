package utils

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"echodft/cmd/internal/utils/apierror"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/labstack/gommon/log"
)

// cognitoErrors is checked in order, the first match wins.
var cognitoErrors = []struct {
	matches func(error) bool
	resp    apierror.ErrorResponse
}{
	{isErr[*types.InvalidPasswordException], apierror.IDPInvalidPasswordError},
	{isErr[*types.UsernameExistsException], apierror.IDPExistingEmailError},
	{isErr[*types.UserNotFoundException], apierror.IDPUserNotFoundError},
	{isErr[*types.UserNotConfirmedException], apierror.IDPUserNotConfirmedError},
	{isErr[*types.NotAuthorizedException], apierror.IDPCredentialsMismatchError},
	{isErr[*types.CodeMismatchException], apierror.IDPConfirmCodeMismatchError},
	{isErr[*types.ExpiredCodeException], apierror.IDPConfirmCodeExpiredError},
	{isErr[*types.InvalidParameterException], apierror.IDPInvalidParameterError},
}

func isErr[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// FormatEpoch renders epoch millis the way every response carries them.
func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().UTC().UnixMilli()
}

// ParseSnowflake reads a record ID from a path parameter.
func ParseSnowflake(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func MapCognitoError(err error) apierror.ErrorResponse {
	for _, m := range cognitoErrors {
		if m.matches(err) {
			return m.resp
		}
	}

	log.Errorf("unmapped cognito error: %v", err)
	return apierror.InternalServerError
}

// Sanitize trims every string and []string field of the struct o points to.
// Fields tagged `sanitize:"collapse"` also get inner whitespace runs folded
// into a single space, and `sanitize:"-"` leaves a field alone.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		mode := t.Field(i).Tag.Get("sanitize")
		if mode == "-" {
			continue
		}
		clean := func(s string) string { return sanitizeString(s, mode == "collapse") }

		switch field.Kind() {
		case reflect.String:
			field.SetString(clean(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(clean(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string, collapse bool) string {
	if collapse {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.TrimSpace(s)
}
