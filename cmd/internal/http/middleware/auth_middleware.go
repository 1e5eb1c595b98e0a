package middleware

import (
	"net/http"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/utils"
	"echodft/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
}

type AuthMiddlewareConfig struct {
	UserRepo UserRepository

	// ParseToken defaults to utils.ParseTokenDataCtx.
	ParseToken func(c echo.Context) (*utils.TokenData, error)

	// Reject writes the response of a refused request. Defaults to c.JSON.
	Reject func(c echo.Context, status int, body apierror.ErrorResponse) error
}

// RejectAsAnalysis answers in the {"success": false, "error": ...} shape
// that analyze-company clients expect.
func RejectAsAnalysis(c echo.Context, status int, body apierror.ErrorResponse) error {
	return c.JSON(status, apierror.AsAnalysisError(status, body))
}

func rejectJSON(c echo.Context, status int, body apierror.ErrorResponse) error {
	return c.JSON(status, body)
}

// NewAuthMiddleware creates the handler with dependencies injected
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	parse := cfg.ParseToken
	if parse == nil {
		parse = utils.ParseTokenDataCtx
	}
	reject := cfg.Reject
	if reject == nil {
		reject = rejectJSON
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData, err := parse(c)
			if err != nil {
				return reject(c, http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			user, err := cfg.UserRepo.FindActiveBySub(tokenData.Sub)
			if err != nil {
				log.Errorf("failed to fetch user by sub %s: %v", tokenData.Sub, err)
				return reject(c, http.StatusInternalServerError, apierror.InternalServerError)
			}

			if user == nil {
				// Valid token, but the account is gone on our side
				return reject(c, http.StatusUnauthorized, apierror.IDPUserNotFoundError)
			}

			if user.Suspended || !user.Active {
				return reject(c, http.StatusForbidden, apierror.MissingAccessError)
			}

			c.Set(utils.ContextKeyUser, user)
			c.Set(utils.ContextKeyToken, tokenData)
			return next(c)
		}
	}
}
