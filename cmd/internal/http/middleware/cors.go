package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORSAllowedHeaders are the headers browser clients of the analysis
// endpoint send along with their requests.
const CORSAllowedHeaders = "authorization, x-client-info, apikey, content-type"

// NewCORSMiddleware allows every origin. Preflight requests are answered
// with an empty 200 before routing, so they never reach authentication.
// Register it with echo.Pre.
func NewCORSMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowHeaders, CORSAllowedHeaders)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
