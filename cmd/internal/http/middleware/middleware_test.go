package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users map[string]*entity.User
	err   error
}

func (s *stubUserRepo) FindActiveBySub(sub string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[sub], nil
}

func tokenFromHeader(c echo.Context) (*utils.TokenData, error) {
	sub := c.Request().Header.Get(echo.HeaderAuthorization)
	if sub == "" {
		return nil, errors.New("no token")
	}
	return &utils.TokenData{Sub: sub, Exp: 1700000000}, nil
}

func newAuthServer(repo *stubUserRepo) *echo.Echo {
	return newAuthServerWith(&AuthMiddlewareConfig{UserRepo: repo, ParseToken: tokenFromHeader})
}

func newAuthServerWith(cfg *AuthMiddlewareConfig) *echo.Echo {
	e := echo.New()
	e.Pre(NewCORSMiddleware())

	auth := NewAuthMiddleware(cfg)
	e.POST("/analyze-company", func(c echo.Context) error {
		user, cerr := utils.GetUserFromContext(c)
		if cerr != nil {
			return c.JSON(cerr.Code(), cerr)
		}
		token, cerr := utils.GetTokenFromContext(c)
		if cerr != nil {
			return c.JSON(cerr.Code(), cerr)
		}
		return c.JSON(http.StatusOK, echo.Map{"user": user.Username, "exp": token.Exp})
	}, auth)
	return e
}

func serve(e *echo.Echo, method, sub string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/analyze-company", nil)
	if sub != "" {
		req.Header.Set(echo.HeaderAuthorization, sub)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORS_PreflightSkipsAuth(t *testing.T) {
	e := newAuthServer(&stubUserRepo{})

	rec := serve(e, http.MethodOptions, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, CORSAllowedHeaders, rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
}

func TestAuth(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*entity.User{
		"ada":   {Username: "ada", Active: true},
		"grace": {Username: "grace", Active: true, Suspended: true},
	}}
	e := newAuthServer(repo)

	rec := serve(e, http.MethodPost, "ada")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user": "ada", "exp": 1700000000}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin), "errors and successes both carry CORS headers")

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "nobody").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "grace").Code)

	repo.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodPost, "ada").Code)
}

func TestAuth_AnalysisShapedRejections(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*entity.User{
		"grace": {Username: "grace", Active: true, Suspended: true},
	}}
	e := newAuthServerWith(&AuthMiddlewareConfig{UserRepo: repo, ParseToken: tokenFromHeader, Reject: RejectAsAnalysis})

	rec := serve(e, http.MethodPost, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "Invalid or expired authentication token"}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "nobody")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "User not found"}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "grace")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "Missing access"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	repo.err = errors.New("db down")
	rec = serve(e, http.MethodPost, "grace")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "Internal server error"}`, rec.Body.String())
}

func TestAuth_DefaultRejectionKeepsMessageShape(t *testing.T) {
	e := newAuthServer(&stubUserRepo{})

	rec := serve(e, http.MethodPost, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message": "Invalid or expired authentication token"}`, rec.Body.String())
}
