package handler

import (
	"context"
	"net/http"
	"strings"

	"echodft/cmd/internal/contract"
	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/utils"
	"echodft/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

var invalidBodyError = apierror.NewAnalysisError(http.StatusBadRequest, "Invalid request body")

type AnalysisService interface {
	Analyze(ctx context.Context, actor *entity.User, req *contract.AnalyzeCompanyRequest) (*contract.AnalyzeCompanyResponse, apierror.ErrorResponse)
	ListCompanies(actor *entity.User, req *contract.CompanyFilterRequest) (*contract.CompanyListResponse, apierror.ErrorResponse)
	GetCompany(actor *entity.User, rawID string) (*contract.CompanyDetailResponse, apierror.ErrorResponse)
}

type DefaultAnalysisRoute struct {
	AnalysisService AnalysisService
}

func NewAnalysisDefault(analysisService AnalysisService) *DefaultAnalysisRoute {
	return &DefaultAnalysisRoute{AnalysisService: analysisService}
}

// AnalyzeCompany answers with {success, analysis, timestamp} or, on any
// failure, {success: false, error}.
func (a *DefaultAnalysisRoute) AnalyzeCompany(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.AnalyzeCompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(invalidBodyError.Code(), invalidBodyError)
	}

	resp, apierr := a.AnalysisService.Analyze(c.Request().Context(), user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *DefaultAnalysisRoute) ListCompanies(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.CompanyFilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.AnalysisService.ListCompanies(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *DefaultAnalysisRoute) GetCompany(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	resp, apierr := a.AnalysisService.GetCompany(user, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
