package policy

import (
	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/utils/apierror"
)

const (
	runAnalysis      = entity.PermissionRunAnalysis
	forceRefresh     = entity.PermissionForceRefresh
	compareCompanies = entity.PermissionCompareCompanies
	viewSaved        = entity.PermissionViewSaved
)

// AnalysisPolicy encapsulates who may run, refresh and read company analyses.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
type AnalysisPolicy struct{}

func NewAnalysisPolicy() *AnalysisPolicy {
	return &AnalysisPolicy{}
}

// CanAnalyze answers in the analyze-company body shape, since its errors
// are shown by the same client code as pipeline failures.
func (p *AnalysisPolicy) CanAnalyze(actor *entity.User, compare, force bool) apierror.ErrorResponse {
	perms := actor.Permissions
	switch {
	case !perms.HasEffective(runAnalysis):
		return apierror.AnalysisForbiddenError
	case compare && !perms.HasEffective(compareCompanies):
		return apierror.AnalysisForbiddenError
	case force && !perms.HasEffective(forceRefresh):
		return apierror.AnalysisForbiddenError
	}
	return nil
}

func (p *AnalysisPolicy) CanViewSaved(actor *entity.User) apierror.ErrorResponse {
	if !actor.Permissions.HasEffective(viewSaved) {
		return permError(viewSaved)
	}
	return nil
}

// CanSee hides records of other users behind a 404.
func (p *AnalysisPolicy) CanSee(rec *entity.CompanyAnalysis, actor *entity.User) apierror.ErrorResponse {
	if rec == nil || rec.UserID != actor.ID {
		return apierror.NotFoundError
	}
	return nil
}

func permError(perm entity.Permission) *apierror.APIError {
	return apierror.NewPermissionError(int64(perm))
}
