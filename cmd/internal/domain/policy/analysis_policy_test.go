package policy

import (
	"net/http"
	"testing"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
)

func TestCanAnalyze(t *testing.T) {
	p := NewAnalysisPolicy()

	full := &entity.User{ID: 1, Permissions: entity.PermissionDefault}
	assert.Nil(t, p.CanAnalyze(full, true, true))

	runOnly := &entity.User{ID: 2, Permissions: entity.PermissionRunAnalysis}
	assert.Nil(t, p.CanAnalyze(runOnly, false, false))
	assert.Equal(t, apierror.AnalysisForbiddenError, p.CanAnalyze(runOnly, true, false))
	assert.Equal(t, apierror.AnalysisForbiddenError, p.CanAnalyze(runOnly, false, true))

	admin := &entity.User{ID: 3, Permissions: entity.PermissionAdministrator}
	assert.Nil(t, p.CanAnalyze(admin, true, true))

	nobody := &entity.User{ID: 4}
	assert.Equal(t, apierror.AnalysisForbiddenError, p.CanAnalyze(nobody, false, false))
}

func TestCanViewSaved(t *testing.T) {
	p := NewAnalysisPolicy()

	assert.Nil(t, p.CanViewSaved(&entity.User{Permissions: entity.PermissionViewSaved}))

	apierr := p.CanViewSaved(&entity.User{Permissions: entity.PermissionRunAnalysis})
	if assert.NotNil(t, apierr) {
		assert.Equal(t, http.StatusForbidden, apierr.Code())
	}
}

func TestCanSee(t *testing.T) {
	p := NewAnalysisPolicy()
	owner := &entity.User{ID: 10}

	assert.Nil(t, p.CanSee(&entity.CompanyAnalysis{UserID: 10}, owner))
	assert.Equal(t, apierror.NotFoundError, p.CanSee(&entity.CompanyAnalysis{UserID: 11}, owner))
	assert.Equal(t, apierror.NotFoundError, p.CanSee(nil, owner))
}
