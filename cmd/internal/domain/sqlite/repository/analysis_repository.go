package repository

import (
	"errors"

	"echodft/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultAnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *DefaultAnalysisRepository {
	return &DefaultAnalysisRepository{db: db}
}

// Save inserts a new record. Records are never updated: a forced refresh
// produces a newer row that shadows the older ones.
func (r *DefaultAnalysisRepository) Save(analysis *entity.CompanyAnalysis) error {
	return r.db.Create(analysis).Error
}

func (r *DefaultAnalysisRepository) FindByID(userID, id int64) (*entity.CompanyAnalysis, error) {
	var analysis entity.CompanyAnalysis
	err := r.db.
		Where("user_id = ? AND id = ?", userID, id).
		First(&analysis).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *DefaultAnalysisRepository) FindLatestByUserAndDomain(userID int64, domain, compareDomain string) (*entity.CompanyAnalysis, error) {
	var analysis entity.CompanyAnalysis
	err := r.db.
		Where("user_id = ? AND domain = ? AND compare_domain = ?", userID, domain, compareDomain).
		Order("created_at DESC, id DESC").
		First(&analysis).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// FindRecentByUser returns up to limit records, newest first.
func (r *DefaultAnalysisRepository) FindRecentByUser(userID int64, limit int) ([]*entity.CompanyAnalysis, error) {
	var analyses []*entity.CompanyAnalysis
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
