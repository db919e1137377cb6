package repositories

import (
	"context"

	"neurogen-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// analysisRepository implements AnalysisRepository interface
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis archive repository
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create archives a generated report
func (r *analysisRepository) Create(ctx context.Context, result *models.AnalysisResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// ListByUser lists archived reports for a user with pagination, newest first
func (r *analysisRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.AnalysisResult, int64, error) {
	var results []*models.AnalysisResult
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).
		Model(&models.AnalysisResult{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get reports with pagination
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}
