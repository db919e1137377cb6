package repositories

import (
	"context"

	"neurogen-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// caseRepository implements CaseRepository interface
type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

// Create creates a new medical case
func (r *caseRepository) Create(ctx context.Context, medCase *models.MedicalCase) error {
	return r.db.WithContext(ctx).Create(medCase).Error
}

// GetByID gets a case by ID with its messages in insertion order
func (r *caseRepository) GetByID(ctx context.Context, id string) (*models.MedicalCase, error) {
	var medCase models.MedicalCase
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", id).
		First(&medCase).Error
	if err != nil {
		return nil, err
	}
	return &medCase, nil
}

// ListAll lists all cases, newest first
func (r *caseRepository) ListAll(ctx context.Context) ([]*models.MedicalCase, error) {
	var cases []*models.MedicalCase
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Order("created_at DESC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// ListByPatient lists cases owned by a patient, newest first
func (r *caseRepository) ListByPatient(ctx context.Context, patientID string) ([]*models.MedicalCase, error) {
	var cases []*models.MedicalCase
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// Update saves the full case row
func (r *caseRepository) Update(ctx context.Context, medCase *models.MedicalCase) error {
	return r.db.WithContext(ctx).
		Omit("Messages").
		Save(medCase).Error
}

// AddMessage appends an immutable message to a case thread
func (r *caseRepository) AddMessage(ctx context.Context, msg *models.CaseMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// CountByStatus counts cases in the given lifecycle state
func (r *caseRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MedicalCase{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
