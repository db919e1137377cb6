package repositories

import (
	"context"

	"neurogen-backend/internal/adapters/persistence/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
}

// CaseRepository defines the interface for medical case data access
type CaseRepository interface {
	Create(ctx context.Context, medCase *models.MedicalCase) error
	GetByID(ctx context.Context, id string) (*models.MedicalCase, error)
	ListAll(ctx context.Context) ([]*models.MedicalCase, error)
	ListByPatient(ctx context.Context, patientID string) ([]*models.MedicalCase, error)
	Update(ctx context.Context, medCase *models.MedicalCase) error
	AddMessage(ctx context.Context, msg *models.CaseMessage) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// AnalysisRepository defines the interface for archived analysis reports
type AnalysisRepository interface {
	Create(ctx context.Context, result *models.AnalysisResult) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.AnalysisResult, int64, error)
}
