package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StatsService aggregates case workload figures for the dashboards.
// It queries tables directly; the numbers are informational and read
// outside the per-case lock.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// CaseSummary is a compact case row for dashboard listings
type CaseSummary struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	Status      string    `json:"status"`
	Modality    *string   `json:"modality"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DoctorDashboardData represents the doctor-side workload overview
type DoctorDashboardData struct {
	TotalCases     int64         `json:"total_cases"`
	PendingCases   int64         `json:"pending_cases"`
	CompletedCases int64         `json:"completed_cases"`
	UnreadCases    int64         `json:"unread_cases"`
	CasesThisWeek  int64         `json:"cases_this_week"`
	TotalPatients  int64         `json:"total_patients"`
	RecentCases    []CaseSummary `json:"recent_cases"`
}

// PatientDashboardData represents the patient-side overview
type PatientDashboardData struct {
	TotalCases     int64         `json:"total_cases"`
	PendingCases   int64         `json:"pending_cases"`
	CompletedCases int64         `json:"completed_cases"`
	UnreadCases    int64         `json:"unread_cases"`
	RecentCases    []CaseSummary `json:"recent_cases"`
}

// GetDoctorDashboard returns the doctor workload overview across all
// patients
func (s *StatsService) GetDoctorDashboard(ctx context.Context) (*DoctorDashboardData, error) {
	data := &DoctorDashboardData{}

	s.db.WithContext(ctx).Table("medical_cases").Count(&data.TotalCases)
	s.db.WithContext(ctx).Table("medical_cases").Where("status = ?", "pending").Count(&data.PendingCases)
	s.db.WithContext(ctx).Table("medical_cases").Where("status = ?", "completed").Count(&data.CompletedCases)
	s.db.WithContext(ctx).Table("medical_cases").Where("has_unread_for_doctor = ?", true).Count(&data.UnreadCases)

	startOfWeek := time.Now().AddDate(0, 0, -7)
	s.db.WithContext(ctx).Table("medical_cases").Where("created_at >= ?", startOfWeek).Count(&data.CasesThisWeek)

	s.db.WithContext(ctx).Table("users").Where("role = ?", "PATIENT").Count(&data.TotalPatients)

	recent, err := s.recentCases(ctx, "", 5)
	if err != nil {
		return nil, err
	}
	data.RecentCases = recent

	return data, nil
}

// GetPatientDashboard returns the overview of one patient's own cases
func (s *StatsService) GetPatientDashboard(ctx context.Context, patientID string) (*PatientDashboardData, error) {
	data := &PatientDashboardData{}

	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Table("medical_cases").Where("patient_id = ?", patientID)
	}

	base().Count(&data.TotalCases)
	base().Where("status = ?", "pending").Count(&data.PendingCases)
	base().Where("status = ?", "completed").Count(&data.CompletedCases)
	base().Where("has_unread_for_patient = ?", true).Count(&data.UnreadCases)

	recent, err := s.recentCases(ctx, patientID, 5)
	if err != nil {
		return nil, err
	}
	data.RecentCases = recent

	return data, nil
}

// recentCases lists the newest cases, optionally scoped to one patient
func (s *StatsService) recentCases(ctx context.Context, patientID string, limit int) ([]CaseSummary, error) {
	query := s.db.WithContext(ctx).
		Table("medical_cases").
		Select("id, patient_name, status, modality, created_at").
		Order("created_at DESC").
		Limit(limit)

	if patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}

	var rows []CaseSummary
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []CaseSummary{}
	}
	return rows, nil
}
