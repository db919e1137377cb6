package config

import (
	"log"
	"time"

	"neurogen-backend/internal/adapters/persistence/models"
	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedDemoData seeds the demo doctor, demo patient, and one sample
// case. It is idempotent and only runs when SEED_DEMO_DATA is on.
func SeedDemoData(db *gorm.DB) error {
	if err := seedDemoUsers(db); err != nil {
		return err
	}

	if err := seedDemoCase(db); err != nil {
		return err
	}

	log.Println("✅ Demo data seeded successfully")
	return nil
}

func seedDemoUsers(db *gorm.DB) error {
	hash, err := password.Hash("12345678")
	if err != nil {
		return err
	}

	department := "神经内科"
	title := "主治医师"
	hospital := "北京协和医院"
	specialties := "帕金森病,阿尔茨海默病,脑血管疾病"

	users := []models.User{
		{
			ID:           "110101199501011234",
			PasswordHash: hash,
			Role:         string(domain.RoleDoctor),
			Name:         "张医生",
			Gender:       "男",
			Age:          35,
			Phone:        "13800138000",
			Department:   &department,
			Title:        &title,
			Hospital:     &hospital,
			Specialties:  &specialties,
		},
		{
			ID:           "patient_demo",
			PasswordHash: hash,
			Role:         string(domain.RolePatient),
			Name:         "李患者",
			Gender:       "女",
			Age:          28,
			Phone:        "13900139000",
		},
	}

	for _, u := range users {
		var existing models.User
		if err := db.Where("id = ?", u.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&u).Error; err != nil {
					return err
				}
				log.Printf("   Created user: %s (%s)", u.Name, u.Role)
			}
		}
	}
	return nil
}

func seedDemoCase(db *gorm.DB) error {
	var existing models.MedicalCase
	err := db.Where("id = ?", "demo-case-001").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	modality := domain.ModalityMRI
	demoCase := models.MedicalCase{
		ID:                 "demo-case-001",
		PatientID:          "patient_demo",
		PatientName:        "李患者",
		Description:        "近期出现头痛、记忆力减退症状，持续两周。请医生帮忙分析。",
		Status:             string(domain.CaseStatusPending),
		HasUnreadForDoctor: true,
		Modality:           &modality,
		Tags:               models.JoinTags([]string{"Brain", "Headache"}),
		CreatedAt:          time.Now().Add(-24 * time.Hour),
	}

	if err := db.Create(&demoCase).Error; err != nil {
		return err
	}
	log.Printf("   Created case: %s", demoCase.ID)
	return nil
}
