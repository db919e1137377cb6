package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// timeLayout is the single casing/format convention used at the API
// boundary for case and message timestamps.
const timeLayout = "2006/01/02 15:04"

// dateLayout formats registration dates.
const dateLayout = "2006-01-02"

// ============================================================
// Users
// ============================================================

// User represents the users table. ID is externally assigned
// (18-digit national ID for patients, staff ID for doctors).
type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:10;not null" json:"role"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	Gender       string    `gorm:"size:10" json:"gender"`
	Age          int       `json:"age"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Department   *string   `gorm:"size:50" json:"department"`
	Title        *string   `gorm:"size:50" json:"title"`
	Hospital     *string   `gorm:"size:100" json:"hospital"`
	Specialties  *string   `gorm:"size:255" json:"specialties"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO — profile without credentials
type UserResponse struct {
	ID               string  `json:"id"`
	Role             string  `json:"role"`
	Name             string  `json:"name"`
	Gender           string  `json:"gender,omitempty"`
	Age              int     `json:"age,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Department       *string `json:"department,omitempty"`
	Title            *string `json:"title,omitempty"`
	Hospital         *string `json:"hospital,omitempty"`
	Specialties      *string `json:"specialties,omitempty"`
	RegistrationDate string  `json:"registrationDate"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:               u.ID,
		Role:             u.Role,
		Name:             u.Name,
		Gender:           u.Gender,
		Age:              u.Age,
		Phone:            u.Phone,
		Department:       u.Department,
		Title:            u.Title,
		Hospital:         u.Hospital,
		Specialties:      u.Specialties,
		RegistrationDate: u.CreatedAt.Format(dateLayout),
	}
}

// ============================================================
// Medical Cases
// ============================================================

// MedicalCase represents the medical_cases table. Status moves
// pending -> completed exactly once; the three doctor_* fields are
// filled together at diagnosis time.
type MedicalCase struct {
	ID                  string        `gorm:"primaryKey;size:36" json:"id"`
	PatientID           string        `gorm:"size:32;not null;index" json:"patient_id"`
	PatientName         string        `gorm:"size:50;not null" json:"patient_name"`
	ImageURL            *string       `gorm:"size:500" json:"image_url"`
	Description         string        `gorm:"type:text" json:"description"`
	Status              string        `gorm:"size:20;not null;default:'pending'" json:"status"`
	DoctorFeedback      *string       `gorm:"type:text" json:"doctor_feedback"`
	DoctorName          *string       `gorm:"size:50" json:"doctor_name"`
	ReplyAt             *time.Time    `json:"reply_at"`
	HasUnreadForDoctor  bool          `gorm:"default:false" json:"has_unread_for_doctor"`
	HasUnreadForPatient bool          `gorm:"default:false" json:"has_unread_for_patient"`
	Modality            *string       `gorm:"size:20" json:"modality"`
	Tags                string        `gorm:"size:255" json:"tags"`
	CreatedAt           time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	Messages            []CaseMessage `gorm:"foreignKey:CaseID" json:"messages,omitempty"`
}

func (MedicalCase) TableName() string {
	return "medical_cases"
}

// TagList splits the stored comma-separated tags.
func (c *MedicalCase) TagList() []string {
	if c.Tags == "" {
		return []string{}
	}
	parts := strings.Split(c.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags builds the stored representation from a tag list.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// CaseResponse DTO — wire shape kept stable for existing stored data
type CaseResponse struct {
	ID                  string             `json:"id"`
	PatientID           string             `json:"patientId"`
	PatientName         string             `json:"patientName"`
	ImageURL            *string            `json:"imageUrl"`
	Description         string             `json:"description"`
	Timestamp           string             `json:"timestamp"`
	Status              string             `json:"status"`
	DoctorFeedback      *string            `json:"doctorFeedback"`
	DoctorName          *string            `json:"doctorName"`
	ReplyTimestamp      *string            `json:"replyTimestamp"`
	Messages            []*MessageResponse `json:"messages"`
	HasUnreadForDoctor  bool               `json:"hasUnreadForDoctor"`
	HasUnreadForPatient bool               `json:"hasUnreadForPatient"`
	Modality            *string            `json:"modality"`
	Tags                []string           `json:"tags"`
}

func (c *MedicalCase) ToResponse() *CaseResponse {
	resp := &CaseResponse{
		ID:                  c.ID,
		PatientID:           c.PatientID,
		PatientName:         c.PatientName,
		ImageURL:            c.ImageURL,
		Description:         c.Description,
		Timestamp:           c.CreatedAt.Format(timeLayout),
		Status:              c.Status,
		DoctorFeedback:      c.DoctorFeedback,
		DoctorName:          c.DoctorName,
		HasUnreadForDoctor:  c.HasUnreadForDoctor,
		HasUnreadForPatient: c.HasUnreadForPatient,
		Modality:            c.Modality,
		Tags:                c.TagList(),
		Messages:            make([]*MessageResponse, 0, len(c.Messages)),
	}

	if c.ReplyAt != nil {
		s := c.ReplyAt.Format(timeLayout)
		resp.ReplyTimestamp = &s
	}

	for i := range c.Messages {
		resp.Messages = append(resp.Messages, c.Messages[i].ToResponse())
	}

	return resp
}

// ============================================================
// Case Messages
// ============================================================

// CaseMessage represents the case_messages table. Seq preserves strict
// insertion order within a case; messages are immutable once created.
type CaseMessage struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID         string    `gorm:"uniqueIndex;size:36" json:"id"`
	CaseID     string    `gorm:"size:36;not null;index" json:"case_id"`
	SenderID   string    `gorm:"size:32;not null" json:"sender_id"`
	SenderName string    `gorm:"size:50;not null" json:"sender_name"`
	SenderRole string    `gorm:"size:10;not null" json:"sender_role"`
	Text       string    `gorm:"type:text" json:"text"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CaseMessage) TableName() string {
	return "case_messages"
}

// MessageResponse DTO
type MessageResponse struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	SenderRole string `json:"senderRole"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

func (m *CaseMessage) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: m.SenderRole,
		Text:       m.Text,
		Timestamp:  m.CreatedAt.Format(timeLayout),
	}
}

// ============================================================
// Analysis Archive
// ============================================================

// AnalysisResult archives a generated report for later review.
type AnalysisResult struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:32;index" json:"user_id"`
	ResultJSON string    `gorm:"type:longtext" json:"result_json"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&MedicalCase{},
		&CaseMessage{},
		&AnalysisResult{},
	)
}
