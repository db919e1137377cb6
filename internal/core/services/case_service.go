package services

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"neurogen-backend/internal/adapters/persistence/models"
	"neurogen-backend/internal/adapters/persistence/repositories"
	"neurogen-backend/internal/adapters/storage"
	"neurogen-backend/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// caseLockStripes is the number of mutexes the per-case lock table is
// striped over.
const caseLockStripes = 64

// Actor identifies the authenticated caller of a case operation.
type Actor struct {
	ID   string
	Name string
	Role string
}

// IsPatient reports whether the actor is a patient
func (a Actor) IsPatient() bool {
	return a.Role == string(domain.RolePatient)
}

// IsDoctor reports whether the actor is a doctor
func (a Actor) IsDoctor() bool {
	return a.Role == string(domain.RoleDoctor)
}

// CaseService handles medical case lifecycle business logic. All
// mutations of a single case are serialized through a striped lock
// keyed by case ID, so concurrent messages, reads, and diagnoses
// interleave without losing updates.
type CaseService struct {
	caseRepo repositories.CaseRepository
	blobs    storage.BlobStore
	locks    [caseLockStripes]sync.Mutex
}

// NewCaseService creates a new case service
func NewCaseService(caseRepo repositories.CaseRepository, blobs storage.BlobStore) *CaseService {
	return &CaseService{
		caseRepo: caseRepo,
		blobs:    blobs,
	}
}

// lock returns the stripe guarding the given case ID
func (s *CaseService) lock(caseID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(caseID))
	return &s.locks[h.Sum32()%caseLockStripes]
}

// CreateCaseInput represents case creation input. Image is optional.
type CreateCaseInput struct {
	Description   string
	Modality      string
	Tags          string // comma-separated
	ImageData     []byte
	ImageFilename string
}

// CreateCase opens a new pending case owned by the acting patient.
// The owner is always the caller; a client cannot open a case on
// behalf of another patient.
func (s *CaseService) CreateCase(ctx context.Context, actor Actor, input *CreateCaseInput) (*models.CaseResponse, error) {
	// 1. Only patients open cases
	if !actor.IsPatient() {
		return nil, domain.ErrForbidden
	}

	// 2. Validate input
	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.ErrInvalidInput
	}

	caseID := uuid.New().String()

	// 3. Store the image if one was uploaded. A failed upload does
	// not block case creation; the case is simply created without an
	// image URL.
	var imageURL *string
	if len(input.ImageData) > 0 && input.ImageFilename != "" {
		filename := caseID + "-" + uuid.New().String() + filepath.Ext(input.ImageFilename)
		url, err := s.blobs.Put(filename, input.ImageData)
		if err != nil {
			log.Printf("⚠️ Image upload failed for case %s: %v", caseID, err)
		} else {
			imageURL = &url
		}
	}

	// 4. Create the case in pending state, flagged unread for the
	// doctor side
	var modality *string
	if input.Modality != "" {
		modality = &input.Modality
	}

	medCase := &models.MedicalCase{
		ID:                  caseID,
		PatientID:           actor.ID,
		PatientName:         actor.Name,
		ImageURL:            imageURL,
		Description:         input.Description,
		Status:              string(domain.CaseStatusPending),
		HasUnreadForDoctor:  true,
		HasUnreadForPatient: false,
		Modality:            modality,
		Tags:                models.JoinTags(strings.Split(input.Tags, ",")),
	}

	if err := s.caseRepo.Create(ctx, medCase); err != nil {
		return nil, err
	}

	log.Printf("✅ Case created: %s (patient: %s)", caseID, actor.ID)

	return medCase.ToResponse(), nil
}

// ListCases lists cases visible to the actor, newest first. Patients
// see only their own cases; doctors see every case.
func (s *CaseService) ListCases(ctx context.Context, actor Actor) ([]*models.CaseResponse, error) {
	var (
		cases []*models.MedicalCase
		err   error
	)

	if actor.IsPatient() {
		cases, err = s.caseRepo.ListByPatient(ctx, actor.ID)
	} else {
		cases, err = s.caseRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]*models.CaseResponse, 0, len(cases))
	for _, c := range cases {
		responses = append(responses, c.ToResponse())
	}
	return responses, nil
}

// GetCase returns a single case with its message thread. Viewing a
// case clears the unread flag for the viewer's role.
func (s *CaseService) GetCase(ctx context.Context, actor Actor, caseID string) (*models.CaseResponse, error) {
	mu := s.lock(caseID)
	mu.Lock()
	defer mu.Unlock()

	medCase, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	// Patients only see their own cases
	if actor.IsPatient() && medCase.PatientID != actor.ID {
		return nil, domain.ErrForbidden
	}

	// Viewing implies reading
	if actor.IsDoctor() && medCase.HasUnreadForDoctor {
		medCase.HasUnreadForDoctor = false
		if err := s.caseRepo.Update(ctx, medCase); err != nil {
			return nil, err
		}
	} else if actor.IsPatient() && medCase.HasUnreadForPatient {
		medCase.HasUnreadForPatient = false
		if err := s.caseRepo.Update(ctx, medCase); err != nil {
			return nil, err
		}
	}

	return medCase.ToResponse(), nil
}

// AddMessage appends a message to the case thread and raises the
// unread flag of the opposite role. The sender's own flag is left
// untouched so an earlier notification for the sender survives.
func (s *CaseService) AddMessage(ctx context.Context, actor Actor, caseID, text string) (*models.MessageResponse, error) {
	// 1. Validate input
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}

	mu := s.lock(caseID)
	mu.Lock()
	defer mu.Unlock()

	// 2. Verify the case exists
	medCase, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	// 3. Patients only write into their own cases
	if actor.IsPatient() && medCase.PatientID != actor.ID {
		return nil, domain.ErrForbidden
	}

	// 4. Append the message
	msg := &models.CaseMessage{
		ID:         uuid.New().String(),
		CaseID:     caseID,
		SenderID:   actor.ID,
		SenderName: actor.Name,
		SenderRole: actor.Role,
		Text:       text,
	}
	if err := s.caseRepo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	// 5. A new message is unread for the other side only
	if actor.IsPatient() {
		medCase.HasUnreadForDoctor = true
	} else {
		medCase.HasUnreadForPatient = true
	}
	if err := s.caseRepo.Update(ctx, medCase); err != nil {
		return nil, err
	}

	return msg.ToResponse(), nil
}

// SubmitDiagnosis records the doctor's conclusion, completes the
// case, and notifies the patient side via the unread flag. A second
// diagnosis overwrites the first; the case stays completed.
func (s *CaseService) SubmitDiagnosis(ctx context.Context, actor Actor, caseID, feedback string) (*models.CaseResponse, error) {
	// 1. Only doctors diagnose
	if !actor.IsDoctor() {
		return nil, domain.ErrForbidden
	}

	// 2. Validate input
	if strings.TrimSpace(feedback) == "" {
		return nil, domain.ErrInvalidInput
	}

	mu := s.lock(caseID)
	mu.Lock()
	defer mu.Unlock()

	// 3. Load the case
	medCase, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	// 4. Complete the case with the diagnosis fields set together
	now := time.Now()
	doctorName := actor.Name

	medCase.Status = string(domain.CaseStatusCompleted)
	medCase.DoctorFeedback = &feedback
	medCase.DoctorName = &doctorName
	medCase.ReplyAt = &now
	medCase.HasUnreadForPatient = true

	if err := s.caseRepo.Update(ctx, medCase); err != nil {
		return nil, err
	}

	log.Printf("✅ Diagnosis submitted for case %s by %s", caseID, actor.ID)

	return medCase.ToResponse(), nil
}

// MarkRead clears the unread flag for the actor's role without
// returning the case body.
func (s *CaseService) MarkRead(ctx context.Context, actor Actor, caseID string) error {
	mu := s.lock(caseID)
	mu.Lock()
	defer mu.Unlock()

	medCase, err := s.getCase(ctx, caseID)
	if err != nil {
		return err
	}

	if actor.IsPatient() && medCase.PatientID != actor.ID {
		return domain.ErrForbidden
	}

	if actor.IsDoctor() {
		medCase.HasUnreadForDoctor = false
	} else {
		medCase.HasUnreadForPatient = false
	}

	return s.caseRepo.Update(ctx, medCase)
}

// getCase loads a case, translating the missing-row error
func (s *CaseService) getCase(ctx context.Context, caseID string) (*models.MedicalCase, error) {
	medCase, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	return medCase, nil
}
