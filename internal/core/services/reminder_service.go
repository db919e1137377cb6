package services

import (
	"context"
	"log"
	"time"

	"neurogen-backend/internal/adapters/persistence/repositories"
	"neurogen-backend/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// pendingDigestSchedule fires the morning digest at 08:30 local time.
const pendingDigestSchedule = "30 8 * * *"

// ReminderService runs the scheduled pending-case digest so the
// doctor side starts the day with a backlog summary.
type ReminderService struct {
	caseRepo repositories.CaseRepository
	userRepo repositories.UserRepository
	cron     *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(caseRepo repositories.CaseRepository, userRepo repositories.UserRepository) *ReminderService {
	return &ReminderService{
		caseRepo: caseRepo,
		userRepo: userRepo,
		cron:     cron.New(),
	}
}

// Start registers the digest job and launches the scheduler
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc(pendingDigestSchedule, s.runPendingDigest); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 ReminderService started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

// runPendingDigest counts cases still waiting for a diagnosis and
// logs the backlog per registered doctor.
func (s *ReminderService) runPendingDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := s.caseRepo.CountByStatus(ctx, string(domain.CaseStatusPending))
	if err != nil {
		log.Printf("❌ Pending digest query error: %v", err)
		return
	}
	if pending == 0 {
		return
	}

	doctors, err := s.userRepo.ListByRole(ctx, string(domain.RoleDoctor))
	if err != nil {
		log.Printf("❌ Pending digest doctor query error: %v", err)
		return
	}

	for _, d := range doctors {
		log.Printf("📋 Digest for %s (%s): %d case(s) awaiting diagnosis", d.Name, d.ID, pending)
	}
}
