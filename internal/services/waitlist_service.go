package services

import (
	"context"
	"log/slog"

	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WaitlistService manages the per-scheme ordered waitlist. Position
// assignment happens inside the orchestrator's transaction while the scheme
// row is locked, so positions are strictly monotonic per scheme.
type WaitlistService struct {
	waitlistRepo *repository.WaitlistRepository
	schemeRepo   *repository.SchemeRepository
}

func NewWaitlistService(waitlistRepo *repository.WaitlistRepository, schemeRepo *repository.SchemeRepository) *WaitlistService {
	return &WaitlistService{
		waitlistRepo: waitlistRepo,
		schemeRepo:   schemeRepo,
	}
}

// EnqueueTx places an assessment on the scheme's waitlist inside the
// caller's transaction. The caller must already hold the scheme row lock.
// Position is the waiting count plus one and is recorded permanently as
// original_position; departures never renumber the remaining entries.
func (s *WaitlistService) EnqueueTx(tx *sqlx.Tx, scheme *models.Scheme, assessment *models.Assessment) (*models.WaitlistEntry, error) {
	if !scheme.WaitlistEnabled {
		return nil, errs.InvalidState("scheme %s has no waitlist", scheme.ID)
	}

	waiting, err := s.waitlistRepo.CountWaitingTx(tx, scheme.ID)
	if err != nil {
		return nil, err
	}
	if scheme.WaitlistCapacity != nil && waiting >= *scheme.WaitlistCapacity {
		return nil, errs.InvalidState("waitlist for scheme %s is full", scheme.ID)
	}

	position := waiting + 1
	entry := &models.WaitlistEntry{
		ID:               uuid.New(),
		SchemeID:         scheme.ID,
		FarmerID:         assessment.FarmerID,
		AssessmentID:     assessment.ID,
		Position:         position,
		OriginalPosition: position,
		Status:           models.WaitlistWaiting,
	}
	if assessment.EligibilityScore != nil {
		entry.EligibilityScore = *assessment.EligibilityScore
	}
	if assessment.RiskScore != nil {
		entry.RiskScore = *assessment.RiskScore
	}

	if err := s.waitlistRepo.CreateTx(tx, entry); err != nil {
		return nil, err
	}

	slog.Info("Farmer waitlisted",
		"scheme_id", scheme.ID,
		"farmer_id", assessment.FarmerID,
		"position", position)
	return entry, nil
}

func (s *WaitlistService) ListByScheme(ctx context.Context, schemeID uuid.UUID, status *models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	if _, err := s.schemeRepo.GetByID(ctx, schemeID); err != nil {
		return nil, err
	}
	return s.waitlistRepo.ListByScheme(ctx, schemeID, status)
}

func (s *WaitlistService) GetByAssessmentID(ctx context.Context, assessmentID uuid.UUID) (*models.WaitlistEntry, error) {
	return s.waitlistRepo.GetByAssessmentID(ctx, assessmentID)
}

// OfferNext moves the head of the waitlist to offered when a beneficiary
// slot frees up. The entry keeps its position; acceptance goes through the
// manual decision flow.
func (s *WaitlistService) OfferNext(ctx context.Context, schemeID uuid.UUID) (*models.WaitlistEntry, error) {
	tx, err := s.schemeRepo.BeginTransaction()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	scheme, err := s.schemeRepo.GetByIDForUpdateTx(tx, schemeID)
	if err != nil {
		return nil, err
	}
	if scheme.AtCapacity() {
		return nil, errs.InvalidState("scheme %s is still at capacity", schemeID)
	}

	entry, err := s.waitlistRepo.NextWaitingTx(tx, schemeID)
	if err != nil {
		return nil, err
	}

	if err := s.waitlistRepo.UpdateStatusTx(tx, entry.ID, models.WaitlistOffered); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	entry.Status = models.WaitlistOffered
	slog.Info("Waitlist slot offered",
		"scheme_id", schemeID,
		"farmer_id", entry.FarmerID,
		"position", entry.Position)
	return entry, nil
}
