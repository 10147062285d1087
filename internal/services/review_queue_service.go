package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/repository"

	"github.com/google/uuid"
)

// reviewSLA is how long a reviewer has before a queued item is overdue.
const reviewSLA = 3 * 24 * time.Hour

// ReviewQueueService manages the manual review queue: enqueueing eligible
// assessments that could not be auto-decided, assignment, and listing for
// the reviewer UI.
type ReviewQueueService struct {
	reviewRepo *repository.ReviewQueueRepository
}

func NewReviewQueueService(reviewRepo *repository.ReviewQueueRepository) *ReviewQueueService {
	return &ReviewQueueService{reviewRepo: reviewRepo}
}

// reviewPriority maps the applicant's risk level to a queue priority.
// Riskier cases go to the front so reviewers see them first.
func reviewPriority(level models.RiskLevel) int {
	switch level {
	case models.RiskLevelVeryHigh:
		return 1
	case models.RiskLevelHigh:
		return 2
	}
	return 5
}

// Enqueue adds an assessment to the review queue. Re-enqueueing an
// assessment that already has an open item is a no-op returning the
// existing item.
func (s *ReviewQueueService) Enqueue(ctx context.Context, assessment *models.Assessment, reason string) (*models.ReviewQueueItem, error) {
	if existing, err := s.reviewRepo.GetByAssessmentID(ctx, assessment.ID); err == nil &&
		existing.Status != models.ReviewCompleted {
		return existing, nil
	}

	level := models.RiskLevelVeryHigh
	if assessment.RiskLevel != nil {
		level = *assessment.RiskLevel
	}

	now := time.Now()
	item := &models.ReviewQueueItem{
		ID:           uuid.New(),
		AssessmentID: assessment.ID,
		Priority:     reviewPriority(level),
		Reason:       reason,
		Status:       models.ReviewPending,
		SLADueAt:     now.Add(reviewSLA),
	}

	if err := s.reviewRepo.Create(item); err != nil {
		return nil, err
	}

	slog.Info("Assessment queued for manual review",
		"assessment_id", assessment.ID,
		"priority", item.Priority,
		"sla_due_at", item.SLADueAt)
	return item, nil
}

func (s *ReviewQueueService) ListPending(ctx context.Context, limit, offset int) ([]models.ReviewQueueItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.reviewRepo.ListPending(ctx, limit, offset)
}

func (s *ReviewQueueService) ListOverdue(ctx context.Context) ([]models.ReviewQueueItem, error) {
	return s.reviewRepo.ListOverdue(ctx)
}

func (s *ReviewQueueService) Assign(ctx context.Context, itemID uuid.UUID, reviewerID string) (*models.ReviewQueueItem, error) {
	if err := s.reviewRepo.Assign(ctx, itemID, reviewerID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, itemID)
}

func (s *ReviewQueueService) GetByAssessmentID(ctx context.Context, assessmentID uuid.UUID) (*models.ReviewQueueItem, error) {
	return s.reviewRepo.GetByAssessmentID(ctx, assessmentID)
}

// CompleteForAssessment closes the open review item when the reviewer's
// decision lands. Missing items are tolerated: a decision can arrive for an
// assessment that was never queued (e.g. made directly by an admin).
func (s *ReviewQueueService) CompleteForAssessment(ctx context.Context, assessmentID uuid.UUID, decision models.FinalDecision, reviewerID string) {
	item, err := s.reviewRepo.GetByAssessmentID(ctx, assessmentID)
	if err != nil {
		return
	}
	if item.Status == models.ReviewCompleted {
		return
	}
	if err := s.reviewRepo.Complete(ctx, item.ID, decision, reviewerID); err != nil {
		slog.Warn("Failed to close review item",
			"assessment_id", assessmentID,
			"item_id", item.ID,
			"error", err)
	}
}
