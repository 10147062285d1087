package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReviewQueueRepository struct {
	db *sqlx.DB
}

func NewReviewQueueRepository(db *sqlx.DB) *ReviewQueueRepository {
	return &ReviewQueueRepository{db: db}
}

func (r *ReviewQueueRepository) Create(item *models.ReviewQueueItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	query := `
		INSERT INTO review_queue_item (
			id, assessment_id, priority, reason, status,
			sla_due_at, created_at, updated_at
		) VALUES (
			:id, :assessment_id, :priority, :reason, :status,
			:sla_due_at, :created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, item)
	if err != nil {
		return fmt.Errorf("failed to create review queue item: %w", err)
	}

	return nil
}

func (r *ReviewQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewQueueItem, error) {
	var item models.ReviewQueueItem
	query := `SELECT * FROM review_queue_item WHERE id = $1`

	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("review queue item %s", id)
		}
		return nil, fmt.Errorf("failed to get review queue item: %w", err)
	}

	return &item, nil
}

func (r *ReviewQueueRepository) GetByAssessmentID(ctx context.Context, assessmentID uuid.UUID) (*models.ReviewQueueItem, error) {
	var item models.ReviewQueueItem
	query := `
		SELECT * FROM review_queue_item
		WHERE assessment_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &item, query, assessmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("review queue item for assessment %s", assessmentID)
		}
		return nil, fmt.Errorf("failed to get review queue item: %w", err)
	}

	return &item, nil
}

// ListPending returns open reviews ordered most-urgent first, ties broken by
// SLA deadline.
func (r *ReviewQueueRepository) ListPending(ctx context.Context, limit, offset int) ([]models.ReviewQueueItem, error) {
	var items []models.ReviewQueueItem
	query := `
		SELECT * FROM review_queue_item
		WHERE status IN ('pending', 'assigned', 'in_progress')
		ORDER BY priority ASC, sla_due_at ASC
		LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &items, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}

	return items, nil
}

// ListOverdue returns open reviews whose SLA deadline has passed.
func (r *ReviewQueueRepository) ListOverdue(ctx context.Context) ([]models.ReviewQueueItem, error) {
	var items []models.ReviewQueueItem
	query := `
		SELECT * FROM review_queue_item
		WHERE status IN ('pending', 'assigned', 'in_progress')
		  AND sla_due_at < $1
		ORDER BY sla_due_at ASC`

	err := r.db.SelectContext(ctx, &items, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue reviews: %w", err)
	}

	return items, nil
}

func (r *ReviewQueueRepository) Assign(ctx context.Context, id uuid.UUID, reviewerID string) error {
	query := `
		UPDATE review_queue_item
		SET status = 'assigned', assigned_to = $1, assigned_at = $2, updated_at = $2
		WHERE id = $3 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, reviewerID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to assign review: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.InvalidState("review queue item %s is not pending", id))
}

func (r *ReviewQueueRepository) Complete(ctx context.Context, id uuid.UUID, decision models.FinalDecision, reviewerID string) error {
	now := time.Now()
	query := `
		UPDATE review_queue_item
		SET status = 'completed', decision = $1, decided_by = $2, decided_at = $3, updated_at = $3
		WHERE id = $4 AND status != 'completed'`

	result, err := r.db.ExecContext(ctx, query, decision, reviewerID, now, id)
	if err != nil {
		return fmt.Errorf("failed to complete review: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.InvalidState("review queue item %s is already completed", id))
}
