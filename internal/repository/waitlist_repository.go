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

type WaitlistRepository struct {
	db *sqlx.DB
}

func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// CountWaitingTx counts entries still in the waiting state inside the
// caller's transaction. Callers must hold the scheme row lock first so the
// count cannot race a concurrent insert for the same scheme.
func (r *WaitlistRepository) CountWaitingTx(tx *sqlx.Tx, schemeID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM waitlist_entry WHERE scheme_id = $1 AND status = 'waiting'`

	err := tx.Get(&count, query, schemeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}

	return count, nil
}

func (r *WaitlistRepository) CreateTx(tx *sqlx.Tx, entry *models.WaitlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	query := `
		INSERT INTO waitlist_entry (
			id, scheme_id, farmer_id, assessment_id,
			position, original_position,
			eligibility_score, risk_score, status,
			created_at, updated_at
		) VALUES (
			:id, :scheme_id, :farmer_id, :assessment_id,
			:position, :original_position,
			:eligibility_score, :risk_score, :status,
			:created_at, :updated_at
		)`

	_, err := tx.NamedExec(query, entry)
	if err != nil {
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	return nil
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	query := `SELECT * FROM waitlist_entry WHERE id = $1`

	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("waitlist entry %s", id)
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	return &entry, nil
}

func (r *WaitlistRepository) GetByAssessmentID(ctx context.Context, assessmentID uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	query := `SELECT * FROM waitlist_entry WHERE assessment_id = $1`

	err := r.db.GetContext(ctx, &entry, query, assessmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("waitlist entry for assessment %s", assessmentID)
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	return &entry, nil
}

// ListByScheme returns the scheme's waitlist ordered by position. Positions
// keep gaps where earlier entries were promoted or expired.
func (r *WaitlistRepository) ListByScheme(ctx context.Context, schemeID uuid.UUID, status *models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry

	if status != nil {
		query := `
			SELECT * FROM waitlist_entry
			WHERE scheme_id = $1 AND status = $2
			ORDER BY position ASC`
		if err := r.db.SelectContext(ctx, &entries, query, schemeID, *status); err != nil {
			return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
		}
		return entries, nil
	}

	query := `
		SELECT * FROM waitlist_entry
		WHERE scheme_id = $1
		ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &entries, query, schemeID); err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}

	return entries, nil
}

// NextWaitingTx returns the lowest-position waiting entry for promotion,
// locked for the rest of the transaction.
func (r *WaitlistRepository) NextWaitingTx(tx *sqlx.Tx, schemeID uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	query := `
		SELECT * FROM waitlist_entry
		WHERE scheme_id = $1 AND status = 'waiting'
		ORDER BY position ASC
		LIMIT 1
		FOR UPDATE`

	err := tx.Get(&entry, query, schemeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("no waiting entries for scheme %s", schemeID)
		}
		return nil, fmt.Errorf("failed to get next waitlist entry: %w", err)
	}

	return &entry, nil
}

func (r *WaitlistRepository) UpdateStatusTx(tx *sqlx.Tx, id uuid.UUID, status models.WaitlistStatus) error {
	query := `UPDATE waitlist_entry SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update waitlist entry status: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.NotFound("waitlist entry %s", id))
}
