package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SchemeRepository struct {
	db *sqlx.DB
}

func NewSchemeRepository(db *sqlx.DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

func (r *SchemeRepository) Create(scheme *models.Scheme) error {
	if scheme.ID == uuid.Nil {
		scheme.ID = uuid.New()
	}
	scheme.CreatedAt = time.Now()
	scheme.UpdatedAt = time.Now()

	query := `
		INSERT INTO scheme (
			id, name, description, status,
			max_beneficiaries, current_beneficiaries, application_deadline,
			auto_approval_enabled, min_score_for_auto_approve, max_risk_for_auto_approve,
			waitlist_enabled, waitlist_capacity,
			created_at, updated_at
		) VALUES (
			:id, :name, :description, :status,
			:max_beneficiaries, :current_beneficiaries, :application_deadline,
			:auto_approval_enabled, :min_score_for_auto_approve, :max_risk_for_auto_approve,
			:waitlist_enabled, :waitlist_capacity,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, scheme)
	if err != nil {
		return fmt.Errorf("failed to create scheme: %w", err)
	}

	return nil
}

func (r *SchemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	var scheme models.Scheme
	query := `SELECT * FROM scheme WHERE id = $1`

	err := r.db.GetContext(ctx, &scheme, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("scheme %s", id)
		}
		return nil, fmt.Errorf("failed to get scheme: %w", err)
	}

	return &scheme, nil
}

func (r *SchemeRepository) GetAll(ctx context.Context) ([]models.Scheme, error) {
	var schemes []models.Scheme
	query := `SELECT * FROM scheme ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &schemes, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get schemes: %w", err)
	}

	return schemes, nil
}

func (r *SchemeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SchemeStatus) error {
	query := `UPDATE scheme SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update scheme status: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.NotFound("scheme %s", id))
}

func (r *SchemeRepository) Update(scheme *models.Scheme) error {
	scheme.UpdatedAt = time.Now()

	query := `
		UPDATE scheme SET
			name = :name, description = :description, status = :status,
			max_beneficiaries = :max_beneficiaries, application_deadline = :application_deadline,
			auto_approval_enabled = :auto_approval_enabled,
			min_score_for_auto_approve = :min_score_for_auto_approve,
			max_risk_for_auto_approve = :max_risk_for_auto_approve,
			waitlist_enabled = :waitlist_enabled, waitlist_capacity = :waitlist_capacity,
			updated_at = :updated_at
		WHERE id = :id`

	_, err := r.db.NamedExec(query, scheme)
	if err != nil {
		return fmt.Errorf("failed to update scheme: %w", err)
	}

	return nil
}

func (r *SchemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM scheme WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheme: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.NotFound("scheme %s", id))
}

// ============================================================================
// TRANSACTION SUPPORT
// ============================================================================

func (r *SchemeRepository) BeginTransaction() (*sqlx.Tx, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		slog.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetByIDForUpdateTx locks the scheme row for the rest of the transaction.
// Capacity decisions and waitlist position assignment read through this so
// concurrent admissions to the same scheme serialize.
func (r *SchemeRepository) GetByIDForUpdateTx(tx *sqlx.Tx, id uuid.UUID) (*models.Scheme, error) {
	var scheme models.Scheme
	query := `SELECT * FROM scheme WHERE id = $1 FOR UPDATE`

	err := tx.Get(&scheme, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("scheme %s", id)
		}
		return nil, fmt.Errorf("failed to lock scheme: %w", err)
	}

	return &scheme, nil
}

// IncrementBeneficiariesTx bumps the enrolled count inside the caller's
// transaction. The WHERE clause re-checks the capacity cap so a concurrent
// approval can never push the count past max_beneficiaries.
func (r *SchemeRepository) IncrementBeneficiariesTx(tx *sqlx.Tx, id uuid.UUID) error {
	query := `
		UPDATE scheme
		SET current_beneficiaries = current_beneficiaries + 1, updated_at = $1
		WHERE id = $2
		  AND (max_beneficiaries IS NULL OR current_beneficiaries < max_beneficiaries)`

	result, err := tx.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment beneficiaries: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.InvalidState("scheme %s is at capacity", id))
}
