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

type AssessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// assessmentRow carries the jsonb columns alongside the model for scanning.
type assessmentRow struct {
	models.Assessment
	RuleResultsJSON utils.JSONB `db:"rule_results"`
}

func (row *assessmentRow) toModel() (*models.Assessment, error) {
	assessment := row.Assessment
	if err := utils.UnmarshalJSONB(row.RuleResultsJSON, &assessment.RuleResults); err != nil {
		return nil, fmt.Errorf("failed to decode rule results: %w", err)
	}
	return &assessment, nil
}

func (r *AssessmentRepository) Create(assessment *models.Assessment) error {
	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	assessment.CreatedAt = time.Now()
	assessment.UpdatedAt = time.Now()

	query := `
		INSERT INTO assessment (
			id, farmer_id, scheme_id, farm_id, status,
			rules_passed, rules_failed, mandatory_passed,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := r.db.Exec(query,
		assessment.ID, assessment.FarmerID, assessment.SchemeID, assessment.FarmID,
		assessment.Status, assessment.RulesPassed, assessment.RulesFailed,
		assessment.MandatoryPassed, assessment.CreatedAt, assessment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	return nil
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	var row assessmentRow
	query := `SELECT * FROM assessment WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("assessment %s", id)
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return row.toModel()
}

// GetActiveByFarmerAndScheme finds a reusable assessment for the pair: one
// that is not terminal, or a terminal one still inside its validity window.
// The orchestrator returns this instead of starting a duplicate run.
func (r *AssessmentRepository) GetActiveByFarmerAndScheme(ctx context.Context, farmerID string, schemeID uuid.UUID) (*models.Assessment, error) {
	var row assessmentRow
	query := `
		SELECT * FROM assessment
		WHERE farmer_id = $1 AND scheme_id = $2
		  AND (
			status IN ('pending', 'in_progress', 'eligible', 'waitlisted')
			OR (valid_until IS NOT NULL AND valid_until > $3)
		  )
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &row, query, farmerID, schemeID, time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("no active assessment for farmer %s on scheme %s", farmerID, schemeID)
		}
		return nil, fmt.Errorf("failed to get active assessment: %w", err)
	}

	return row.toModel()
}

func (r *AssessmentRepository) Update(assessment *models.Assessment) error {
	assessment.UpdatedAt = time.Now()

	ruleResults, err := utils.MarshalJSONB(assessment.RuleResults)
	if err != nil {
		return err
	}

	query := `
		UPDATE assessment SET
			status = $1,
			eligibility_score = $2, risk_score = $3, risk_level = $4,
			rules_passed = $5, rules_failed = $6, mandatory_passed = $7,
			rule_results = $8,
			workflow_decision = $9, final_decision = $10,
			decided_by = $11, decided_at = $12,
			waitlist_position = $13, credit_provenance = $14, note = $15,
			valid_from = $16, valid_until = $17,
			updated_at = $18
		WHERE id = $19`

	result, err := r.db.Exec(query,
		assessment.Status,
		assessment.EligibilityScore, assessment.RiskScore, assessment.RiskLevel,
		assessment.RulesPassed, assessment.RulesFailed, assessment.MandatoryPassed,
		ruleResults,
		assessment.WorkflowDecision, assessment.FinalDecision,
		assessment.DecidedBy, assessment.DecidedAt,
		assessment.WaitlistPosition, assessment.CreditProvenance, assessment.Note,
		assessment.ValidFrom, assessment.ValidUntil,
		assessment.UpdatedAt, assessment.ID)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.NotFound("assessment %s", assessment.ID))
}

// UpdateTx is Update inside the caller's transaction. The orchestrator uses
// it so the terminal status, the beneficiary count and the waitlist entry
// commit or roll back together.
func (r *AssessmentRepository) UpdateTx(tx *sqlx.Tx, assessment *models.Assessment) error {
	assessment.UpdatedAt = time.Now()

	ruleResults, err := utils.MarshalJSONB(assessment.RuleResults)
	if err != nil {
		return err
	}

	query := `
		UPDATE assessment SET
			status = $1,
			eligibility_score = $2, risk_score = $3, risk_level = $4,
			rules_passed = $5, rules_failed = $6, mandatory_passed = $7,
			rule_results = $8,
			workflow_decision = $9, final_decision = $10,
			decided_by = $11, decided_at = $12,
			waitlist_position = $13, credit_provenance = $14, note = $15,
			valid_from = $16, valid_until = $17,
			updated_at = $18
		WHERE id = $19`

	result, err := tx.Exec(query,
		assessment.Status,
		assessment.EligibilityScore, assessment.RiskScore, assessment.RiskLevel,
		assessment.RulesPassed, assessment.RulesFailed, assessment.MandatoryPassed,
		ruleResults,
		assessment.WorkflowDecision, assessment.FinalDecision,
		assessment.DecidedBy, assessment.DecidedAt,
		assessment.WaitlistPosition, assessment.CreditProvenance, assessment.Note,
		assessment.ValidFrom, assessment.ValidUntil,
		assessment.UpdatedAt, assessment.ID)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.NotFound("assessment %s", assessment.ID))
}

func (r *AssessmentRepository) ListByScheme(ctx context.Context, schemeID uuid.UUID, limit, offset int) ([]models.Assessment, error) {
	var rows []assessmentRow
	query := `
		SELECT * FROM assessment
		WHERE scheme_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &rows, query, schemeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	assessments := make([]models.Assessment, 0, len(rows))
	for i := range rows {
		assessment, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, *assessment)
	}

	return assessments, nil
}

func (r *AssessmentRepository) ListByFarmer(ctx context.Context, farmerID string) ([]models.Assessment, error) {
	var rows []assessmentRow
	query := `
		SELECT * FROM assessment
		WHERE farmer_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &rows, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments for farmer: %w", err)
	}

	assessments := make([]models.Assessment, 0, len(rows))
	for i := range rows {
		assessment, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, *assessment)
	}

	return assessments, nil
}

func (r *AssessmentRepository) CountCompletedByScheme(ctx context.Context, schemeID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM assessment
		WHERE scheme_id = $1
		  AND status IN ('eligible', 'not_eligible', 'approved', 'rejected', 'waitlisted')`

	err := r.db.GetContext(ctx, &count, query, schemeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed assessments: %w", err)
	}

	return count, nil
}

// ============================================================================
// RISK ASSESSMENT PERSISTENCE
// ============================================================================

type riskAssessmentRow struct {
	models.RiskAssessment
	FactorsJSON         utils.JSONB `db:"factors"`
	FraudIndicatorsJSON utils.JSONB `db:"fraud_indicators"`
	FlagsJSON           utils.JSONB `db:"flags"`
	RecommendationsJSON utils.JSONB `db:"recommendations"`
}

func (r *AssessmentRepository) CreateRiskAssessment(risk *models.RiskAssessment) error {
	if risk.ID == uuid.Nil {
		risk.ID = uuid.New()
	}
	risk.CreatedAt = time.Now()

	factors, err := utils.MarshalJSONB(risk.Factors)
	if err != nil {
		return err
	}
	fraudIndicators, err := utils.MarshalJSONB(risk.FraudIndicators)
	if err != nil {
		return err
	}
	flags, err := utils.MarshalJSONB(risk.Flags)
	if err != nil {
		return err
	}
	recommendations, err := utils.MarshalJSONB(risk.Recommendations)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO risk_assessment (
			id, assessment_id, total_score, level, confidence,
			credit_score, performance_score, external_score, fraud_score,
			factors, fraud_indicators, flags, recommendations,
			valid_from, valid_until, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)`

	_, err = r.db.Exec(query,
		risk.ID, risk.AssessmentID, risk.TotalScore, risk.Level, risk.Confidence,
		risk.CreditScore, risk.PerformanceScore, risk.ExternalScore, risk.FraudScore,
		factors, fraudIndicators, flags, recommendations,
		risk.ValidFrom, risk.ValidUntil, risk.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create risk assessment: %w", err)
	}

	return nil
}

func (r *AssessmentRepository) GetRiskAssessment(ctx context.Context, assessmentID uuid.UUID) (*models.RiskAssessment, error) {
	var row riskAssessmentRow
	query := `
		SELECT * FROM risk_assessment
		WHERE assessment_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &row, query, assessmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("risk assessment for %s", assessmentID)
		}
		return nil, fmt.Errorf("failed to get risk assessment: %w", err)
	}

	risk := row.RiskAssessment
	if err := utils.UnmarshalJSONB(row.FactorsJSON, &risk.Factors); err != nil {
		return nil, fmt.Errorf("failed to decode risk factors: %w", err)
	}
	if err := utils.UnmarshalJSONB(row.FraudIndicatorsJSON, &risk.FraudIndicators); err != nil {
		return nil, fmt.Errorf("failed to decode fraud indicators: %w", err)
	}
	if err := utils.UnmarshalJSONB(row.FlagsJSON, &risk.Flags); err != nil {
		return nil, fmt.Errorf("failed to decode risk flags: %w", err)
	}
	if err := utils.UnmarshalJSONB(row.RecommendationsJSON, &risk.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}

	return &risk, nil
}
