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

type RuleRepository struct {
	db *sqlx.DB
}

func NewRuleRepository(db *sqlx.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) CreateRule(rule *models.Rule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	query := `
		INSERT INTO eligibility_rule (
			id, scheme_id, rule_group_id, name,
			field_type, field_name, field_path,
			operator, value, value_type,
			is_mandatory, is_exclusion, weight, priority, is_active,
			created_at, updated_at
		) VALUES (
			:id, :scheme_id, :rule_group_id, :name,
			:field_type, :field_name, :field_path,
			:operator, :value, :value_type,
			:is_mandatory, :is_exclusion, :weight, :priority, :is_active,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, rule)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func (r *RuleRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*models.Rule, error) {
	var rule models.Rule
	query := `SELECT * FROM eligibility_rule WHERE id = $1`

	err := r.db.GetContext(ctx, &rule, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("rule %s", id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return &rule, nil
}

// GetUngroupedRulesByScheme returns the scheme's active rules that belong to
// no group, in priority order. These drive the engine's flat fallback mode.
func (r *RuleRepository) GetUngroupedRulesByScheme(ctx context.Context, schemeID uuid.UUID) ([]models.Rule, error) {
	var rules []models.Rule
	query := `
		SELECT * FROM eligibility_rule
		WHERE scheme_id = $1 AND rule_group_id IS NULL AND is_active = true
		ORDER BY priority ASC, created_at ASC`

	err := r.db.SelectContext(ctx, &rules, query, schemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rules for scheme: %w", err)
	}

	return rules, nil
}

// GetGroupsByScheme returns the scheme's active groups with their member
// rules attached.
func (r *RuleRepository) GetGroupsByScheme(ctx context.Context, schemeID uuid.UUID) ([]models.RuleGroup, error) {
	var groups []models.RuleGroup
	groupQuery := `
		SELECT * FROM rule_group
		WHERE scheme_id = $1 AND is_active = true
		ORDER BY priority ASC, created_at ASC`

	err := r.db.SelectContext(ctx, &groups, groupQuery, schemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule groups for scheme: %w", err)
	}

	if len(groups) == 0 {
		return groups, nil
	}

	var rules []models.Rule
	ruleQuery := `
		SELECT * FROM eligibility_rule
		WHERE scheme_id = $1 AND rule_group_id IS NOT NULL AND is_active = true
		ORDER BY priority ASC, created_at ASC`

	err = r.db.SelectContext(ctx, &rules, ruleQuery, schemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get grouped rules for scheme: %w", err)
	}

	byGroup := make(map[uuid.UUID][]models.Rule, len(groups))
	for _, rule := range rules {
		if rule.RuleGroupID != nil {
			byGroup[*rule.RuleGroupID] = append(byGroup[*rule.RuleGroupID], rule)
		}
	}
	for i := range groups {
		groups[i].Rules = byGroup[groups[i].ID]
	}

	return groups, nil
}

func (r *RuleRepository) CreateGroup(group *models.RuleGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	query := `
		INSERT INTO rule_group (
			id, scheme_id, name, logic_operator, weight,
			is_mandatory, priority, is_active, created_at, updated_at
		) VALUES (
			:id, :scheme_id, :name, :logic_operator, :weight,
			:is_mandatory, :priority, :is_active, :created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, group)
	if err != nil {
		return fmt.Errorf("failed to create rule group: %w", err)
	}

	return nil
}

func (r *RuleRepository) GetGroupByID(ctx context.Context, id uuid.UUID) (*models.RuleGroup, error) {
	var group models.RuleGroup
	query := `SELECT * FROM rule_group WHERE id = $1`

	err := r.db.GetContext(ctx, &group, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NotFound("rule group %s", id)
		}
		return nil, fmt.Errorf("failed to get rule group: %w", err)
	}

	return &group, nil
}

// DeactivateRule retires a rule without deleting it, preserving history for
// completed assessments that referenced it.
func (r *RuleRepository) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE eligibility_rule SET is_active = false, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}

	return utils.RowsAffectedOr(result, errs.NotFound("rule %s", id))
}

// RuleReferencedByCompletedAssessment reports whether any finished
// assessment recorded a result for this rule. Such rules are immutable.
func (r *RuleRepository) RuleReferencedByCompletedAssessment(ctx context.Context, ruleID uuid.UUID) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM assessment
		WHERE status IN ('eligible', 'not_eligible', 'approved', 'rejected', 'waitlisted')
		  AND rule_results @> $1`

	ref := fmt.Sprintf(`[{"rule_id": %q}]`, ruleID.String())
	err := r.db.GetContext(ctx, &count, query, ref)
	if err != nil {
		return false, fmt.Errorf("failed to check rule references: %w", err)
	}

	return count > 0, nil
}
