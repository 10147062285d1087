package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jajuok/agripro-sub000/internal/errs"
	"github.com/jajuok/agripro-sub000/internal/models"
	"github.com/jajuok/agripro-sub000/internal/repository"

	"github.com/google/uuid"
)

// Scheme lifecycle transitions. A scheme can only move along these edges;
// archived is final.
var schemeTransitions = map[models.SchemeStatus][]models.SchemeStatus{
	models.SchemeDraft:     {models.SchemeActive, models.SchemeArchived},
	models.SchemeActive:    {models.SchemeSuspended, models.SchemeClosed},
	models.SchemeSuspended: {models.SchemeActive, models.SchemeClosed},
	models.SchemeClosed:    {models.SchemeArchived},
}

// SchemeService owns scheme and rule administration: lifecycle transitions,
// rule configuration and the immutability guard for rules already used by
// completed assessments.
type SchemeService struct {
	schemeRepo *repository.SchemeRepository
	ruleRepo   *repository.RuleRepository
}

func NewSchemeService(schemeRepo *repository.SchemeRepository, ruleRepo *repository.RuleRepository) *SchemeService {
	return &SchemeService{
		schemeRepo: schemeRepo,
		ruleRepo:   ruleRepo,
	}
}

func (s *SchemeService) CreateScheme(ctx context.Context, req *models.CreateSchemeRequest) (*models.Scheme, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errs.Validation("scheme name is required")
	}
	if req.MaxBeneficiaries != nil && *req.MaxBeneficiaries <= 0 {
		return nil, errs.Validation("max_beneficiaries must be positive")
	}

	scheme := &models.Scheme{
		ID:                  uuid.New(),
		Name:                req.Name,
		Description:         req.Description,
		Status:              models.SchemeDraft,
		MaxBeneficiaries:    req.MaxBeneficiaries,
		ApplicationDeadline: req.ApplicationDeadline,
		AutoApprovalEnabled: req.AutoApprovalEnabled,
		WaitlistEnabled:     req.WaitlistEnabled,
		WaitlistCapacity:    req.WaitlistCapacity,

		// Conservative auto-approval defaults: require a strong rule score
		// and at most medium risk unless the request says otherwise.
		MinScoreForAutoApprove: 70,
		MaxRiskForAutoApprove:  models.RiskLevelMedium,
	}
	if req.MinScoreForAutoApprove != nil {
		scheme.MinScoreForAutoApprove = *req.MinScoreForAutoApprove
	}
	if req.MaxRiskForAutoApprove != nil {
		scheme.MaxRiskForAutoApprove = *req.MaxRiskForAutoApprove
	}

	if err := s.schemeRepo.Create(scheme); err != nil {
		return nil, err
	}

	slog.Info("Scheme created", "scheme_id", scheme.ID, "name", scheme.Name)
	return scheme, nil
}

func (s *SchemeService) GetScheme(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	return s.schemeRepo.GetByID(ctx, id)
}

func (s *SchemeService) ListSchemes(ctx context.Context) ([]models.Scheme, error) {
	return s.schemeRepo.GetAll(ctx)
}

// UpdateSchemeStatus moves a scheme along the lifecycle graph. Invalid edges
// are rejected as invalid state, not validation, since the request itself is
// well formed.
func (s *SchemeService) UpdateSchemeStatus(ctx context.Context, id uuid.UUID, target models.SchemeStatus) (*models.Scheme, error) {
	scheme, err := s.schemeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(scheme.Status, target) {
		return nil, errs.InvalidState("scheme cannot move from %s to %s", scheme.Status, target)
	}

	if err := s.schemeRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	slog.Info("Scheme status updated", "scheme_id", id, "from", scheme.Status, "to", target)
	scheme.Status = target
	return scheme, nil
}

// DeleteScheme removes a scheme. Only drafts can be deleted; anything that
// has been activated is retired through the lifecycle instead so history
// survives.
func (s *SchemeService) DeleteScheme(ctx context.Context, id uuid.UUID) error {
	scheme, err := s.schemeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if scheme.Status != models.SchemeDraft {
		return errs.InvalidState("only draft schemes can be deleted, scheme is %s", scheme.Status)
	}

	return s.schemeRepo.Delete(ctx, id)
}

// ============================================================================
// RULE ADMINISTRATION
// ============================================================================

func (s *SchemeService) CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.Rule, error) {
	if err := validateRuleRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.schemeRepo.GetByID(ctx, req.SchemeID); err != nil {
		return nil, err
	}
	if req.RuleGroupID != nil {
		group, err := s.ruleRepo.GetGroupByID(ctx, *req.RuleGroupID)
		if err != nil {
			return nil, err
		}
		if group.SchemeID != req.SchemeID {
			return nil, errs.Validation("rule group %s belongs to a different scheme", group.ID)
		}
	}

	rule := &models.Rule{
		ID:          uuid.New(),
		SchemeID:    req.SchemeID,
		RuleGroupID: req.RuleGroupID,
		Name:        req.Name,
		FieldType:   req.FieldType,
		FieldName:   req.FieldName,
		FieldPath:   req.FieldPath,
		Operator:    req.Operator,
		Value:       req.Value,
		ValueType:   req.ValueType,
		IsMandatory: req.IsMandatory,
		IsExclusion: req.IsExclusion,
		Weight:      1,
		Priority:    req.Priority,
		IsActive:    true,
	}
	if req.Weight != nil {
		rule.Weight = *req.Weight
	}

	// Surface a malformed literal at configuration time rather than on the
	// first assessment that evaluates it.
	if _, err := rule.ParsedValue(); err != nil {
		return nil, errs.Validation("rule value does not match value_type: %v", err)
	}

	if err := s.ruleRepo.CreateRule(rule); err != nil {
		return nil, err
	}

	slog.Info("Rule created", "rule_id", rule.ID, "scheme_id", rule.SchemeID, "name", rule.Name)
	return rule, nil
}

func (s *SchemeService) GetRule(ctx context.Context, id uuid.UUID) (*models.Rule, error) {
	return s.ruleRepo.GetRuleByID(ctx, id)
}

// DeactivateRule retires a rule. Rules referenced by a completed assessment
// are immutable, so deactivation is the only change allowed to them and the
// stored row itself is never rewritten.
func (s *SchemeService) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.ruleRepo.GetRuleByID(ctx, id); err != nil {
		return err
	}
	return s.ruleRepo.DeactivateRule(ctx, id)
}

// ReplaceRule retires an existing rule and creates its successor in one
// operation. This is the only way to "change" a rule once any completed
// assessment has recorded a result against it.
func (s *SchemeService) ReplaceRule(ctx context.Context, id uuid.UUID, req *models.CreateRuleRequest) (*models.Rule, error) {
	existing, err := s.ruleRepo.GetRuleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.SchemeID != req.SchemeID {
		return nil, errs.Validation("replacement rule must belong to scheme %s", existing.SchemeID)
	}

	replacement, err := s.CreateRule(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.ruleRepo.DeactivateRule(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("Rule replaced", "old_rule_id", id, "new_rule_id", replacement.ID)
	return replacement, nil
}

func (s *SchemeService) CreateRuleGroup(ctx context.Context, req *models.CreateRuleGroupRequest) (*models.RuleGroup, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errs.Validation("rule group name is required")
	}
	if req.LogicOperator != models.LogicAND && req.LogicOperator != models.LogicOR {
		return nil, errs.Validation("logic_operator must be AND or OR")
	}
	if _, err := s.schemeRepo.GetByID(ctx, req.SchemeID); err != nil {
		return nil, err
	}

	group := &models.RuleGroup{
		ID:            uuid.New(),
		SchemeID:      req.SchemeID,
		Name:          req.Name,
		LogicOperator: req.LogicOperator,
		Weight:        1,
		IsMandatory:   req.IsMandatory,
		Priority:      req.Priority,
		IsActive:      true,
	}
	if req.Weight != nil {
		group.Weight = *req.Weight
	}

	if err := s.ruleRepo.CreateGroup(group); err != nil {
		return nil, err
	}

	slog.Info("Rule group created", "group_id", group.ID, "scheme_id", group.SchemeID)
	return group, nil
}

func (s *SchemeService) GetSchemeRules(ctx context.Context, schemeID uuid.UUID) ([]models.RuleGroup, []models.Rule, error) {
	groups, err := s.ruleRepo.GetGroupsByScheme(ctx, schemeID)
	if err != nil {
		return nil, nil, err
	}
	rules, err := s.ruleRepo.GetUngroupedRulesByScheme(ctx, schemeID)
	if err != nil {
		return nil, nil, err
	}
	return groups, rules, nil
}

func transitionAllowed(from, to models.SchemeStatus) bool {
	for _, allowed := range schemeTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func validateRuleRequest(req *models.CreateRuleRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errs.Validation("rule name is required")
	}
	if strings.TrimSpace(req.FieldName) == "" {
		return errs.Validation("rule field_name is required")
	}
	if req.Weight != nil && *req.Weight < 0 {
		return errs.Validation("rule weight cannot be negative")
	}

	switch req.Operator {
	case models.OperatorEquals, models.OperatorNotEquals,
		models.OperatorGreater, models.OperatorGreaterOrEqual,
		models.OperatorLess, models.OperatorLessOrEqual,
		models.OperatorInList, models.OperatorNotInList,
		models.OperatorContains, models.OperatorNotContains,
		models.OperatorBetween, models.OperatorIsNull,
		models.OperatorIsNotNull, models.OperatorRegexMatch:
	default:
		return errs.Validation("unknown operator %q", req.Operator)
	}

	switch req.ValueType {
	case models.ValueTypeNumber, models.ValueTypeBoolean, models.ValueTypeList,
		models.ValueTypeDate, models.ValueTypeString:
	default:
		return errs.Validation("unknown value_type %q", req.ValueType)
	}

	return nil
}
