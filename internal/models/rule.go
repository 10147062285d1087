package models

import (
	"time"

	"github.com/google/uuid"
)

// Rule is a single configurable eligibility condition belonging to a scheme.
// Rules referenced by completed assessments are immutable; a changed
// condition is a new rule.
type Rule struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SchemeID    uuid.UUID  `json:"scheme_id" db:"scheme_id"`
	RuleGroupID *uuid.UUID `json:"rule_group_id,omitempty" db:"rule_group_id"`

	Name      string        `json:"name" db:"name"`
	FieldType RuleFieldType `json:"field_type" db:"field_type"`
	FieldName string        `json:"field_name" db:"field_name"`
	FieldPath *string       `json:"field_path,omitempty" db:"field_path"`

	Operator  RuleOperator  `json:"operator" db:"operator"`
	Value     string        `json:"value" db:"value"`
	ValueType RuleValueType `json:"value_type" db:"value_type"`

	IsMandatory bool    `json:"is_mandatory" db:"is_mandatory"`
	IsExclusion bool    `json:"is_exclusion" db:"is_exclusion"`
	Weight      float64 `json:"weight" db:"weight"`
	Priority    int     `json:"priority" db:"priority"`
	IsActive    bool    `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// parsed caches the typed literal. Populated once when the rule is
	// loaded so a malformed value surfaces at load time, not on every
	// evaluation.
	parsed    Value
	parseErr  error
	hasParsed bool
}

// ParsedValue returns the typed literal, parsing and caching it on first use.
func (r *Rule) ParsedValue() (Value, error) {
	if !r.hasParsed {
		r.parsed, r.parseErr = ParseRuleValue(r.Value, r.ValueType)
		r.hasParsed = true
	}
	return r.parsed, r.parseErr
}

// Path returns the context lookup path: field_path when set, else field_name.
func (r *Rule) Path() string {
	if r.FieldPath != nil && *r.FieldPath != "" {
		return *r.FieldPath
	}
	return r.FieldName
}

// RuleGroup is a weighted AND/OR collection of rules within a scheme.
type RuleGroup struct {
	ID       uuid.UUID `json:"id" db:"id"`
	SchemeID uuid.UUID `json:"scheme_id" db:"scheme_id"`

	Name          string        `json:"name" db:"name"`
	LogicOperator LogicOperator `json:"logic_operator" db:"logic_operator"`
	Weight        float64       `json:"weight" db:"weight"`
	IsMandatory   bool          `json:"is_mandatory" db:"is_mandatory"`
	Priority      int           `json:"priority" db:"priority"`
	IsActive      bool          `json:"is_active" db:"is_active"`

	Rules []Rule `json:"rules,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RuleEvaluationResult is the per-rule outcome captured on an assessment.
// Created once per rule per assessment and never mutated.
type RuleEvaluationResult struct {
	RuleID      uuid.UUID `json:"rule_id"`
	RuleName    string    `json:"rule_name"`
	Passed      bool      `json:"passed"`
	Actual      string    `json:"actual_value"`
	Expected    string    `json:"expected_value"`
	Message     string    `json:"message"`
	IsMandatory bool      `json:"is_mandatory"`
	Weight      float64   `json:"weight"`
}
