package models

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentRequest starts (or re-enters) an eligibility assessment. The
// automated pipeline may embed the farmer/farm snapshots directly; when they
// are absent the orchestrator fetches them from the profile service.
type AssessmentRequest struct {
	FarmerID string    `json:"farmer_id"`
	SchemeID uuid.UUID `json:"scheme_id"`
	FarmID   *string   `json:"farm_id,omitempty"`

	Farmer          *FarmerSnapshot      `json:"farmer,omitempty"`
	Farm            *FarmSnapshot        `json:"farm,omitempty"`
	ExternalSignals *ExternalRiskSignals `json:"external_signals,omitempty"`
	Custom          map[string]any       `json:"custom,omitempty"`
}

// ManualDecisionRequest records a reviewer's verdict on an eligible
// assessment.
type ManualDecisionRequest struct {
	Decision   FinalDecision `json:"decision"`
	ReviewerID string        `json:"reviewer_id"`
	Note       *string       `json:"note,omitempty"`
}

type CreateSchemeRequest struct {
	Name                   string     `json:"name"`
	Description            *string    `json:"description,omitempty"`
	MaxBeneficiaries       *int       `json:"max_beneficiaries,omitempty"`
	ApplicationDeadline    *time.Time `json:"application_deadline,omitempty"`
	AutoApprovalEnabled    bool       `json:"auto_approval_enabled"`
	MinScoreForAutoApprove *float64   `json:"min_score_for_auto_approve,omitempty"`
	MaxRiskForAutoApprove  *RiskLevel `json:"max_risk_for_auto_approve,omitempty"`
	WaitlistEnabled        bool       `json:"waitlist_enabled"`
	WaitlistCapacity       *int       `json:"waitlist_capacity,omitempty"`
}

type UpdateSchemeStatusRequest struct {
	Status SchemeStatus `json:"status"`
}

type CreateRuleRequest struct {
	SchemeID    uuid.UUID     `json:"scheme_id"`
	RuleGroupID *uuid.UUID    `json:"rule_group_id,omitempty"`
	Name        string        `json:"name"`
	FieldType   RuleFieldType `json:"field_type"`
	FieldName   string        `json:"field_name"`
	FieldPath   *string       `json:"field_path,omitempty"`
	Operator    RuleOperator  `json:"operator"`
	Value       string        `json:"value"`
	ValueType   RuleValueType `json:"value_type"`
	IsMandatory bool          `json:"is_mandatory"`
	IsExclusion bool          `json:"is_exclusion"`
	Weight      *float64      `json:"weight,omitempty"`
	Priority    int           `json:"priority"`
}

type CreateRuleGroupRequest struct {
	SchemeID      uuid.UUID     `json:"scheme_id"`
	Name          string        `json:"name"`
	LogicOperator LogicOperator `json:"logic_operator"`
	Weight        *float64      `json:"weight,omitempty"`
	IsMandatory   bool          `json:"is_mandatory"`
	Priority      int           `json:"priority"`
}

type AssignReviewRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

// AssessmentResponse is the API view of a finished (or in-flight)
// assessment, including the credit data provenance so operators can see
// when the degraded fallback path produced the decision.
type AssessmentResponse struct {
	Assessment Assessment      `json:"assessment"`
	Risk       *RiskAssessment `json:"risk,omitempty"`
}
