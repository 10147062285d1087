package models

import (
	"time"

	"github.com/google/uuid"
)

// Assessment is the aggregate record of one eligibility evaluation. Created
// at assessment start and mutated through the workflow state machine until a
// terminal decision is set or it expires.
type Assessment struct {
	ID       uuid.UUID `json:"id" db:"id"`
	FarmerID string    `json:"farmer_id" db:"farmer_id"`
	SchemeID uuid.UUID `json:"scheme_id" db:"scheme_id"`
	FarmID   *string   `json:"farm_id,omitempty" db:"farm_id"`

	Status AssessmentStatus `json:"status" db:"status"`

	EligibilityScore *float64   `json:"eligibility_score,omitempty" db:"eligibility_score"`
	RiskScore        *float64   `json:"risk_score,omitempty" db:"risk_score"`
	RiskLevel        *RiskLevel `json:"risk_level,omitempty" db:"risk_level"`

	RulesPassed     int  `json:"rules_passed" db:"rules_passed"`
	RulesFailed     int  `json:"rules_failed" db:"rules_failed"`
	MandatoryPassed bool `json:"mandatory_passed" db:"mandatory_passed"`

	RuleResults []RuleEvaluationResult `json:"rule_results,omitempty" db:"-"`

	WorkflowDecision *WorkflowDecision `json:"workflow_decision,omitempty" db:"workflow_decision"`
	FinalDecision    *FinalDecision    `json:"final_decision,omitempty" db:"final_decision"`
	DecidedBy        *string           `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt        *time.Time        `json:"decided_at,omitempty" db:"decided_at"`

	WaitlistPosition *int `json:"waitlist_position,omitempty" db:"waitlist_position"`

	CreditProvenance *CreditProvenance `json:"credit_provenance,omitempty" db:"credit_provenance"`
	Note             *string           `json:"note,omitempty" db:"note"`

	ValidFrom  *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil *time.Time `json:"valid_until,omitempty" db:"valid_until"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WaitlistEntry is an ordered queue slot for an eligible-but-capacity-blocked
// applicant. Positions are 1-based, assigned monotonically per scheme, and
// never renumbered when earlier entries leave the list.
type WaitlistEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SchemeID     uuid.UUID `json:"scheme_id" db:"scheme_id"`
	FarmerID     string    `json:"farmer_id" db:"farmer_id"`
	AssessmentID uuid.UUID `json:"assessment_id" db:"assessment_id"`

	Position         int `json:"position" db:"position"`
	OriginalPosition int `json:"original_position" db:"original_position"`

	EligibilityScore float64 `json:"eligibility_score" db:"eligibility_score"`
	RiskScore        float64 `json:"risk_score" db:"risk_score"`

	Status WaitlistStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewQueueItem queues an assessment for a manual decision. Priority 1 is
// the most urgent.
type ReviewQueueItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AssessmentID uuid.UUID `json:"assessment_id" db:"assessment_id"`

	Priority int    `json:"priority" db:"priority"`
	Reason   string `json:"reason" db:"reason"`

	Status     ReviewStatus   `json:"status" db:"status"`
	AssignedTo *string        `json:"assigned_to,omitempty" db:"assigned_to"`
	AssignedAt *time.Time     `json:"assigned_at,omitempty" db:"assigned_at"`
	Decision   *FinalDecision `json:"decision,omitempty" db:"decision"`
	DecidedBy  *string        `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt  *time.Time     `json:"decided_at,omitempty" db:"decided_at"`

	SLADueAt time.Time `json:"sla_due_at" db:"sla_due_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
