package models

type SchemeStatus string

const (
	SchemeDraft     SchemeStatus = "draft"
	SchemeActive    SchemeStatus = "active"
	SchemeSuspended SchemeStatus = "suspended"
	SchemeClosed    SchemeStatus = "closed"
	SchemeArchived  SchemeStatus = "archived"
)

type AssessmentStatus string

const (
	AssessmentPending     AssessmentStatus = "pending"
	AssessmentInProgress  AssessmentStatus = "in_progress"
	AssessmentEligible    AssessmentStatus = "eligible"
	AssessmentNotEligible AssessmentStatus = "not_eligible"
	AssessmentApproved    AssessmentStatus = "approved"
	AssessmentRejected    AssessmentStatus = "rejected"
	AssessmentWaitlisted  AssessmentStatus = "waitlisted"
	AssessmentExpired     AssessmentStatus = "expired"
)

// IsTerminal reports whether no further workflow transitions are allowed.
func (s AssessmentStatus) IsTerminal() bool {
	switch s {
	case AssessmentNotEligible, AssessmentApproved, AssessmentRejected, AssessmentExpired:
		return true
	}
	return false
}

type WorkflowDecision string

const (
	DecisionAutoApprove  WorkflowDecision = "auto_approve"
	DecisionAutoReject   WorkflowDecision = "auto_reject"
	DecisionManualReview WorkflowDecision = "manual_review"
	DecisionWaitlist     WorkflowDecision = "waitlist"
)

type FinalDecision string

const (
	FinalApprove FinalDecision = "approve"
	FinalReject  FinalDecision = "reject"
)

type RuleOperator string

const (
	OperatorEquals         RuleOperator = "equals"
	OperatorNotEquals      RuleOperator = "not_equals"
	OperatorGreater        RuleOperator = "greater_than"
	OperatorGreaterOrEqual RuleOperator = "greater_than_or_equal"
	OperatorLess           RuleOperator = "less_than"
	OperatorLessOrEqual    RuleOperator = "less_than_or_equal"
	OperatorInList         RuleOperator = "in_list"
	OperatorNotInList      RuleOperator = "not_in_list"
	OperatorContains       RuleOperator = "contains"
	OperatorNotContains    RuleOperator = "not_contains"
	OperatorBetween        RuleOperator = "between"
	OperatorIsNull         RuleOperator = "is_null"
	OperatorIsNotNull      RuleOperator = "is_not_null"
	OperatorRegexMatch     RuleOperator = "regex_match"
)

type RuleFieldType string

const (
	FieldFarmer   RuleFieldType = "farmer"
	FieldFarm     RuleFieldType = "farm"
	FieldKYC      RuleFieldType = "kyc"
	FieldCredit   RuleFieldType = "credit"
	FieldLocation RuleFieldType = "location"
	FieldCustom   RuleFieldType = "custom"
)

type RuleValueType string

const (
	ValueTypeNumber  RuleValueType = "number"
	ValueTypeBoolean RuleValueType = "boolean"
	ValueTypeList    RuleValueType = "list"
	ValueTypeDate    RuleValueType = "date"
	ValueTypeString  RuleValueType = "string"
)

type LogicOperator string

const (
	LogicAND LogicOperator = "AND"
	LogicOR  LogicOperator = "OR"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelVeryHigh RiskLevel = "very_high"
)

// Rank orders risk levels for threshold comparisons (low < medium < high < very_high).
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelLow:
		return 0
	case RiskLevelMedium:
		return 1
	case RiskLevelHigh:
		return 2
	case RiskLevelVeryHigh:
		return 3
	}
	return 3
}

type RiskCategory string

const (
	RiskCategoryCredit      RiskCategory = "credit"
	RiskCategoryPerformance RiskCategory = "performance"
	RiskCategoryExternal    RiskCategory = "external"
	RiskCategoryFraud       RiskCategory = "fraud"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCInReview KYCStatus = "in_review"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistOffered  WaitlistStatus = "offered"
	WaitlistAccepted WaitlistStatus = "accepted"
	WaitlistExpired  WaitlistStatus = "expired"
)

type ReviewStatus string

const (
	ReviewPending    ReviewStatus = "pending"
	ReviewAssigned   ReviewStatus = "assigned"
	ReviewInProgress ReviewStatus = "in_progress"
	ReviewCompleted  ReviewStatus = "completed"
)

type CreditProvenance string

const (
	CreditProvenanceBureau   CreditProvenance = "bureau"
	CreditProvenanceCached   CreditProvenance = "cached"
	CreditProvenanceFallback CreditProvenance = "fallback"
)
