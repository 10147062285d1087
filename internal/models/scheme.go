package models

import (
	"time"

	"github.com/google/uuid"
)

// Scheme is a benefits program with eligibility rules, capacity and an
// approval policy.
type Scheme struct {
	ID                   uuid.UUID    `json:"id" db:"id"`
	Name                 string       `json:"name" db:"name"`
	Description          *string      `json:"description,omitempty" db:"description"`
	Status               SchemeStatus `json:"status" db:"status"`
	MaxBeneficiaries     *int         `json:"max_beneficiaries,omitempty" db:"max_beneficiaries"`
	CurrentBeneficiaries int          `json:"current_beneficiaries" db:"current_beneficiaries"`
	ApplicationDeadline  *time.Time   `json:"application_deadline,omitempty" db:"application_deadline"`

	AutoApprovalEnabled    bool      `json:"auto_approval_enabled" db:"auto_approval_enabled"`
	MinScoreForAutoApprove float64   `json:"min_score_for_auto_approve" db:"min_score_for_auto_approve"`
	MaxRiskForAutoApprove  RiskLevel `json:"max_risk_for_auto_approve" db:"max_risk_for_auto_approve"`

	WaitlistEnabled  bool `json:"waitlist_enabled" db:"waitlist_enabled"`
	WaitlistCapacity *int `json:"waitlist_capacity,omitempty" db:"waitlist_capacity"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasCapacityCap reports whether the scheme limits its beneficiary count.
func (s *Scheme) HasCapacityCap() bool {
	return s.MaxBeneficiaries != nil && *s.MaxBeneficiaries > 0
}

// AtCapacity reports whether the scheme cannot admit another beneficiary.
func (s *Scheme) AtCapacity() bool {
	return s.HasCapacityCap() && s.CurrentBeneficiaries >= *s.MaxBeneficiaries
}

// DeadlinePassed reports whether the application deadline is in the past.
func (s *Scheme) DeadlinePassed(now time.Time) bool {
	return s.ApplicationDeadline != nil && now.After(*s.ApplicationDeadline)
}
