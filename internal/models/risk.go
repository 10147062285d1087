package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskFactorScore is one scored signal inside a category. Immutable once
// emitted by the scoring engine.
type RiskFactorScore struct {
	Code          string       `json:"code"`
	Category      RiskCategory `json:"category"`
	RawValue      *string      `json:"raw_value,omitempty"`
	Normalized    float64      `json:"normalized"`
	Weight        float64      `json:"weight"`
	WeightedValue float64      `json:"weighted_value"`
	Note          string       `json:"note,omitempty"`
}

// HasData reports whether the factor was scored from a real input rather
// than a missing-data default.
func (f *RiskFactorScore) HasData() bool {
	return f.RawValue != nil
}

// RiskAssessment is the blended multi-category risk result for one
// assessment invocation. Historical assessments are retained, never
// overwritten.
type RiskAssessment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AssessmentID uuid.UUID `json:"assessment_id" db:"assessment_id"`

	TotalScore float64   `json:"total_score" db:"total_score"`
	Level      RiskLevel `json:"level" db:"level"`
	Confidence float64   `json:"confidence" db:"confidence"`

	CreditScore      float64 `json:"credit_score" db:"credit_score"`
	PerformanceScore float64 `json:"performance_score" db:"performance_score"`
	ExternalScore    float64 `json:"external_score" db:"external_score"`
	FraudScore       float64 `json:"fraud_score" db:"fraud_score"`

	Factors         []RiskFactorScore `json:"factors" db:"-"`
	FraudIndicators []string          `json:"fraud_indicators,omitempty" db:"-"`
	Flags           []string          `json:"flags,omitempty" db:"-"`
	Recommendations []string          `json:"recommendations,omitempty" db:"-"`

	ValidFrom  time.Time `json:"valid_from" db:"valid_from"`
	ValidUntil time.Time `json:"valid_until" db:"valid_until"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ClassifyRiskLevel buckets a clamped 0-100 score. The partition is total
// and non-overlapping: [0,25) low, [25,50) medium, [50,75) high,
// [75,100] very_high.
func ClassifyRiskLevel(score float64) RiskLevel {
	switch {
	case score < 25:
		return RiskLevelLow
	case score < 50:
		return RiskLevelMedium
	case score < 75:
		return RiskLevelHigh
	}
	return RiskLevelVeryHigh
}
