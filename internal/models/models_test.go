package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyRiskLevel_Partition(t *testing.T) {
	assert.Equal(t, RiskLevelLow, ClassifyRiskLevel(0))
	assert.Equal(t, RiskLevelLow, ClassifyRiskLevel(24.9))
	assert.Equal(t, RiskLevelMedium, ClassifyRiskLevel(25), "25 belongs to medium, not low")
	assert.Equal(t, RiskLevelMedium, ClassifyRiskLevel(49.9))
	assert.Equal(t, RiskLevelHigh, ClassifyRiskLevel(50), "50 belongs to high, not medium")
	assert.Equal(t, RiskLevelHigh, ClassifyRiskLevel(74.9))
	assert.Equal(t, RiskLevelVeryHigh, ClassifyRiskLevel(75), "75 belongs to very_high, not high")
	assert.Equal(t, RiskLevelVeryHigh, ClassifyRiskLevel(100))
}

func TestRiskLevelRank_Ordering(t *testing.T) {
	assert.Less(t, RiskLevelLow.Rank(), RiskLevelMedium.Rank())
	assert.Less(t, RiskLevelMedium.Rank(), RiskLevelHigh.Rank())
	assert.Less(t, RiskLevelHigh.Rank(), RiskLevelVeryHigh.Rank())
}

func TestAssessmentStatus_IsTerminal(t *testing.T) {
	terminal := []AssessmentStatus{AssessmentNotEligible, AssessmentApproved, AssessmentRejected, AssessmentExpired}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}

	open := []AssessmentStatus{AssessmentPending, AssessmentInProgress, AssessmentEligible, AssessmentWaitlisted}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), "%s should allow further transitions", s)
	}
}

func TestScheme_AtCapacity(t *testing.T) {
	maxBeneficiaries := 100

	uncapped := Scheme{CurrentBeneficiaries: 5000}
	assert.False(t, uncapped.AtCapacity(), "scheme without a cap is never at capacity")

	capped := Scheme{MaxBeneficiaries: &maxBeneficiaries, CurrentBeneficiaries: 99}
	assert.False(t, capped.AtCapacity())

	capped.CurrentBeneficiaries = 100
	assert.True(t, capped.AtCapacity())
}

func TestScheme_DeadlinePassed(t *testing.T) {
	now := time.Now()

	open := Scheme{}
	assert.False(t, open.DeadlinePassed(now), "no deadline means never passed")

	past := now.Add(-time.Hour)
	closed := Scheme{ApplicationDeadline: &past}
	assert.True(t, closed.DeadlinePassed(now))
}

func TestCreditCheck_DTIDerivation(t *testing.T) {
	supplied := 42.0
	withRatio := CreditCheck{DebtToIncomeRatio: &supplied}
	assert.Equal(t, 42.0, *withRatio.DTI(), "a supplied ratio wins over derivation")

	derived := CreditCheck{
		MonthlyObligations: decimal.NewFromInt(9000),
		MonthlyIncome:      decimal.NewFromInt(30000),
	}
	assert.InDelta(t, 30.0, *derived.DTI(), 0.01)

	noIncome := CreditCheck{MonthlyObligations: decimal.NewFromInt(5000)}
	assert.Nil(t, noIncome.DTI(), "zero income means no derivable ratio")
}

func TestCreditCheck_IsFresh(t *testing.T) {
	now := time.Now()
	recent := now.Add(-30 * 24 * time.Hour)
	stale := now.Add(-120 * 24 * time.Hour)
	window := 90 * 24 * time.Hour

	fresh := CreditCheck{Completed: true, CompletedAt: &recent}
	assert.True(t, fresh.IsFresh(now, window))

	expired := CreditCheck{Completed: true, CompletedAt: &stale}
	assert.False(t, expired.IsFresh(now, window))

	incomplete := CreditCheck{Completed: false, CompletedAt: &recent}
	assert.False(t, incomplete.IsFresh(now, window), "incomplete checks are never fresh")
}
