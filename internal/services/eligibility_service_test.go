package services

import (
	"testing"

	"github.com/jajuok/agripro-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func createAutoApprovalScheme(minScore float64, maxRisk models.RiskLevel) *models.Scheme {
	return &models.Scheme{
		Status:                 models.SchemeActive,
		AutoApprovalEnabled:    true,
		MinScoreForAutoApprove: minScore,
		MaxRiskForAutoApprove:  maxRisk,
	}
}

func createScoredAssessment(score float64) *models.Assessment {
	return &models.Assessment{
		Status:           models.AssessmentInProgress,
		EligibilityScore: &score,
		MandatoryPassed:  true,
	}
}

// ============================================================================
// TEST SUITE: AUTO-APPROVAL GATE
// ============================================================================

func TestAutoApprovable_AllCriteriaMet(t *testing.T) {
	service := &EligibilityService{}
	scheme := createAutoApprovalScheme(80, models.RiskLevelMedium)
	risk := &models.RiskAssessment{Level: models.RiskLevelLow}

	assert.True(t, service.autoApprovable(scheme, createScoredAssessment(85), risk))
}

func TestAutoApprovable_RiskAtThresholdStillPasses(t *testing.T) {
	service := &EligibilityService{}
	scheme := createAutoApprovalScheme(80, models.RiskLevelMedium)
	risk := &models.RiskAssessment{Level: models.RiskLevelMedium}

	assert.True(t, service.autoApprovable(scheme, createScoredAssessment(80), risk),
		"score and risk exactly at threshold qualify")
}

func TestAutoApprovable_DisabledOnScheme(t *testing.T) {
	service := &EligibilityService{}
	scheme := createAutoApprovalScheme(80, models.RiskLevelMedium)
	scheme.AutoApprovalEnabled = false
	risk := &models.RiskAssessment{Level: models.RiskLevelLow}

	assert.False(t, service.autoApprovable(scheme, createScoredAssessment(100), risk))
}

func TestAutoApprovable_ScoreBelowThreshold(t *testing.T) {
	service := &EligibilityService{}
	scheme := createAutoApprovalScheme(80, models.RiskLevelMedium)
	risk := &models.RiskAssessment{Level: models.RiskLevelLow}

	assert.False(t, service.autoApprovable(scheme, createScoredAssessment(79.9), risk))
}

func TestAutoApprovable_RiskAboveThreshold(t *testing.T) {
	service := &EligibilityService{}
	scheme := createAutoApprovalScheme(80, models.RiskLevelMedium)
	risk := &models.RiskAssessment{Level: models.RiskLevelHigh}

	assert.False(t, service.autoApprovable(scheme, createScoredAssessment(95), risk))
}

func TestReviewReason_NamesTheBlockingCriterion(t *testing.T) {
	scheme := createAutoApprovalScheme(80, models.RiskLevelMedium)

	manualOnly := createAutoApprovalScheme(80, models.RiskLevelMedium)
	manualOnly.AutoApprovalEnabled = false
	assert.Equal(t, "scheme requires manual approval",
		reviewReason(manualOnly, createScoredAssessment(90), &models.RiskAssessment{Level: models.RiskLevelLow}))

	assert.Equal(t, "eligibility score below auto-approval threshold",
		reviewReason(scheme, createScoredAssessment(60), &models.RiskAssessment{Level: models.RiskLevelLow}))

	assert.Equal(t, "risk level above auto-approval threshold",
		reviewReason(scheme, createScoredAssessment(90), &models.RiskAssessment{Level: models.RiskLevelVeryHigh}))
}

// ============================================================================
// TEST SUITE: EVALUATION CONTEXT ASSEMBLY
// ============================================================================

func TestBuildEvaluationContext_Namespaces(t *testing.T) {
	farmer := createTestFarmer(models.KYCApproved)
	farm := createTestFarm(true)
	credit := createTestCredit(700)

	ctx := BuildEvaluationContext(farmer, farm, credit, map[string]any{"cooperative_member": true})

	assert.Equal(t, "approved", ctx.Resolve(models.FieldKYC, "status").Str)
	assert.Equal(t, "approved", ctx.Resolve(models.FieldFarmer, "kyc.status").Str,
		"kyc is mirrored under the farmer namespace")
	assert.Equal(t, 4.5, ctx.Resolve(models.FieldFarm, "acreage_total").Num)
	assert.Equal(t, 700.0, ctx.Resolve(models.FieldCredit, "score").Num)
	assert.Equal(t, "Nakuru", ctx.Resolve(models.FieldLocation, "county").Str)
	assert.True(t, ctx.Resolve(models.FieldCustom, "cooperative_member").Bool)
}

func TestBuildEvaluationContext_NilInputsAreEmptyNotPanics(t *testing.T) {
	ctx := BuildEvaluationContext(nil, nil, nil, nil)

	assert.True(t, ctx.Resolve(models.FieldFarmer, "first_name").IsNull())
	assert.True(t, ctx.Resolve(models.FieldFarm, "acreage_total").IsNull())
	assert.True(t, ctx.Resolve(models.FieldCredit, "score").IsNull())
}

func TestBuildEvaluationContext_YieldHistoryIsIndexable(t *testing.T) {
	ctx := BuildEvaluationContext(createTestFarmer(models.KYCApproved), createTestFarm(true), nil, nil)

	assert.Equal(t, 950.0, ctx.Resolve(models.FieldFarm, "yield_history.0.actual_yield").Num)
	assert.Equal(t, 2023.0, ctx.Resolve(models.FieldFarm, "yield_history.1.year").Num)
}
