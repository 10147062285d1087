package services

import (
	"testing"

	"github.com/jajuok/agripro-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func createTestRule(
	fieldType models.RuleFieldType,
	fieldName string,
	operator models.RuleOperator,
	value string,
	valueType models.RuleValueType,
) models.Rule {
	return models.Rule{
		ID:        uuid.New(),
		SchemeID:  uuid.New(),
		Name:      fieldName + " rule",
		FieldType: fieldType,
		FieldName: fieldName,
		Operator:  operator,
		Value:     value,
		ValueType: valueType,
		Weight:    1,
		IsActive:  true,
	}
}

func createEngineTestContext() *models.EvaluationContext {
	county := "Nakuru"
	return &models.EvaluationContext{
		Farmer: map[string]models.Value{
			"is_active":   models.Boolean(true),
			"national_id": models.Str("12345678"),
		},
		KYC: map[string]models.Value{
			"status": models.Str("approved"),
		},
		Farm: map[string]models.Value{
			"acreage_total": models.Number(4.5),
			"soil_type":     models.Str("volcanic loam"),
		},
		Credit: map[string]models.Value{
			"score":         models.Number(680),
			"default_count": models.Number(0),
		},
		Location: map[string]models.Value{
			"county": models.Str(county),
		},
		Custom: map[string]models.Value{},
	}
}

// ============================================================================
// TEST SUITE 1: OPERATORS
// ============================================================================

func TestEvaluate_EqualsIsCaseInsensitive(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()
	rule := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "APPROVED", models.ValueTypeString)

	eval := engine.Evaluate(nil, []models.Rule{rule}, ctx)

	assert.Equal(t, 1, eval.RulesPassed, "string equality should ignore case")
	assert.Equal(t, 100.0, eval.EligibilityScore)
}

func TestEvaluate_NumericComparisons(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	passing := []models.Rule{
		createTestRule(models.FieldCredit, "score", models.OperatorGreater, "650", models.ValueTypeNumber),
		createTestRule(models.FieldCredit, "score", models.OperatorGreaterOrEqual, "680", models.ValueTypeNumber),
		createTestRule(models.FieldFarm, "acreage_total", models.OperatorLess, "10", models.ValueTypeNumber),
		createTestRule(models.FieldCredit, "default_count", models.OperatorLessOrEqual, "0", models.ValueTypeNumber),
	}

	eval := engine.Evaluate(nil, passing, ctx)

	assert.Equal(t, 4, eval.RulesPassed)
	assert.Equal(t, 0, eval.RulesFailed)
}

func TestEvaluate_BetweenIsInclusive(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	lowEdge := createTestRule(models.FieldFarm, "acreage_total", models.OperatorBetween, "[4.5, 10]", models.ValueTypeList)
	highEdge := createTestRule(models.FieldFarm, "acreage_total", models.OperatorBetween, "[1, 4.5]", models.ValueTypeList)
	outside := createTestRule(models.FieldFarm, "acreage_total", models.OperatorBetween, "[5, 10]", models.ValueTypeList)

	eval := engine.Evaluate(nil, []models.Rule{lowEdge, highEdge, outside}, ctx)

	assert.Equal(t, 2, eval.RulesPassed, "both bounds of between are inclusive")
	assert.Equal(t, 1, eval.RulesFailed)
}

func TestEvaluate_InList(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	member := createTestRule(models.FieldLocation, "county", models.OperatorInList, "nakuru, kiambu, meru", models.ValueTypeList)
	nonMember := createTestRule(models.FieldLocation, "county", models.OperatorNotInList, "mombasa, kilifi", models.ValueTypeList)

	eval := engine.Evaluate(nil, []models.Rule{member, nonMember}, ctx)

	assert.Equal(t, 2, eval.RulesPassed)
}

func TestEvaluate_Contains(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	rule := createTestRule(models.FieldFarm, "soil_type", models.OperatorContains, "loam", models.ValueTypeString)

	eval := engine.Evaluate(nil, []models.Rule{rule}, ctx)

	assert.Equal(t, 1, eval.RulesPassed)
}

func TestEvaluate_RegexMatch(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	valid := createTestRule(models.FieldFarmer, "national_id", models.OperatorRegexMatch, `^\d{8}$`, models.ValueTypeString)
	badPattern := createTestRule(models.FieldFarmer, "national_id", models.OperatorRegexMatch, `[unclosed`, models.ValueTypeString)

	eval := engine.Evaluate(nil, []models.Rule{valid, badPattern}, ctx)

	assert.Equal(t, 1, eval.RulesPassed)
	assert.Equal(t, 1, eval.RulesFailed, "an invalid pattern fails the rule instead of erroring")
}

func TestEvaluate_NullChecks(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	missingIsNull := createTestRule(models.FieldFarm, "water_source", models.OperatorIsNull, "", models.ValueTypeString)
	presentIsNotNull := createTestRule(models.FieldFarm, "soil_type", models.OperatorIsNotNull, "", models.ValueTypeString)

	eval := engine.Evaluate(nil, []models.Rule{missingIsNull, presentIsNotNull}, ctx)

	assert.Equal(t, 2, eval.RulesPassed)
}

func TestEvaluate_MissingValueFailsNonNullOperators(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	rule := createTestRule(models.FieldFarm, "water_source", models.OperatorEquals, "borehole", models.ValueTypeString)

	eval := engine.Evaluate(nil, []models.Rule{rule}, ctx)

	assert.Equal(t, 0, eval.RulesPassed, "a missing field fails every operator except the null checks")
	assert.Equal(t, 1, eval.RulesFailed)
}

// ============================================================================
// TEST SUITE 2: EXCLUSIONS, MANDATORY RULES AND SCORING
// ============================================================================

func TestEvaluate_ExclusionInvertsOutcome(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	// Condition matches (default_count <= 0 is true), so the exclusion fails
	// the applicant.
	exclusion := createTestRule(models.FieldCredit, "default_count", models.OperatorLessOrEqual, "0", models.ValueTypeNumber)
	exclusion.IsExclusion = true

	eval := engine.Evaluate(nil, []models.Rule{exclusion}, ctx)

	assert.Equal(t, 0, eval.RulesPassed)
	assert.Equal(t, 1, eval.RulesFailed)
	assert.False(t, eval.Results[0].Passed)
}

func TestEvaluate_MandatoryFailureOverridesScore(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	mandatory := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "700", models.ValueTypeNumber)
	mandatory.IsMandatory = true
	optional1 := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	optional2 := createTestRule(models.FieldFarmer, "is_active", models.OperatorEquals, "true", models.ValueTypeBoolean)

	eval := engine.Evaluate(nil, []models.Rule{mandatory, optional1, optional2}, ctx)

	assert.False(t, eval.MandatoryPassed, "one failed mandatory rule fails the whole evaluation")
	assert.InDelta(t, 66.67, eval.EligibilityScore, 0.1, "score still reflects the weighted pass rate")
}

func TestEvaluate_ZeroTotalWeightScoresFull(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	rule := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	rule.Weight = 0

	eval := engine.Evaluate(nil, []models.Rule{rule}, ctx)

	assert.Equal(t, 100.0, eval.EligibilityScore, "zero total weight means nothing was required")
}

func TestEvaluate_NoRulesScoresFull(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	eval := engine.Evaluate(nil, nil, ctx)

	assert.Equal(t, 100.0, eval.EligibilityScore)
	assert.True(t, eval.MandatoryPassed)
}

func TestEvaluate_InactiveRulesAreSkipped(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	inactive := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "900", models.ValueTypeNumber)
	inactive.IsActive = false
	inactive.IsMandatory = true

	eval := engine.Evaluate(nil, []models.Rule{inactive}, ctx)

	assert.Empty(t, eval.Results)
	assert.True(t, eval.MandatoryPassed, "inactive rules cannot fail anything")
}

func TestEvaluate_WeightedScore(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	heavy := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	heavy.Weight = 3
	light := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "900", models.ValueTypeNumber)
	light.Weight = 1

	eval := engine.Evaluate(nil, []models.Rule{heavy, light}, ctx)

	assert.Equal(t, 75.0, eval.EligibilityScore, "3 of 4 weight earned should be 75")
}

// ============================================================================
// TEST SUITE 3: RULE GROUPS
// ============================================================================

func createTestGroup(logic models.LogicOperator, weight float64, rules ...models.Rule) models.RuleGroup {
	return models.RuleGroup{
		ID:            uuid.New(),
		SchemeID:      uuid.New(),
		Name:          string(logic) + " group",
		LogicOperator: logic,
		Weight:        weight,
		IsActive:      true,
		Rules:         rules,
	}
}

func TestEvaluate_ORGroupPassesOnAnyRule(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	failing := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "900", models.ValueTypeNumber)
	passing := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	group := createTestGroup(models.LogicOR, 1, failing, passing)

	eval := engine.Evaluate([]models.RuleGroup{group}, nil, ctx)

	assert.Equal(t, 100.0, eval.EligibilityScore, "one passing rule satisfies an OR group")
}

func TestEvaluate_ANDGroupFailsOnAnyRule(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	failing := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "900", models.ValueTypeNumber)
	passing := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	group := createTestGroup(models.LogicAND, 1, failing, passing)

	eval := engine.Evaluate([]models.RuleGroup{group}, nil, ctx)

	assert.Equal(t, 0.0, eval.EligibilityScore, "one failing rule fails an AND group")
}

func TestEvaluate_MandatoryGroupFailureOverrides(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	failing := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "900", models.ValueTypeNumber)
	mandatoryGroup := createTestGroup(models.LogicAND, 1, failing)
	mandatoryGroup.IsMandatory = true

	passing := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	optionalGroup := createTestGroup(models.LogicAND, 3, passing)

	eval := engine.Evaluate([]models.RuleGroup{mandatoryGroup, optionalGroup}, nil, ctx)

	assert.False(t, eval.MandatoryPassed)
	assert.Equal(t, 75.0, eval.EligibilityScore, "group weights drive the score, 3 of 4 earned")
}

func TestEvaluate_GroupsTakePrecedenceOverFlatRules(t *testing.T) {
	engine := NewRulesEngine()
	ctx := createEngineTestContext()

	groupRule := createTestRule(models.FieldKYC, "status", models.OperatorEquals, "approved", models.ValueTypeString)
	group := createTestGroup(models.LogicAND, 1, groupRule)

	flat := createTestRule(models.FieldCredit, "score", models.OperatorGreater, "900", models.ValueTypeNumber)

	eval := engine.Evaluate([]models.RuleGroup{group}, []models.Rule{flat}, ctx)

	assert.Len(t, eval.Results, 1, "flat rules are ignored when active groups exist")
	assert.Equal(t, 100.0, eval.EligibilityScore)
}
