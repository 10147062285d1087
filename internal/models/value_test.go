package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST SUITE 1: RULE VALUE PARSING
// ============================================================================

func TestParseRuleValue_Number(t *testing.T) {
	v, err := ParseRuleValue(" 42.5 ", ValueTypeNumber)

	assert.NoError(t, err)
	assert.Equal(t, KindNumber, v.Kind)
	assert.Equal(t, 42.5, v.Num)
}

func TestParseRuleValue_NumberMalformed(t *testing.T) {
	v, err := ParseRuleValue("not-a-number", ValueTypeNumber)

	assert.Error(t, err, "malformed number should report a parse error")
	assert.Equal(t, KindString, v.Kind, "malformed value should degrade to raw string")
	assert.Equal(t, "not-a-number", v.Str)
}

func TestParseRuleValue_BooleanVariants(t *testing.T) {
	trueInputs := []string{"true", "TRUE", "1", "yes"}
	for _, input := range trueInputs {
		v, err := ParseRuleValue(input, ValueTypeBoolean)
		assert.NoError(t, err, "input %q should parse", input)
		assert.True(t, v.Bool, "input %q should be true", input)
	}

	falseInputs := []string{"false", "0", "no"}
	for _, input := range falseInputs {
		v, err := ParseRuleValue(input, ValueTypeBoolean)
		assert.NoError(t, err, "input %q should parse", input)
		assert.False(t, v.Bool, "input %q should be false", input)
	}
}

func TestParseRuleValue_ListJSON(t *testing.T) {
	v, err := ParseRuleValue(`["maize", "beans", 3]`, ValueTypeList)

	assert.NoError(t, err)
	assert.Equal(t, KindList, v.Kind)
	assert.Len(t, v.List, 3)
	assert.Equal(t, "maize", v.List[0].Str)
	assert.Equal(t, 3.0, v.List[2].Num)
}

func TestParseRuleValue_ListCSV(t *testing.T) {
	v, err := ParseRuleValue("nakuru, kiambu , meru", ValueTypeList)

	assert.NoError(t, err)
	assert.Equal(t, KindList, v.Kind)
	assert.Len(t, v.List, 3)
	assert.Equal(t, "kiambu", v.List[1].Str, "CSV elements should be trimmed")
}

func TestParseRuleValue_Date(t *testing.T) {
	v, err := ParseRuleValue("2025-06-15", ValueTypeDate)

	assert.NoError(t, err)
	assert.Equal(t, KindTime, v.Kind)
	assert.Equal(t, 2025, v.Time.Year())
	assert.Equal(t, time.June, v.Time.Month())
}

func TestParseRuleValue_String(t *testing.T) {
	v, err := ParseRuleValue("approved", ValueTypeString)

	assert.NoError(t, err)
	assert.Equal(t, KindString, v.Kind)
	assert.Equal(t, "approved", v.Str)
}

// ============================================================================
// TEST SUITE 2: CONTEXT PATH RESOLUTION
// ============================================================================

func buildTestContext() *EvaluationContext {
	return &EvaluationContext{
		Farmer: map[string]Value{
			"first_name": Str("Wanjiku"),
			"kyc": MapOf(map[string]Value{
				"status": Str("approved"),
			}),
		},
		Farm: map[string]Value{
			"acreage_total": Number(4.5),
			"yield_history": ListOf(
				MapOf(map[string]Value{"year": Number(2024), "actual_yield": Number(900)}),
				MapOf(map[string]Value{"year": Number(2023), "actual_yield": Number(750)}),
			),
		},
		Credit:   map[string]Value{"score": Number(680)},
		KYC:      map[string]Value{"status": Str("approved")},
		Location: map[string]Value{},
		Custom:   map[string]Value{"cooperative_member": Boolean(true)},
	}
}

func TestResolve_SimpleField(t *testing.T) {
	ctx := buildTestContext()

	v := ctx.Resolve(FieldFarm, "acreage_total")

	assert.Equal(t, KindNumber, v.Kind)
	assert.Equal(t, 4.5, v.Num)
}

func TestResolve_NestedMapPath(t *testing.T) {
	ctx := buildTestContext()

	v := ctx.Resolve(FieldFarmer, "kyc.status")

	assert.Equal(t, "approved", v.Str)
}

func TestResolve_ListIndexPath(t *testing.T) {
	ctx := buildTestContext()

	v := ctx.Resolve(FieldFarm, "yield_history.1.actual_yield")

	assert.Equal(t, 750.0, v.Num)
}

func TestResolve_MissingFieldIsNull(t *testing.T) {
	ctx := buildTestContext()

	assert.True(t, ctx.Resolve(FieldFarm, "soil_type").IsNull())
	assert.True(t, ctx.Resolve(FieldFarm, "yield_history.9.year").IsNull(), "out-of-range index should be null")
	assert.True(t, ctx.Resolve(FieldFarmer, "first_name.deeper").IsNull(), "descending into a scalar should be null")
}

func TestResolve_UnknownFieldTypeUsesCustom(t *testing.T) {
	ctx := buildTestContext()

	v := ctx.Resolve(FieldCustom, "cooperative_member")

	assert.Equal(t, KindBool, v.Kind)
	assert.True(t, v.Bool)
}
