package services

import (
	"testing"

	"github.com/jajuok/agripro-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed_LifecycleGraph(t *testing.T) {
	allowed := []struct {
		from, to models.SchemeStatus
	}{
		{models.SchemeDraft, models.SchemeActive},
		{models.SchemeDraft, models.SchemeArchived},
		{models.SchemeActive, models.SchemeSuspended},
		{models.SchemeActive, models.SchemeClosed},
		{models.SchemeSuspended, models.SchemeActive},
		{models.SchemeSuspended, models.SchemeClosed},
		{models.SchemeClosed, models.SchemeArchived},
	}
	for _, tc := range allowed {
		assert.True(t, transitionAllowed(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	forbidden := []struct {
		from, to models.SchemeStatus
	}{
		{models.SchemeActive, models.SchemeDraft},
		{models.SchemeClosed, models.SchemeActive},
		{models.SchemeArchived, models.SchemeActive},
		{models.SchemeArchived, models.SchemeDraft},
		{models.SchemeDraft, models.SchemeClosed},
	}
	for _, tc := range forbidden {
		assert.False(t, transitionAllowed(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestValidateRuleRequest(t *testing.T) {
	valid := &models.CreateRuleRequest{
		SchemeID:  uuid.New(),
		Name:      "minimum credit score",
		FieldType: models.FieldCredit,
		FieldName: "score",
		Operator:  models.OperatorGreaterOrEqual,
		Value:     "600",
		ValueType: models.ValueTypeNumber,
	}
	assert.NoError(t, validateRuleRequest(valid))

	noName := *valid
	noName.Name = "  "
	assert.Error(t, validateRuleRequest(&noName))

	badOperator := *valid
	badOperator.Operator = "approximately_equals"
	assert.Error(t, validateRuleRequest(&badOperator))

	badValueType := *valid
	badValueType.ValueType = "decimal"
	assert.Error(t, validateRuleRequest(&badValueType))

	negativeWeight := *valid
	w := -1.0
	negativeWeight.Weight = &w
	assert.Error(t, validateRuleRequest(&negativeWeight))
}
