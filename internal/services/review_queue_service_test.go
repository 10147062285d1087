package services

import (
	"testing"

	"github.com/jajuok/agripro-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReviewPriority_Mapping(t *testing.T) {
	assert.Equal(t, 1, reviewPriority(models.RiskLevelVeryHigh), "very high risk goes to the front")
	assert.Equal(t, 2, reviewPriority(models.RiskLevelHigh))
	assert.Equal(t, 5, reviewPriority(models.RiskLevelMedium))
	assert.Equal(t, 5, reviewPriority(models.RiskLevelLow))
}
