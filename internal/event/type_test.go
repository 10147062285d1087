package event

import (
	"testing"

	"github.com/jajuok/agripro-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMessageForStatus_KnownStatuses(t *testing.T) {
	for _, status := range []models.AssessmentStatus{
		models.AssessmentApproved,
		models.AssessmentEligible,
		models.AssessmentNotEligible,
		models.AssessmentWaitlisted,
		models.AssessmentRejected,
	} {
		title, message := MessageForStatus(status)
		assert.NotEmpty(t, title, "status %s needs a title", status)
		assert.NotEmpty(t, message, "status %s needs a message", status)
	}
}

func TestMessageForStatus_UnknownStatusFallsBack(t *testing.T) {
	title, message := MessageForStatus(models.AssessmentStatus("something_new"))

	defaultTitle, defaultMessage := defaultStatusMessage.Title, defaultStatusMessage.Message
	assert.Equal(t, defaultTitle, title)
	assert.Equal(t, defaultMessage, message)
}
