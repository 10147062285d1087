package event

import "github.com/jajuok/agripro-sub000/internal/models"

// StatusChangeEvent matches the payload the notification service expects for
// assessment outcome pushes.
type StatusChangeEvent struct {
	FarmerID     string `json:"farmer_id"`
	AssessmentID string `json:"assessment_id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Message      string `json:"message"`
}

const StatusChangeQueue string = "push_noti_events"

const EventTypeStatusChange = "status_change"

type statusMessage struct {
	Title   string
	Message string
}

// statusMessages keys the outcome notification text by final assessment
// status. Unknown statuses fall back to the default entry.
var statusMessages = map[models.AssessmentStatus]statusMessage{
	models.AssessmentApproved: {
		Title:   "Application approved",
		Message: "Congratulations! Your application has been approved and you are now enrolled in the scheme.",
	},
	models.AssessmentEligible: {
		Title:   "Application under review",
		Message: "You meet the scheme requirements. Your application has been forwarded for review and you will be notified of the decision.",
	},
	models.AssessmentNotEligible: {
		Title:   "Application unsuccessful",
		Message: "Unfortunately your application did not meet the scheme requirements. You may re-apply once your circumstances change.",
	},
	models.AssessmentWaitlisted: {
		Title:   "Application waitlisted",
		Message: "You qualify for the scheme but it is currently at capacity. You have been placed on the waitlist and will be contacted when a slot opens.",
	},
	models.AssessmentRejected: {
		Title:   "Application rejected",
		Message: "Your application has been reviewed and was not approved. Contact support for more information.",
	},
}

var defaultStatusMessage = statusMessage{
	Title:   "Application update",
	Message: "There is an update on your scheme application. Check the app for details.",
}

// MessageForStatus returns the notification title and body for a final
// assessment status.
func MessageForStatus(status models.AssessmentStatus) (string, string) {
	if m, ok := statusMessages[status]; ok {
		return m.Title, m.Message
	}
	return defaultStatusMessage.Title, defaultStatusMessage.Message
}
