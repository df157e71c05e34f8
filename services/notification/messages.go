package notification

import (
	"fmt"

	"smartfix/models"
)

// RequestEventMessage returns the push title and body for a lifecycle
// event on a request.
func RequestEventMessage(req *models.ServiceRequest, event string) (string, string) {
	switch event {
	case "accept":
		return "Request accepted", fmt.Sprintf("A provider accepted %q.", req.Label())
	case "reject":
		return "Request declined", fmt.Sprintf("A provider declined %q. We'll keep looking.", req.Label())
	case "start":
		return "Work started", fmt.Sprintf("Work on %q has started.", req.Label())
	case "complete":
		return "Work completed", fmt.Sprintf("%q is marked complete. Please review and approve.", req.Label())
	case "approve":
		return "Work approved", fmt.Sprintf("The customer approved your work on %q.", req.Label())
	case "request_revision":
		return "Revision requested", fmt.Sprintf("The customer asked for changes to %q.", req.Label())
	case "restart":
		return "Rework started", fmt.Sprintf("Rework on %q has started.", req.Label())
	case "cancel":
		return "Request cancelled", fmt.Sprintf("%q was cancelled.", req.Label())
	}
	return "Request updated", fmt.Sprintf("%q was updated.", req.Label())
}

// RequestEventData is the data payload attached to request pushes.
func RequestEventData(req *models.ServiceRequest, event string) map[string]string {
	return map[string]string{
		"type":      "service_request",
		"event":     event,
		"requestId": req.ID,
		"status":    string(req.Status),
	}
}
