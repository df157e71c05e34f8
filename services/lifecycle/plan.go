package lifecycle

import (
	"strings"
	"time"

	"smartfix/apperrors"
	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Input carries the event-specific arguments of a transition.
type Input struct {
	// ActorID is recorded as cancelledBy.
	ActorID string
	// ProviderID is the acting provider. Required for accept and reject;
	// for start, complete and restart a non-empty value must match the
	// assigned provider (admins pass "").
	ProviderID string
	Reason     string
	Notes      string
	Completion *models.CompletionData
}

// Transition is a planned state change: the guard it was computed against
// and the fields to write.
type Transition struct {
	Event            Event
	From             models.RequestStatus
	To               models.RequestStatus
	ExpectedProvider string
	Set              bson.M
	Unset            []string
	Rejection        *models.RejectionRecord
}

// Plan validates event against the request's current state and computes
// the resulting writes. It does not touch storage.
func Plan(req *models.ServiceRequest, event Event, in Input, now time.Time) (*Transition, error) {
	to, ok := Next(req.Status, event)
	if !ok {
		return nil, apperrors.InvalidTransition(string(req.Status), string(event), rejectionReason(req.Status, event))
	}

	t := &Transition{
		Event:            event,
		From:             req.Status,
		To:               to,
		ExpectedProvider: req.AssignedProvider,
		Set:              bson.M{"status": to, "updatedAt": now},
	}

	switch event {
	case EventAccept:
		if in.ProviderID == "" {
			return nil, apperrors.Validation("provider id is required")
		}
		if req.AssignedProvider != "" {
			return nil, apperrors.InvalidTransition(string(req.Status), string(event), "request is already assigned")
		}
		t.Set["assignedProvider"] = in.ProviderID
		t.Set["acceptedAt"] = now

	case EventReject:
		if in.ProviderID == "" {
			return nil, apperrors.Validation("provider id is required")
		}
		t.Set = nil
		t.Rejection = &models.RejectionRecord{
			ProviderID: in.ProviderID,
			Reason:     strings.TrimSpace(in.Reason),
			RejectedAt: now,
		}

	case EventStart:
		if err := matchProvider(req, event, in); err != nil {
			return nil, err
		}
		t.Set["startedAt"] = now

	case EventComplete:
		if err := matchProvider(req, event, in); err != nil {
			return nil, err
		}
		t.Set["completedAt"] = now
		if in.Completion != nil {
			t.Set["completion"] = in.Completion
		}

	case EventApprove:
		t.Set["approvedAt"] = now

	case EventRequestRevision:
		notes := strings.TrimSpace(in.Notes)
		if notes == "" {
			return nil, apperrors.Validation("revision notes are required")
		}
		t.Set["revisionNotes"] = notes
		t.Set["revisionRequestedAt"] = now

	case EventRestart:
		if err := matchProvider(req, event, in); err != nil {
			return nil, err
		}
		// startedAt keeps the first start so completion time spans the rework.
		t.Unset = []string{"revisionNotes", "revisionRequestedAt", "completedAt", "completion"}

	case EventCancel:
		t.Set["cancelledAt"] = now
		t.Set["cancelledBy"] = in.ActorID
		if reason := strings.TrimSpace(in.Reason); reason != "" {
			t.Set["cancellationReason"] = reason
		}
		// the provider leaves the assignment but stays on record for statistics
		if req.AssignedProvider != "" {
			t.Set["cancelledProvider"] = req.AssignedProvider
			t.Unset = []string{"assignedProvider"}
		}
	}

	return t, nil
}

func matchProvider(req *models.ServiceRequest, event Event, in Input) error {
	if in.ProviderID != "" && in.ProviderID != req.AssignedProvider {
		return apperrors.InvalidTransition(string(req.Status), string(event), "provider mismatch")
	}
	return nil
}
