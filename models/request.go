package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus is the lifecycle status of a service request.
type RequestStatus string

const (
	StatusPending           RequestStatus = "pending"
	StatusAccepted          RequestStatus = "accepted"
	StatusInProgress        RequestStatus = "in_progress"
	StatusCompleted         RequestStatus = "completed"
	StatusApproved          RequestStatus = "approved"
	StatusRevisionRequested RequestStatus = "revision_requested"
	StatusCancelled         RequestStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []RequestStatus{
	StatusPending,
	StatusAccepted,
	StatusInProgress,
	StatusCompleted,
	StatusApproved,
	StatusRevisionRequested,
	StatusCancelled,
}

func (s RequestStatus) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// HasAssignee reports whether a request in this status must carry an
// assigned provider.
func (s RequestStatus) HasAssignee() bool {
	switch s {
	case StatusAccepted, StatusInProgress, StatusCompleted, StatusApproved, StatusRevisionRequested:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Budget is a price range. A plain JSON number decodes to Min == Max.
type Budget struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

func (b *Budget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("budget must be a number or {min,max}: %w", err)
		}
		b.Min, b.Max = v, v
		return nil
	}
	type plain Budget
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Budget(p)
	return nil
}

type Location struct {
	Geo     GeoPoint `bson:"geo" json:"geo"`
	Address string   `bson:"address" json:"address"`
}

type RejectionRecord struct {
	ProviderID string    `bson:"providerId" json:"providerId"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RejectedAt time.Time `bson:"rejectedAt" json:"rejectedAt"`
}

// CompletionData is submitted by the provider when marking work complete.
type CompletionData struct {
	Notes  string   `bson:"notes,omitempty" json:"notes,omitempty"`
	Images []string `bson:"images,omitempty" json:"images,omitempty"`
}

type ServiceRequest struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"userId" json:"userId"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description" json:"description"`
	Category      string     `bson:"category" json:"category"`
	Urgency       Urgency    `bson:"urgency" json:"urgency"`
	Budget        *Budget    `bson:"budget,omitempty" json:"budget,omitempty"`
	Location      Location   `bson:"location" json:"location"`
	Images        []string   `bson:"images,omitempty" json:"images,omitempty"`
	ScheduledDate *time.Time `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`

	Status           RequestStatus `bson:"status" json:"status"`
	AssignedProvider string        `bson:"assignedProvider,omitempty" json:"assignedProvider,omitempty"`

	AcceptedAt          *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	StartedAt           *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt         *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	ApprovedAt          *time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CancelledAt         *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	RevisionRequestedAt *time.Time `bson:"revisionRequestedAt,omitempty" json:"revisionRequestedAt,omitempty"`

	CancelledBy        string            `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledProvider  string            `bson:"cancelledProvider,omitempty" json:"cancelledProvider,omitempty"`
	CancellationReason string            `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	RevisionNotes      string            `bson:"revisionNotes,omitempty" json:"revisionNotes,omitempty"`
	Completion         *CompletionData   `bson:"completion,omitempty" json:"completion,omitempty"`
	Rejections         []RejectionRecord `bson:"rejections,omitempty" json:"rejections,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Label names the request in messages, falling back to its category when
// it has no title.
func (r *ServiceRequest) Label() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Category + " request"
}

// RejectedBy reports whether the provider already rejected this request.
func (r *ServiceRequest) RejectedBy(providerID string) bool {
	for _, rec := range r.Rejections {
		if rec.ProviderID == providerID {
			return true
		}
	}
	return false
}

// CreateRequestInput is the caller-supplied payload for a new request.
type CreateRequestInput struct {
	Title         string     `json:"title" validate:"max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	Category      string     `json:"category" validate:"required"`
	Urgency       Urgency    `json:"urgency" validate:"omitempty,oneof=low medium high"`
	Budget        *Budget    `json:"budget" validate:"omitempty"`
	Location      *Location  `json:"location" validate:"required"`
	Images        []string   `json:"images" validate:"omitempty,dive,url"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}
