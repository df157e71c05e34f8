package models

import "time"

type ReviewStatus string

const (
	ReviewActive  ReviewStatus = "active"
	ReviewFlagged ReviewStatus = "flagged"
	ReviewRemoved ReviewStatus = "removed"
)

type Review struct {
	ID               string       `bson:"id" json:"id"`
	Rating           int          `bson:"rating" json:"rating"`
	Comment          string       `bson:"comment" json:"comment"`
	Images           []string     `bson:"images,omitempty" json:"images,omitempty"`
	Status           ReviewStatus `bson:"status" json:"status"`
	State            EntityState  `bson:"state" json:"-"`
	UserID           string       `bson:"userId" json:"userId"`
	ProviderID       string       `bson:"providerId" json:"providerId"`
	ServiceRequestID string       `bson:"serviceRequestId" json:"serviceRequestId"`
	CreatedAt        time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Counts reports whether the review takes part in the provider's rating.
func (r *Review) Counts() bool {
	return r.Status == ReviewActive && r.State != StateDeleted
}

type CreateReviewInput struct {
	ServiceRequestID string   `json:"serviceRequestId" validate:"required"`
	Rating           int      `json:"rating" validate:"required,min=1,max=5"`
	Comment          string   `json:"comment" validate:"max=1000"`
	Images           []string `json:"images" validate:"omitempty,dive,url"`
}

type UpdateReviewInput struct {
	Rating  *int          `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string       `json:"comment" validate:"omitempty,max=1000"`
	Images  []string      `json:"images" validate:"omitempty,dive,url"`
	Status  *ReviewStatus `json:"status" validate:"omitempty,oneof=active flagged removed"`
}
