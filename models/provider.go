package models

import "time"

type ServiceArea struct {
	Geo      GeoPoint `bson:"geo" json:"geo"`
	RadiusKm float64  `bson:"radiusKm" json:"radiusKm"`
}

type PortfolioItem struct {
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Images      []string `bson:"images,omitempty" json:"images,omitempty"`
}

// Provider is a service provider profile. Rating, TotalReviews and
// CompletedJobs are derived fields owned by the rating aggregator and the
// approve transition.
type Provider struct {
	ID            string          `bson:"id" json:"id"`
	UserID        string          `bson:"userId" json:"userId"`
	BusinessName  string          `bson:"businessName" json:"businessName"`
	Verified      bool            `bson:"verified" json:"verified"`
	Active        bool            `bson:"active" json:"active"`
	State         EntityState     `bson:"state" json:"state"`
	Services      []string        `bson:"services" json:"services"`
	ServiceArea   ServiceArea     `bson:"serviceArea" json:"serviceArea"`
	Rating        float64         `bson:"rating" json:"rating"`
	TotalReviews  int             `bson:"totalReviews" json:"totalReviews"`
	CompletedJobs int             `bson:"completedJobs" json:"completedJobs"`
	RatingVersion int64           `bson:"ratingVersion" json:"-"`
	Portfolio     []PortfolioItem `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (p *Provider) Deleted() bool { return p.State == StateDeleted }

// Offers reports whether the provider lists the category (case-insensitive).
func (p *Provider) Offers(category string) bool {
	for _, s := range p.Services {
		if equalFold(s, category) {
			return true
		}
	}
	return false
}

// RatingSummary is the derived rating data written by the aggregator.
type RatingSummary struct {
	Rating       float64 `bson:"rating" json:"rating"`
	TotalReviews int     `bson:"totalReviews" json:"totalReviews"`
}

// ProviderCandidate is a provider returned by the candidate search together
// with the values the ranking needs.
type ProviderCandidate struct {
	Provider      Provider `bson:",inline"`
	DistanceKm    float64  `bson:"distanceKm"`
	AverageRating float64  `bson:"avgRating"`
	ReviewCount   int      `bson:"reviewCount"`
}

// MatchedProvider is one entry of a ranked matching result.
type MatchedProvider struct {
	ProviderID    string   `json:"providerId"`
	UserID        string   `json:"userId"`
	BusinessName  string   `json:"businessName"`
	Services      []string `json:"services"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	CompletedJobs int      `json:"completedJobs"`
	DistanceKm    float64  `json:"distanceKm"`
	Rank          int      `json:"rank"`
}

// MatchCriteria overrides the configured matching defaults for one call.
// A nil field falls back to the default; an explicit zero is kept.
type MatchCriteria struct {
	MaxDistanceKm *float64 `json:"maxDistanceKm,omitempty" form:"maxDistanceKm"`
	MinRating     *float64 `json:"minRating,omitempty" form:"minRating"`
	MaxProviders  *int     `json:"maxProviders,omitempty" form:"maxProviders"`
}
