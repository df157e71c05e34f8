package models

type UserStatistics struct {
	UserID         string                  `json:"userId"`
	Total          int64                   `json:"total"`
	ByStatus       map[RequestStatus]int64 `json:"byStatus"`
	CompletionRate float64                 `json:"completionRate"`
	TotalBudget    float64                 `json:"totalBudget"`
	AverageBudget  float64                 `json:"averageBudget"`
}

type ProviderStatistics struct {
	ProviderID             string                  `json:"providerId"`
	Total                  int64                   `json:"total"`
	ByStatus               map[RequestStatus]int64 `json:"byStatus"`
	CompletionRate         float64                 `json:"completionRate"`
	Revenue                float64                 `json:"revenue"`
	AverageCompletionHours float64                 `json:"averageCompletionHours"`
	FastestCompletionHours float64                 `json:"fastestCompletionHours"`
	SlowestCompletionHours float64                 `json:"slowestCompletionHours"`
	Rating                 float64                 `json:"rating"`
	TotalReviews           int                     `json:"totalReviews"`
	CompletedJobs          int                     `json:"completedJobs"`
}

// StatusCount is one row of a group-by-status aggregation.
type StatusCount struct {
	Status   RequestStatus `bson:"_id"`
	Count    int64         `bson:"count"`
	Budget   float64       `bson:"budget"`
	Budgeted int64         `bson:"budgeted"`
}

// CompletionTimes summarises started→completed durations in hours.
type CompletionTimes struct {
	Count   int64   `bson:"count"`
	Average float64 `bson:"avgHours"`
	Fastest float64 `bson:"minHours"`
	Slowest float64 `bson:"maxHours"`
}
