package repository

import (
	providerRepo "smartfix/database/repository/provider"
	requestRepo "smartfix/database/repository/request"
	reviewRepo "smartfix/database/repository/review"
	userRepo "smartfix/database/repository/user"
)

// Re-export the repository interfaces and Mongo constructors.
type (
	RequestRepository  = requestRepo.RequestRepository
	ProviderRepository = providerRepo.ProviderRepository
	ReviewRepository   = reviewRepo.ReviewRepository
	UserRepository     = userRepo.UserRepository

	RequestListFilter = requestRepo.ListFilter
	CandidateQuery    = providerRepo.CandidateQuery
)

var (
	NewMongoRequestRepo  = requestRepo.NewMongoRequestRepo
	NewMongoProviderRepo = providerRepo.NewMongoProviderRepo
	NewMongoReviewRepo   = reviewRepo.NewMongoReviewRepo
	NewMongoUserRepo     = userRepo.NewMongoUserRepo
)
