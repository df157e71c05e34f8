package handlers

import (
	"net/http"

	"smartfix/models"
	"smartfix/services/review"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	Service review.ReviewService
	Logger  *zap.Logger
}

func NewReviewHandler(svc review.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{Service: svc, Logger: logger}
}

func (h *ReviewHandler) CreateReviewHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	rv, err := h.Service.CreateReview(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHandler) UpdateReviewHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.UpdateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	rv, err := h.Service.UpdateReview(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, rv)
}

func (h *ReviewHandler) DeleteReviewHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteReview(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

func (h *ReviewHandler) ListProviderReviewsHandler(c *gin.Context) {
	reviews, err := h.Service.ListProviderReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}
