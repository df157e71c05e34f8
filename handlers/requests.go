package handlers

import (
	"mime/multipart"
	"net/http"

	"smartfix/models"
	"smartfix/services/request"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImagesPerUpload = 10

type RequestHandler struct {
	Service request.RequestService
	Logger  *zap.Logger
}

func NewRequestHandler(svc request.RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{Service: svc, Logger: logger}
}

type reasonBody struct {
	Reason string `json:"reason"`
}

type revisionBody struct {
	Notes string `json:"notes"`
}

// bindOptionalJSON binds the body when one was sent.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return false
	}
	return true
}

func (h *RequestHandler) CreateRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req, err := h.Service.CreateRequest(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RequestHandler) GetRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	req, err := h.Service.GetRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) ListRequestsHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	status := models.RequestStatus(c.Query("status"))
	reqs, err := h.Service.ListRequests(c.Request.Context(), actor, status)
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "count": len(reqs)})
}

func (h *RequestHandler) DeleteRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteRequest(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request deleted"})
}

func (h *RequestHandler) AcceptRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.AcceptRequest(c.Request.Context(), actor, c.Param("id"))
	})
}

func (h *RequestHandler) RejectRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body reasonBody
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.RejectRequest(c.Request.Context(), actor, c.Param("id"), body.Reason)
	})
}

func (h *RequestHandler) StartRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.StartRequest(c.Request.Context(), actor, c.Param("id"))
	})
}

func (h *RequestHandler) CompleteRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body models.CompletionData
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.CompleteRequest(c.Request.Context(), actor, c.Param("id"), body)
	})
}

func (h *RequestHandler) ApproveRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.ApproveCompletion(c.Request.Context(), actor, c.Param("id"))
	})
}

func (h *RequestHandler) RequestRevisionHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body revisionBody
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.RequestRevision(c.Request.Context(), actor, c.Param("id"), body.Notes)
	})
}

func (h *RequestHandler) RestartRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.RestartRequest(c.Request.Context(), actor, c.Param("id"))
	})
}

func (h *RequestHandler) CancelRequestHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body reasonBody
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.CancelRequest(c.Request.Context(), actor, c.Param("id"), body.Reason)
	})
}

// MatchProvidersHandler reads maxDistanceKm, minRating and maxProviders
// from the query string.
func (h *RequestHandler) MatchProvidersHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var criteria models.MatchCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	matched, err := h.Service.FindMatchingProviders(c.Request.Context(), actor, c.Param("id"), criteria)
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": matched, "count": len(matched)})
}

// UploadImagesHandler accepts multipart "images" files.
func (h *RequestHandler) UploadImagesHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "images not provided", "details": err.Error()})
		return
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "images not provided"})
		return
	}
	if len(headers) > maxImagesPerUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many images", "details": "at most 10 per upload"})
		return
	}

	uploads := make([]request.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image", "details": err.Error()})
			return
		}
		files = append(files, f)
		uploads = append(uploads, request.Upload{Filename: fh.Filename, Content: f})
	}

	h.respond(c, func() (*models.ServiceRequest, error) {
		return h.Service.AttachImages(c.Request.Context(), actor, c.Param("id"), uploads)
	})
}

func (h *RequestHandler) UserStatisticsHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stats, err := h.Service.GetStatisticsByUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RequestHandler) ProviderStatisticsHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stats, err := h.Service.GetStatisticsByProvider(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RequestHandler) respond(c *gin.Context, op func() (*models.ServiceRequest, error)) {
	req, err := op()
	if err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, req)
}
