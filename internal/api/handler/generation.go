package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/portrait/internal/api/middleware"
	"github.com/timmy/portrait/internal/domain"
	"github.com/timmy/portrait/internal/gatekeeper"
	"github.com/timmy/portrait/internal/generator"
	"github.com/timmy/portrait/internal/service"
)

// GenerationHandler handles portrait generation and the counter.
type GenerationHandler struct {
	generationService *service.GenerationService
}

// NewGenerationHandler creates a new generation handler.
// Parameters:
//   - generationService: generation service instance.
//
// Returns:
//   - *GenerationHandler: initialized handler.
func NewGenerationHandler(generationService *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
	}
}

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	Prompt     string `json:"prompt"`
	PresetMood string `json:"presetMood"`
	Creator    string `json:"creator"`
}

// GenerateResponse is the body of a successful generation.
type GenerateResponse struct {
	GenerationNumber int64                    `json:"generation_number"`
	Mood             domain.Mood              `json:"mood"`
	Seed             string                   `json:"seed"`
	CSS              string                   `json:"css"`
	HTML             string                   `json:"html"`
	Document         string                   `json:"document"`
	Provenance       *domain.ProvenanceRecord `json:"provenance"`
	Certificate      string                   `json:"certificate"`
	ArtifactURL      string                   `json:"artifact_url,omitempty"`
}

// Generate handles POST /api/v1/generate.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
			"code":  "invalid_request",
		})
		return
	}

	caller := middleware.GetCaller(c)
	result, err := h.generationService.Generate(c.Request.Context(), service.GenerateRequest{
		Prompt:     req.Prompt,
		PresetMood: req.PresetMood,
		Creator:    req.Creator,
		Caller:     caller,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if left := h.generationService.Remaining(caller); left != gatekeeper.Unlimited {
		c.Header("X-Quota-Remaining", strconv.Itoa(left))
	}
	art := result.Artwork
	c.JSON(http.StatusOK, GenerateResponse{
		GenerationNumber: result.Number,
		Mood:             art.Mood,
		Seed:             string(art.Seed),
		CSS:              art.CSS,
		HTML:             art.HTML,
		Document:         art.Document,
		Provenance:       art.Provenance,
		Certificate:      result.Certificate,
		ArtifactURL:      result.ArtifactURL,
	})
}

// Counter handles GET /api/v1/counter.
func (h *GenerationHandler) Counter(c *gin.Context) {
	snap, err := h.generationService.Counter(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Recent handles GET /api/v1/generations/recent.
func (h *GenerationHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "limit must be a positive integer",
			"code":  "invalid_limit",
		})
		return
	}

	entries, err := h.generationService.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generations": entries,
		"total":       len(entries),
	})
}

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var vErr *gatekeeper.ValidationError
	var qErr *gatekeeper.QuotaError
	var iErr *domain.InvariantError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": vErr.Reason,
			"code":  vErr.Code,
		})
	case errors.As(err, &qErr):
		retry := qErr.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(retry))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       qErr.Error(),
			"retry_after": retry,
		})
	case errors.As(err, &iErr), errors.Is(err, generator.ErrSchemaMismatch):
		middleware.GetLogger(c).WithError(err).Error("Invariant violated")
		middleware.CaptureError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Generation produced invalid parameters",
			"code":  "invariant_violation",
		})
	default:
		middleware.GetLogger(c).WithError(err).Error("Request failed")
		middleware.CaptureError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
