package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/portrait/internal/provenance"
	"github.com/timmy/portrait/internal/service"
)

// ArtifactHandler serves downloads and certificates of past generations.
type ArtifactHandler struct {
	generationService *service.GenerationService
}

// NewArtifactHandler creates a new artifact handler.
func NewArtifactHandler(generationService *service.GenerationService) *ArtifactHandler {
	return &ArtifactHandler{generationService: generationService}
}

// Download handles GET /api/v1/generations/:number/download.
func (h *ArtifactHandler) Download(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="portrait-%d.html"`, a.Number))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(a.Document))
}

// Certificate handles GET /api/v1/generations/:number/certificate.
// format=text (default) returns plain text, format=json the JSON document.
func (h *ArtifactHandler) Certificate(c *gin.Context) {
	format := c.DefaultQuery("format", "text")
	if format != "text" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "format must be text or json",
			"code":  "invalid_format",
		})
		return
	}

	a, ok := h.load(c)
	if !ok {
		return
	}

	if format == "json" {
		data, err := provenance.MarshalCertificate(a.Provenance, a.Number)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-%d.json"`, a.Number))
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-%d.txt"`, a.Number))
	c.String(http.StatusOK, a.Certificate())
}

func (h *ArtifactHandler) load(c *gin.Context) (*service.Artifact, bool) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "generation number must be a positive integer",
			"code":  "invalid_number",
		})
		return nil, false
	}

	a, err := h.generationService.Artifact(c.Request.Context(), number)
	if errors.Is(err, service.ErrArtifactNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("generation #%d not found", number),
		})
		return nil, false
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return a, true
}
