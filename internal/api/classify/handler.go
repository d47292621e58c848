// Package classify provides the REST API handler for food image
// classification. The uploaded image is written to a temp file and handed to
// the out-of-process classifier.
package classify

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/classifier"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// maxImageBytes caps uploads at 10 MiB.
const maxImageBytes = 10 << 20

// ImageClassifier interface for classification operations.
type ImageClassifier interface {
	Classify(ctx context.Context, imagePath string) (*classifier.Prediction, error)
}

// Handler handles classification API requests.
type Handler struct {
	classifier ImageClassifier
	log        *logger.Logger
}

// NewHandler creates a new classify handler.
func NewHandler(cls *classifier.Classifier, log *logger.Logger) *Handler {
	return &Handler{classifier: cls, log: log}
}

// NewHandlerWithInterfaces creates a new classify handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(cls ImageClassifier, log *logger.Logger) *Handler {
	return &Handler{classifier: cls, log: log}
}

// Classify accepts a multipart image upload and returns the predicted food
// label with its confidence.
// POST /api/classify.
func (h *Handler) Classify(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxImageBytes {
		h.errorResponse(c, http.StatusBadRequest, "image exceeds the 10MB limit")
		return
	}

	tmp, err := os.CreateTemp("", "nutriwise-classify-*"+filepath.Ext(file.Filename))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create temp file for upload")
		h.errorResponse(c, http.StatusInternalServerError, "failed to process upload")
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		h.log.Error().Err(err).Msg("Failed to save uploaded image")
		h.errorResponse(c, http.StatusInternalServerError, "failed to process upload")
		return
	}

	prediction, err := h.classifier.Classify(c.Request.Context(), tmpPath)
	if err != nil {
		if errors.Is(err, classifier.ErrPredictionFailed) {
			h.errorResponse(c, http.StatusBadRequest, "image could not be classified")
			return
		}
		h.log.Error().Err(err).Msg("Classifier run failed")
		h.errorResponse(c, http.StatusInternalServerError, "classification failed")
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
