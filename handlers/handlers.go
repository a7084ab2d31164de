package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"plant-diagnosis-service/analyzer"
	"plant-diagnosis-service/config"
	"plant-diagnosis-service/imaging"
	"plant-diagnosis-service/metrics"
	"plant-diagnosis-service/models"
)

const serviceName = "plant-diagnosis-service"

// Handlers contains all HTTP handlers
type Handlers struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, a *analyzer.Analyzer) *Handlers {
	return &Handlers{
		cfg:      cfg,
		analyzer: a,
	}
}

// Root returns the API welcome message
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the plant disease diagnosis API. POST an image to /predict/ to analyze it.",
	})
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Predict accepts a multipart image upload in the "file" field, forwards it
// to the model service and returns the diagnosis JSON.
func (h *Handlers) Predict(c *gin.Context) {
	start := time.Now()
	result := "error"
	defer func() {
		metrics.PredictRequestsTotal.WithLabelValues(result).Inc()
		metrics.PredictDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		result = "bad_input"
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Detail: "Missing file upload: send the image in the multipart form field \"file\".",
		})
		return
	}

	if fileHeader.Size == 0 {
		result = "bad_input"
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Detail: "Uploaded file is empty.",
		})
		return
	}

	if fileHeader.Size > h.cfg.MaxUploadBytes {
		result = "bad_input"
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Detail: fmt.Sprintf("Uploaded file exceeds the %d byte limit.", h.cfg.MaxUploadBytes),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Detail: "Failed to read the uploaded file.",
		})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Detail: "Failed to read the uploaded file.",
		})
		return
	}

	mimeType, err := imaging.Validate(imageData)
	if err != nil {
		result = "bad_input"
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Detail: err.Error(),
		})
		return
	}
	metrics.UploadBytes.Observe(float64(len(imageData)))

	imageData, mimeType, err = imaging.Normalize(imageData, mimeType, h.cfg.MaxImageDimension)
	if err != nil {
		log.WithError(err).Error("Failed to normalize uploaded image")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Detail: "Failed to process the uploaded image.",
		})
		return
	}

	diagnosis, err := h.analyzer.Diagnose(c.Request.Context(), imageData, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrBadReply):
			result = "bad_reply"
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Detail: "The AI did not return a valid diagnosis. Please try again.",
			})
		case errors.Is(err, analyzer.ErrModel):
			result = "model_error"
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Detail: "Failed to reach the AI analysis service. Please try again later.",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Detail: "An unexpected error occurred while processing the image.",
			})
		}
		return
	}

	result = "ok"
	c.JSON(http.StatusOK, diagnosis)
}
