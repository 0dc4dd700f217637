package api

import (
	"errors"
	"fmt"
	"investadvisor/server/config"
	"investadvisor/server/internal/models"
	"investadvisor/server/internal/prediction"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// HistoryReader serves previously recorded predictions
type HistoryReader interface {
	GetRecentPredictions(limit int, locality string) ([]models.PredictionRecord, error)
}

type Handler struct {
	advisor *prediction.Advisor
	history HistoryReader
	logger  *logrus.Logger
}

// pageData feeds the form template
type pageData struct {
	Input                models.PropertyInput
	OwnerTypes           []string
	PropertyTypes        []string
	FurnishedStatuses    []string
	AvailabilityStatuses []string
	Localities           []string
	Result               *models.Assessment
	Error                string
}

// NewHandler creates the HTTP handler. history may be nil when prediction
// history is disabled.
func NewHandler(advisor *prediction.Advisor, history HistoryReader, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		advisor: advisor,
		history: history,
		logger:  logger,
	}
}

func (h *Handler) newPage(input models.PropertyInput) pageData {
	return pageData{
		Input:                input,
		OwnerTypes:           models.OwnerTypes,
		PropertyTypes:        models.PropertyTypes,
		FurnishedStatuses:    models.FurnishedStatuses,
		AvailabilityStatuses: models.AvailabilityStatuses,
		Localities:           h.advisor.Reference().Localities(),
	}
}

// ShowForm renders the empty form with its default values
func (h *Handler) ShowForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.newPage(config.FormDefaults))
}

// SubmitForm runs one assessment from the form and renders the result
func (h *Handler) SubmitForm(c *gin.Context) {
	var input models.PropertyInput
	if err := c.ShouldBind(&input); err != nil {
		h.logger.WithError(err).Warn("Invalid form submission")
		page := h.newPage(input)
		page.Error = describeBindingError(err)
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	page := h.newPage(input)
	assessment, status, message := h.assess(c, input)
	if assessment == nil {
		page.Error = message
		c.HTML(status, "index.html", page)
		return
	}

	page.Result = assessment
	c.HTML(http.StatusOK, "index.html", page)
}

// Predict is the JSON flavor of SubmitForm
func (h *Handler) Predict(c *gin.Context) {
	var input models.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.WithError(err).Warn("Invalid prediction request")
		c.JSON(http.StatusBadRequest, gin.H{"error": describeBindingError(err)})
		return
	}

	assessment, status, message := h.assess(c, input)
	if assessment == nil {
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// assess validates the labels and runs the advisor. On failure the
// assessment is nil and the status and message describe the problem.
func (h *Handler) assess(c *gin.Context, input models.PropertyInput) (*models.Assessment, int, string) {
	if err := input.ValidateLabels(); err != nil {
		h.logger.WithError(err).Warn("Invalid property labels")
		return nil, http.StatusBadRequest, "Invalid input: " + err.Error()
	}

	assessment, err := h.advisor.Assess(c.Request.Context(), input)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"city":     input.City,
			"locality": input.Locality,
		}).Error("Failed to assess property")

		if errors.Is(err, prediction.ErrSchemaMismatch) {
			return nil, http.StatusUnprocessableEntity, fmt.Sprintf("The models rejected the feature row: %v", err)
		}
		return nil, http.StatusInternalServerError, "Prediction failed, please try again"
	}

	return assessment, http.StatusOK, ""
}

func (h *Handler) GetLocalities(c *gin.Context) {
	ref := h.advisor.Reference()
	c.JSON(http.StatusOK, gin.H{
		"localities":    ref.Localities(),
		"global_median": ref.GlobalMedian(),
	})
}

func (h *Handler) GetRecentPredictions(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction history is disabled"})
		return
	}

	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}

	locality := c.Query("locality")
	records, err := h.history.GetRecentPredictions(limit, locality)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent predictions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent predictions"})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"localities": h.advisor.Reference().Len(),
		"history":    h.history != nil,
	})
}

func describeBindingError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("Invalid input: %v", err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return "Invalid input: " + strings.Join(parts, "; ")
}
