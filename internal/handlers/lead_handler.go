package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/lead-labeler/internal/dtos"
	"github.com/justsurfingit/lead-labeler/internal/extract"
	"github.com/justsurfingit/lead-labeler/internal/models"
	"github.com/justsurfingit/lead-labeler/internal/predict"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

type LeadHandler struct {
	LeadService *services.LeadService
}

func NewLeadHandler(l *services.LeadService) *LeadHandler {
	return &LeadHandler{LeadService: l}
}

// LabelLead is the POST /label_fetch endpoint
func (h *LeadHandler) LabelLead(c *gin.Context) {
	var req dtos.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	modelName := req.Model()
	if modelName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model_name is required"})
		return
	}

	var (
		record *models.Record
		err    error
	)
	if req.IsRaw() {
		record, err = h.LeadService.LabelFeed(c.Request.Context(), req.Lead, modelName)
	} else {
		f := req.Fields
		f.Message = extract.Normalize(f.Message)
		if f.PostedOn == "" {
			f.PostedOn = h.LeadService.Extractor.PostedOnNow()
		}
		record, err = h.LeadService.LabelFields(c.Request.Context(), f, modelName)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(labelErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// FetchData is the GET /data_fetch endpoint
func (h *LeadHandler) FetchData(c *gin.Context) {
	records, err := h.LeadService.ListRecords(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch records: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func labelErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, predict.ErrUnknownCategory), errors.Is(err, predict.ErrUnknownCountry):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
