package controllers

import (
	"errors"
	"net/http"
	"sort"

	"change-order-api/models"
	"change-order-api/services"
	"change-order-api/store"
	"change-order-api/utils"

	"github.com/gin-gonic/gin"
)

var lifecycle *services.LifecycleService

// Init wires the lifecycle service the handlers call into. Must run before
// the router starts serving.
func Init(svc *services.LifecycleService) {
	lifecycle = svc
}

func sanitizeInput(input *models.ChangeOrderInput) {
	input.ProjectID = utils.SanitizeInput(input.ProjectID)
	input.ContractorName = utils.SanitizeInput(input.ContractorName)
	input.ContractorEmail = utils.SanitizeInput(input.ContractorEmail)
	input.WorkPerformedAt = utils.SanitizeInput(input.WorkPerformedAt)
	input.Scope = utils.SanitizeInput(input.Scope)
	input.Unit = utils.SanitizeInput(input.Unit)
	input.AdditionalChargesReason = utils.SanitizeInput(input.AdditionalChargesReason)
	input.WhyNeeded = utils.SanitizeInput(input.WhyNeeded)
	input.WhyNotInTurnkey = utils.SanitizeInput(input.WhyNotInTurnkey)
}

// SaveDraft stores an incomplete change order without running the checklist.
func SaveDraft(c *gin.Context) {
	var input models.ChangeOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sanitizeInput(&input)

	rec, err := lifecycle.SaveDraft(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"change_order": rec,
	})
}

// SubmitChangeOrder runs the checklist and the 24-hour rule. A blocked
// outcome is still a created record, so it responds 201 either way.
func SubmitChangeOrder(c *gin.Context) {
	var input models.ChangeOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sanitizeInput(&input)

	rec, err := lifecycle.Submit(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit change order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"change_order":     rec,
		"blocking_reasons": rec.BlockingReasons,
	})
}

// GetChangeOrders lists every change order, newest first.
func GetChangeOrders(c *gin.Context) {
	records, err := lifecycle.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch change orders"})
		return
	}

	if status := c.Query("submission_status"); status != "" {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.SubmissionStatus) == status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{
		"change_orders": records,
		"total":         len(records),
	})
}

// GetChangeOrder returns a single change order by ID.
func GetChangeOrder(c *gin.Context) {
	rec, err := lifecycle.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Change order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch change order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"change_order": rec,
	})
}
