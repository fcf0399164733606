package controllers

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"change-order-api/config"
	"change-order-api/models"
	"change-order-api/services"
	"change-order-api/store"
	"change-order-api/utils"

	"github.com/gin-gonic/gin"
)

// sendDecisionMail is swapped out in tests.
var sendDecisionMail = config.SendMail

var validTeamStatuses = map[models.TeamStatus]bool{
	models.TeamStatusNew:       true,
	models.TeamStatusInReview:  true,
	models.TeamStatusNeedsInfo: true,
	models.TeamStatusApproved:  true,
	models.TeamStatusDenied:    true,
}

// GetTeamQueue lists change orders for the review team, newest first.
func GetTeamQueue(c *gin.Context) {
	records, err := lifecycle.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch queue"})
		return
	}

	if status := c.Query("team_status"); status != "" {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.TeamStatus) == status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{
		"queue": records,
		"total": len(records),
	})
}

// UpdateTeamQueueItem applies reviewer edits (status, notes) to a queue item.
func UpdateTeamQueueItem(c *gin.Context) {
	var req struct {
		TeamStatus    *models.TeamStatus `json:"team_status"`
		ReviewerNotes *string            `json:"reviewer_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.TeamStatus != nil && !validTeamStatuses[*req.TeamStatus] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team status"})
		return
	}

	rec, err := lifecycle.UpdateTeamQueueItem(c.Param("id"), services.TeamQueueUpdate{
		TeamStatus:    req.TeamStatus,
		ReviewerNotes: req.ReviewerNotes,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Change order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update queue item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"change_order": rec,
	})
}

type teamDecisionRequest struct {
	Action                  string                  `json:"action" binding:"required"`
	DecidedBy               string                  `json:"decided_by" binding:"required"`
	DecisionExplanation     string                  `json:"decision_explanation"`
	ContractorFacingMessage string                  `json:"contractor_facing_message"`
	ApprovedAmount          float64                 `json:"approved_amount"`
	DenialReasonCode        models.DenialReasonCode `json:"denial_reason_code"`
	NeedsInfoChecklist      []string                `json:"needs_info_checklist"`
	AcknowledgeLate         bool                    `json:"acknowledge_late"`
}

// ApplyTeamDecision handles needs-info/approve/deny decisions and dispatches
// the decision email for any transition that actually happened.
func ApplyTeamDecision(c *gin.Context) {
	id := c.Param("id")

	var req teamDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	current, err := lifecycle.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Change order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load change order"})
		return
	}

	var decision models.TeamDecision
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "needs_info":
		decision = models.NeedsInfoDecision{
			DecidedBy:               req.DecidedBy,
			DecisionExplanation:     req.DecisionExplanation,
			ContractorFacingMessage: req.ContractorFacingMessage,
			NeedsInfoChecklist:      req.NeedsInfoChecklist,
		}
	case "approve":
		// The lifecycle service never recomputes lateness at decision time;
		// approving work that is now older than 24 hours needs an explicit
		// acknowledgment from the reviewer.
		if !current.IsFinalized && services.IsPast24Hours(current.WorkPerformedAt) && !req.AcknowledgeLate {
			c.JSON(http.StatusConflict, gin.H{"error": "Work is older than 24 hours; approval requires acknowledge_late"})
			return
		}
		decision = models.ApproveDecision{
			DecidedBy:               req.DecidedBy,
			ApprovedAmount:          req.ApprovedAmount,
			DecisionExplanation:     req.DecisionExplanation,
			ContractorFacingMessage: req.ContractorFacingMessage,
		}
	case "deny":
		decision = models.DenyDecision{
			DecidedBy:               req.DecidedBy,
			DenialReasonCode:        req.DenialReasonCode,
			DecisionExplanation:     req.DecisionExplanation,
			ContractorFacingMessage: req.ContractorFacingMessage,
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be one of needs_info, approve, deny"})
		return
	}

	wasFinalized := current.IsFinalized

	rec, err := lifecycle.ApplyTeamDecision(id, decision)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Change order not found"})
		case errors.Is(err, services.ErrNotSubmitted):
			c.JSON(http.StatusConflict, gin.H{"error": "Only submitted change orders can be approved or denied"})
		case errors.Is(err, services.ErrEmptyChecklist),
			errors.Is(err, services.ErrInvalidDenialReason),
			errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply decision"})
		}
		return
	}

	// A decision against a finalized record is a no-op; do not re-send the
	// notification for it.
	if !wasFinalized {
		rec = dispatchDecisionEmail(rec)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"change_order": rec,
	})
}

// dispatchDecisionEmail sends the prepared notification and records the
// delivery outcome. The decision itself stands regardless of what happens
// here.
func dispatchDecisionEmail(rec *models.StoredChangeOrder) *models.StoredChangeOrder {
	update := services.DeliveryUpdate{Status: models.EmailFailed}

	if !utils.ValidateEmail(rec.DecisionEmailTo) {
		update.Error = "invalid contractor email address"
	} else {
		result, err := sendDecisionMail([]string{rec.DecisionEmailTo},
			rec.DecisionEmailSubject, rec.DecisionEmailBody, rec.DecisionEmailHTML)
		update.Mode = result.Mode
		update.PreviewURL = result.PreviewURL
		if err != nil {
			update.Error = err.Error()
			log.Printf("decision email send failed (change_order=%s to=%s): %v",
				rec.ID, rec.DecisionEmailTo, err)
		} else {
			sentAt := time.Now()
			update.Status = models.EmailSent
			update.SentAt = &sentAt
		}
	}

	updated, err := lifecycle.UpdateDecisionEmailDelivery(rec.ID, update)
	if err != nil {
		log.Printf("failed to record delivery status (change_order=%s): %v", rec.ID, err)
		return rec
	}
	return updated
}

// UpdateDecisionEmailDelivery lets an external transport report a delivery
// outcome. Last write wins, finalized or not.
func UpdateDecisionEmailDelivery(c *gin.Context) {
	var req struct {
		Status     models.EmailStatus `json:"status" binding:"required"`
		Error      string             `json:"error"`
		PreviewURL string             `json:"preview_url"`
		Mode       string             `json:"mode"`
		SentAt     *time.Time         `json:"sent_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	switch req.Status {
	case models.EmailPending, models.EmailSent, models.EmailFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email status"})
		return
	}

	rec, err := lifecycle.UpdateDecisionEmailDelivery(c.Param("id"), services.DeliveryUpdate{
		Status:     req.Status,
		Error:      req.Error,
		PreviewURL: req.PreviewURL,
		Mode:       req.Mode,
		SentAt:     req.SentAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Change order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"change_order": rec,
	})
}
