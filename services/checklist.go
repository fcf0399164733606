package services

import (
	"fmt"
	"strings"
	"time"

	"change-order-api/models"
)

// LateSubmissionReason is appended to the blocking reasons when the work was
// performed more than 24 hours before the submission attempt.
const LateSubmissionReason = "submitted after 24 hours and cannot be finalized"

// Checklist violation codes. Stable tags used for deduplication and tests.
const (
	CodeScopeMissing                   = "scope_missing"
	CodeQuantityMissing                = "quantity_missing"
	CodePricingInvalid                 = "pricing_invalid"
	CodeAdditionalChargesReasonMissing = "additional_charges_reason_missing"
	CodeUnitPriceUnclear               = "unit_price_unclear"
	CodeJustificationMissing           = "justification_missing"
	CodeTurnkeyJustificationMissing    = "turnkey_justification_missing"
	CodePhotosMissing                  = "photos_missing"
	CodeLineItemsMissing               = "line_items_missing"
)

// EvaluateChecklist runs every completeness rule against the input and
// returns the violations in evaluation order. It is pure: a given input
// always produces the same list, and an empty list means the change order is
// ready for final submission.
func EvaluateChecklist(input models.ChangeOrderInput) []models.ChecklistViolation {
	var violations []models.ChecklistViolation
	add := func(code, message string) {
		violations = append(violations, models.ChecklistViolation{Code: code, Message: message})
	}

	if strings.TrimSpace(input.Scope) == "" {
		add(CodeScopeMissing, "Scope of work is required.")
	}
	if input.Quantity <= 0 {
		add(CodeQuantityMissing, "Quantity must be greater than zero.")
	}
	if input.MaterialCost < 0 || input.LaborCost < 0 {
		add(CodePricingInvalid, "Material and labor costs cannot be negative.")
	}
	if input.AdditionalCharges > 0 && strings.TrimSpace(input.AdditionalChargesReason) == "" {
		add(CodeAdditionalChargesReasonMissing, "Additional charges require a justification.")
	}
	if input.Quantity > 0 && input.TotalCost()/input.Quantity <= 0 {
		add(CodeUnitPriceUnclear, "Unit price could not be determined from the costs provided.")
	}
	if strings.TrimSpace(input.WhyNeeded) == "" {
		add(CodeJustificationMissing, "Explain why this work was needed.")
	}
	if strings.TrimSpace(input.WhyNotInTurnkey) == "" {
		add(CodeTurnkeyJustificationMissing, "Explain why this work is not covered by the turnkey scope.")
	}
	if len(input.Photos) == 0 {
		add(CodePhotosMissing, "At least one photo of the completed work is required.")
	}
	if input.IsMultiItem {
		if len(input.LineItems) < 2 {
			add(CodeLineItemsMissing, "Multi-item change orders need at least two line items.")
		}
		for i, item := range input.LineItems {
			if strings.TrimSpace(item.Description) == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
				add(fmt.Sprintf("line_item_%d_invalid", i+1),
					fmt.Sprintf("Line item %d needs a description, a positive quantity, and a non-negative unit price.", i+1))
			}
		}
	}

	return violations
}

// Timestamp layouts accepted for work_performed_at. RFC3339 first, then the
// format browsers emit for datetime-local inputs.
var workPerformedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// IsPast24Hours reports whether the work was performed more than 24 hours
// ago. An unparseable timestamp counts as late: an invalid value blocks
// submission instead of silently passing.
func IsPast24Hours(workPerformedAt string) bool {
	return isPast24HoursAt(workPerformedAt, time.Now())
}

func isPast24HoursAt(workPerformedAt string, now time.Time) bool {
	raw := strings.TrimSpace(workPerformedAt)
	if raw == "" {
		return true
	}
	var performedAt time.Time
	var err error
	for _, layout := range workPerformedLayouts {
		if layout == time.RFC3339 {
			performedAt, err = time.Parse(layout, raw)
		} else {
			performedAt, err = time.ParseInLocation(layout, raw, now.Location())
		}
		if err == nil {
			break
		}
	}
	if err != nil {
		return true
	}
	// Exactly 24h is still on time; strictly greater is late.
	return now.Sub(performedAt) > 24*time.Hour
}
