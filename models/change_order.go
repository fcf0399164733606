package models

import "time"

// SubmissionStatus is set once at intake and never changes afterwards.
type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionBlocked   SubmissionStatus = "BLOCKED"
)

// TeamStatus tracks where a change order sits in the review queue.
type TeamStatus string

const (
	TeamStatusNew       TeamStatus = "NEW"
	TeamStatusInReview  TeamStatus = "IN_REVIEW"
	TeamStatusNeedsInfo TeamStatus = "NEEDS_INFO"
	TeamStatusApproved  TeamStatus = "APPROVED"
	TeamStatusDenied    TeamStatus = "DENIED"
)

// DecisionStatus mirrors the latest review outcome, independent of the
// submission status set at intake.
type DecisionStatus string

const (
	DecisionPending   DecisionStatus = "PENDING"
	DecisionNeedsInfo DecisionStatus = "NEEDS_INFO"
	DecisionApproved  DecisionStatus = "APPROVED"
	DecisionDenied    DecisionStatus = "DENIED"
)

// EmailStatus tracks delivery of the decision notification.
type EmailStatus string

const (
	EmailPending EmailStatus = "PENDING"
	EmailSent    EmailStatus = "SENT"
	EmailFailed  EmailStatus = "FAILED"
)

// DenialReasonCode is the fixed set of reasons a reviewer may deny with.
type DenialReasonCode string

const (
	DenialMissingRequiredInfo       DenialReasonCode = "MISSING_REQUIRED_INFO"
	DenialInsufficientPhotoEvidence DenialReasonCode = "INSUFFICIENT_PHOTO_EVIDENCE"
	DenialOutside24HourWindow       DenialReasonCode = "OUTSIDE_24_HOUR_WINDOW"
	DenialDuplicateRequest          DenialReasonCode = "DUPLICATE_REQUEST"
	DenialPricingNotJustified       DenialReasonCode = "PRICING_NOT_JUSTIFIED"
	DenialInScopeOfTurnkey          DenialReasonCode = "IN_SCOPE_OF_TURNKEY"
	DenialOther                     DenialReasonCode = "OTHER"
)

// IsValid reports whether the code belongs to the fixed denial enum.
func (d DenialReasonCode) IsValid() bool {
	switch d {
	case DenialMissingRequiredInfo, DenialInsufficientPhotoEvidence,
		DenialOutside24HourWindow, DenialDuplicateRequest,
		DenialPricingNotJustified, DenialInScopeOfTurnkey, DenialOther:
		return true
	}
	return false
}

// LineItem is a single row of a multi-item change order.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// ChangeOrderInput holds the contractor-supplied facts of a change order.
// Drafts may leave any of these empty; the checklist validator decides what
// blocks a final submit.
type ChangeOrderInput struct {
	ProjectID               string     `gorm:"column:project_id" json:"project_id"`
	ContractorName          string     `gorm:"column:contractor_name" json:"contractor_name"`
	ContractorEmail         string     `gorm:"column:contractor_email" json:"contractor_email"`
	WorkPerformedAt         string     `gorm:"column:work_performed_at" json:"work_performed_at"`
	Scope                   string     `gorm:"column:scope" json:"scope"`
	Quantity                float64    `gorm:"column:quantity" json:"quantity"`
	Unit                    string     `gorm:"column:unit" json:"unit"`
	MaterialCost            float64    `gorm:"column:material_cost" json:"material_cost"`
	LaborCost               float64    `gorm:"column:labor_cost" json:"labor_cost"`
	AdditionalCharges       float64    `gorm:"column:additional_charges" json:"additional_charges"`
	AdditionalChargesReason string     `gorm:"column:additional_charges_reason" json:"additional_charges_reason"`
	WhyNeeded               string     `gorm:"column:why_needed" json:"why_needed"`
	WhyNotInTurnkey         string     `gorm:"column:why_not_in_turnkey" json:"why_not_in_turnkey"`
	Photos                  []string   `gorm:"column:photos;serializer:json" json:"photos"`
	IsMultiItem             bool       `gorm:"column:is_multi_item" json:"is_multi_item"`
	LineItems               []LineItem `gorm:"column:line_items;serializer:json" json:"line_items"`
}

// TotalCost is always material + labor + additional charges.
func (in ChangeOrderInput) TotalCost() float64 {
	return in.MaterialCost + in.LaborCost + in.AdditionalCharges
}

// ChecklistViolation is a stable machine-readable code plus a human-readable
// message. Codes are for deduplication and tests, never for control flow
// outside the validator.
type ChecklistViolation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StoredChangeOrder is the persisted record: one ChangeOrderInput wrapped in
// workflow, decision and notification state. The lifecycle service is the
// sole writer.
type StoredChangeOrder struct {
	ID string `gorm:"primaryKey;column:id" json:"id"`

	ChangeOrderInput `gorm:"embedded" json:"input"`

	SubmissionStatus SubmissionStatus `gorm:"column:submission_status" json:"submission_status"`
	BlockingReasons  []string         `gorm:"column:blocking_reasons;serializer:json" json:"blocking_reasons,omitempty"`

	TeamStatus     TeamStatus     `gorm:"column:team_status" json:"team_status"`
	DecisionStatus DecisionStatus `gorm:"column:decision_status" json:"decision_status"`
	IsFinalized    bool           `gorm:"column:is_finalized" json:"is_finalized"`

	DecisionBy              string     `gorm:"column:decision_by" json:"decision_by,omitempty"`
	DecisionAt              *time.Time `gorm:"column:decision_at" json:"decision_at,omitempty"`
	DecisionExplanation     string     `gorm:"column:decision_explanation" json:"decision_explanation,omitempty"`
	ContractorFacingMessage string     `gorm:"column:contractor_facing_message" json:"contractor_facing_message,omitempty"`

	ApprovedAmount     *float64         `gorm:"column:approved_amount" json:"approved_amount,omitempty"`
	DenialReasonCode   DenialReasonCode `gorm:"column:denial_reason_code" json:"denial_reason_code,omitempty"`
	NeedsInfoChecklist []string         `gorm:"column:needs_info_checklist;serializer:json" json:"needs_info_checklist,omitempty"`

	ReviewerNotes string `gorm:"column:reviewer_notes" json:"reviewer_notes,omitempty"`

	DecisionEmailStatus     EmailStatus `gorm:"column:decision_email_status" json:"decision_email_status"`
	DecisionEmailTo         string      `gorm:"column:decision_email_to" json:"decision_email_to,omitempty"`
	DecisionEmailSubject    string      `gorm:"column:decision_email_subject" json:"decision_email_subject,omitempty"`
	DecisionEmailBody       string      `gorm:"column:decision_email_body" json:"decision_email_body,omitempty"`
	DecisionEmailHTML       string      `gorm:"column:decision_email_html" json:"decision_email_html,omitempty"`
	DecisionEmailError      string      `gorm:"column:decision_email_error" json:"decision_email_error,omitempty"`
	DecisionEmailPreviewURL string      `gorm:"column:decision_email_preview_url" json:"decision_email_preview_url,omitempty"`
	DecisionEmailMode       string      `gorm:"column:decision_email_mode" json:"decision_email_mode,omitempty"`
	DecisionEmailSentAt     *time.Time  `gorm:"column:decision_email_sent_at" json:"decision_email_sent_at,omitempty"`

	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
}

// TableName specifies the table name for StoredChangeOrder.
func (StoredChangeOrder) TableName() string {
	return "change_orders"
}
