package services

import (
	"errors"
	"fmt"
	"time"

	"change-order-api/models"
	"change-order-api/store"

	"github.com/google/uuid"
)

var (
	// ErrNotSubmitted is returned when an approve/deny decision targets a
	// record that never passed final submission (draft or blocked).
	ErrNotSubmitted = errors.New("change order is not in a submitted state")
	// ErrEmptyChecklist is returned when a needs-info decision carries no
	// checklist items.
	ErrEmptyChecklist = errors.New("needs-info decision requires at least one checklist item")
	// ErrInvalidDenialReason is returned for a denial reason outside the
	// fixed enum.
	ErrInvalidDenialReason = errors.New("invalid denial reason code")
	// ErrInvalidAmount is returned for an approval amount of zero or less.
	ErrInvalidAmount = errors.New("approved amount must be greater than zero")
)

// LifecycleService owns every mutation of a change order: intake, reviewer
// queue updates, decisions and delivery reconciliation. All other components
// only read records or submit mutation requests through it.
type LifecycleService struct {
	store store.ChangeOrderStore
}

// NewLifecycleService returns a lifecycle service writing through the given
// store.
func NewLifecycleService(s store.ChangeOrderStore) *LifecycleService {
	return &LifecycleService{store: s}
}

func newRecord(input models.ChangeOrderInput, now time.Time) *models.StoredChangeOrder {
	return &models.StoredChangeOrder{
		ID:                  uuid.NewString(),
		ChangeOrderInput:    input,
		TeamStatus:          models.TeamStatusNew,
		DecisionStatus:      models.DecisionPending,
		DecisionEmailStatus: models.EmailPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// SaveDraft stores the input as-is. Drafts skip the checklist entirely so
// contractors can come back later.
func (s *LifecycleService) SaveDraft(input models.ChangeOrderInput) (*models.StoredChangeOrder, error) {
	rec := newRecord(input, time.Now())
	rec.SubmissionStatus = models.SubmissionDraft
	if err := s.store.Create(rec); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return rec, nil
}

// Submit runs the checklist and the 24-hour rule. A clean input becomes
// SUBMITTED; anything else becomes BLOCKED with the full reason list,
// checklist messages first and the lateness message last. A fresh record is
// minted either way.
func (s *LifecycleService) Submit(input models.ChangeOrderInput) (*models.StoredChangeOrder, error) {
	now := time.Now()
	rec := newRecord(input, now)

	var reasons []string
	for _, violation := range EvaluateChecklist(input) {
		reasons = append(reasons, violation.Message)
	}
	if IsPast24Hours(input.WorkPerformedAt) {
		reasons = append(reasons, LateSubmissionReason)
	}

	if len(reasons) > 0 {
		rec.SubmissionStatus = models.SubmissionBlocked
		rec.BlockingReasons = reasons
	} else {
		rec.SubmissionStatus = models.SubmissionSubmitted
		submittedAt := now
		rec.SubmittedAt = &submittedAt
	}

	if err := s.store.Create(rec); err != nil {
		return nil, fmt.Errorf("failed to create change order: %w", err)
	}
	return rec, nil
}

// Get returns the record for the transport layer.
func (s *LifecycleService) Get(id string) (*models.StoredChangeOrder, error) {
	return s.store.FindByID(id)
}

// List returns every record; ordering is left to the caller.
func (s *LifecycleService) List() ([]*models.StoredChangeOrder, error) {
	return s.store.ListAll()
}

// TeamQueueUpdate carries the optional fields a reviewer may edit outside a
// decision. Nil means leave unchanged.
type TeamQueueUpdate struct {
	TeamStatus    *models.TeamStatus
	ReviewerNotes *string
}

// UpdateTeamQueueItem applies queue edits. Finalized records are returned
// unchanged; the update never touches the decision status.
func (s *LifecycleService) UpdateTeamQueueItem(id string, update TeamQueueUpdate) (*models.StoredChangeOrder, error) {
	rec, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if rec.IsFinalized {
		return rec, nil
	}

	if update.TeamStatus != nil {
		rec.TeamStatus = *update.TeamStatus
	}
	if update.ReviewerNotes != nil {
		rec.ReviewerNotes = *update.ReviewerNotes
	}
	rec.UpdatedAt = time.Now()

	if err := s.store.Update(rec); err != nil {
		return nil, fmt.Errorf("failed to update queue item: %w", err)
	}
	return rec, nil
}

// ApplyTeamDecision runs the decision state machine. A finalized record is a
// one-way latch: any further decision is a no-op returning the current
// record. Approve and deny require a SUBMITTED record; needs-info is allowed
// from any non-finalized state. Every accepted decision regenerates the
// notification content and resets its delivery state to PENDING.
func (s *LifecycleService) ApplyTeamDecision(id string, decision models.TeamDecision) (*models.StoredChangeOrder, error) {
	rec, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if rec.IsFinalized {
		return rec, nil
	}

	now := time.Now()

	switch d := decision.(type) {
	case models.NeedsInfoDecision:
		if len(d.NeedsInfoChecklist) == 0 {
			return nil, ErrEmptyChecklist
		}
		rec.TeamStatus = models.TeamStatusNeedsInfo
		rec.DecisionStatus = models.DecisionNeedsInfo
		rec.DecisionBy = d.DecidedBy
		rec.DecisionExplanation = d.DecisionExplanation
		rec.ContractorFacingMessage = d.ContractorFacingMessage
		rec.NeedsInfoChecklist = d.NeedsInfoChecklist
		rec.ApprovedAmount = nil
		rec.DenialReasonCode = ""
	case models.ApproveDecision:
		if rec.SubmissionStatus != models.SubmissionSubmitted {
			return nil, ErrNotSubmitted
		}
		if d.ApprovedAmount <= 0 {
			return nil, ErrInvalidAmount
		}
		rec.TeamStatus = models.TeamStatusApproved
		rec.DecisionStatus = models.DecisionApproved
		rec.IsFinalized = true
		rec.DecisionBy = d.DecidedBy
		rec.DecisionExplanation = d.DecisionExplanation
		rec.ContractorFacingMessage = d.ContractorFacingMessage
		amount := d.ApprovedAmount
		rec.ApprovedAmount = &amount
		rec.DenialReasonCode = ""
		rec.NeedsInfoChecklist = nil
	case models.DenyDecision:
		if rec.SubmissionStatus != models.SubmissionSubmitted {
			return nil, ErrNotSubmitted
		}
		if !d.DenialReasonCode.IsValid() {
			return nil, ErrInvalidDenialReason
		}
		rec.TeamStatus = models.TeamStatusDenied
		rec.DecisionStatus = models.DecisionDenied
		rec.IsFinalized = true
		rec.DecisionBy = d.DecidedBy
		rec.DecisionExplanation = d.DecisionExplanation
		rec.ContractorFacingMessage = d.ContractorFacingMessage
		rec.DenialReasonCode = d.DenialReasonCode
		rec.ApprovedAmount = nil
		rec.NeedsInfoChecklist = nil
	default:
		return nil, fmt.Errorf("unknown decision type %T", decision)
	}

	decisionAt := now
	rec.DecisionAt = &decisionAt
	rec.UpdatedAt = now

	subject, text, html := BuildDecisionEmail(rec)
	rec.DecisionEmailStatus = models.EmailPending
	rec.DecisionEmailTo = rec.ContractorEmail
	rec.DecisionEmailSubject = subject
	rec.DecisionEmailBody = text
	rec.DecisionEmailHTML = html
	rec.DecisionEmailError = ""
	rec.DecisionEmailPreviewURL = ""
	rec.DecisionEmailMode = ""
	rec.DecisionEmailSentAt = nil

	if err := s.store.Update(rec); err != nil {
		return nil, fmt.Errorf("failed to apply decision: %w", err)
	}
	return rec, nil
}

// DeliveryUpdate reports the outcome of a decision-email send attempt.
type DeliveryUpdate struct {
	Status     models.EmailStatus
	Error      string
	PreviewURL string
	Mode       string
	SentAt     *time.Time
}

// UpdateDecisionEmailDelivery overwrites the delivery fields. Delivery state
// is side-channel metadata, so finalization does not protect it and the last
// report wins.
func (s *LifecycleService) UpdateDecisionEmailDelivery(id string, update DeliveryUpdate) (*models.StoredChangeOrder, error) {
	rec, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}

	rec.DecisionEmailStatus = update.Status
	rec.DecisionEmailError = update.Error
	rec.DecisionEmailPreviewURL = update.PreviewURL
	rec.DecisionEmailMode = update.Mode
	rec.DecisionEmailSentAt = update.SentAt
	rec.UpdatedAt = time.Now()

	if err := s.store.Update(rec); err != nil {
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}
	return rec, nil
}
