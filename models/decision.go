package models

// TeamDecision is the tagged union of reviewer actions. Exactly three
// variants exist; the lifecycle service switches over them exhaustively.
type TeamDecision interface {
	isTeamDecision()
}

// NeedsInfoDecision asks the contractor for more information. It never
// finalizes the record and may be applied repeatedly.
type NeedsInfoDecision struct {
	DecidedBy               string   `json:"decided_by"`
	DecisionExplanation     string   `json:"decision_explanation"`
	ContractorFacingMessage string   `json:"contractor_facing_message"`
	NeedsInfoChecklist      []string `json:"needs_info_checklist"`
}

// ApproveDecision finalizes the change order with an approved amount.
type ApproveDecision struct {
	DecidedBy               string  `json:"decided_by"`
	ApprovedAmount          float64 `json:"approved_amount"`
	DecisionExplanation     string  `json:"decision_explanation"`
	ContractorFacingMessage string  `json:"contractor_facing_message"`
}

// DenyDecision finalizes the change order with a denial reason.
type DenyDecision struct {
	DecidedBy               string           `json:"decided_by"`
	DenialReasonCode        DenialReasonCode `json:"denial_reason_code"`
	DecisionExplanation     string           `json:"decision_explanation"`
	ContractorFacingMessage string           `json:"contractor_facing_message"`
}

func (NeedsInfoDecision) isTeamDecision() {}
func (ApproveDecision) isTeamDecision()   {}
func (DenyDecision) isTeamDecision()      {}
