package model

// NotifyOutcome 成员通知的事件类型
type NotifyOutcome string

const (
	OutcomeApplied  NotifyOutcome = "APPLIED"
	OutcomeAccepted NotifyOutcome = "ACCEPTED"
	OutcomeRejected NotifyOutcome = "REJECTED"
	OutcomeAdded    NotifyOutcome = "ADDED"
)

// Notification 发给组长或申请人的成员变动通知
type Notification struct {
	RecipientID      int64         `json:"recipient_id"`
	RecipientContact string        `json:"recipient_contact"`
	TeamKind         TeamKind      `json:"team_kind"`
	TeamID           int64         `json:"team_id"`
	TeamName         string        `json:"team_name"`
	ApplicantID      int64         `json:"applicant_id,omitempty"`
	ApplicantContact string        `json:"applicant_contact,omitempty"`
	Summary          string        `json:"summary,omitempty"`
	Outcome          NotifyOutcome `json:"outcome"`
}
