package model

import "time"

// TicketState is the lifecycle state of a moderation ticket.
type TicketState int

const (
	TicketPending TicketState = iota
	TicketResolved
)

// Ticket holds a submission that waits for a moderator decision.
type Ticket struct {
	ID         string
	Submission *Submission
	State      TicketState
	// Groups are the tags of the keyword groups that matched, kept so the caption can be
	// composed on approval without re-running the policy.
	Groups    []string
	CreatedAt time.Time
}

// Decision is a moderator's verdict on a ticket.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts only the known decision kinds.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionReject:
		return DecisionReject, true
	}
	return "", false
}
