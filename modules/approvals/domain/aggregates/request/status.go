package request

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

var Statuses = []Status{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further lifecycle step leaves s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusDraft, StatusPendingApproval:
		return false
	default:
		return false
	}
}

// CanTransition follows draft -> pending_approval -> approved | rejected.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusPendingApproval
	case StatusPendingApproval:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved, StatusRejected:
		return false
	default:
		return false
	}
}

func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimSpace(v))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}
