// Package review implements the admin decision workflow shared by payment
// and withdrawal requests. The state machine is deliberately small:
// pending is the only initial state, approved and rejected are terminal,
// and a decided request can never be re-decided.
package review

import (
	"time"

	"github.com/google/uuid"

	"aiplatform/internal/domain"
	"aiplatform/pkg/errors"
)

// Action is an admin decision on a pending request.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Decision captures who decided what, when, with an optional note.
type Decision struct {
	Action    Action
	Note      string
	DecidedBy uuid.UUID
	DecidedAt time.Time
}

// allowedTransitions enumerates every legal state change.
var allowedTransitions = []struct {
	From domain.RequestStatus
	To   domain.RequestStatus
}{
	{domain.RequestStatusPending, domain.RequestStatusApproved},
	{domain.RequestStatusPending, domain.RequestStatusRejected},
}

func target(action Action) (domain.RequestStatus, error) {
	switch action {
	case ActionApprove:
		return domain.RequestStatusApproved, nil
	case ActionReject:
		return domain.RequestStatusRejected, nil
	default:
		return "", errors.ErrInvalidDecision
	}
}

// Transition validates and resolves the next status for a request in the
// given state. Terminal states are immutable.
func Transition(current domain.RequestStatus, action Action) (domain.RequestStatus, error) {
	if current.Terminal() {
		return current, errors.ErrRequestAlreadyDecided
	}

	to, err := target(action)
	if err != nil {
		return current, err
	}

	for _, allowed := range allowedTransitions {
		if allowed.From == current && allowed.To == to {
			return to, nil
		}
	}
	return current, errors.ErrInvalidDecision
}

// ApplyToPayment returns a copy of the request with the decision applied.
// The input is not mutated; on error the original request is returned
// unchanged.
func ApplyToPayment(req domain.PaymentRequest, d Decision) (domain.PaymentRequest, error) {
	next, err := Transition(req.Status, d.Action)
	if err != nil {
		return req, err
	}

	req.Status = next
	req.AdminNote = d.Note
	decidedBy := d.DecidedBy
	req.DecidedBy = &decidedBy
	decidedAt := d.DecidedAt
	req.ProcessedAt = &decidedAt
	return req, nil
}

// ApplyToWithdrawal is ApplyToPayment for withdrawal requests.
func ApplyToWithdrawal(req domain.WithdrawalRequest, d Decision) (domain.WithdrawalRequest, error) {
	next, err := Transition(req.Status, d.Action)
	if err != nil {
		return req, err
	}

	req.Status = next
	req.AdminNote = d.Note
	decidedBy := d.DecidedBy
	req.DecidedBy = &decidedBy
	decidedAt := d.DecidedAt
	req.ProcessedAt = &decidedAt
	return req, nil
}
