// Package services implements the account lifecycle around the KYC
// survey: submitting and updating profiles, the clone protocol for
// pending major changes, organisation resolution and the admin queues.
package services

import (
	"log/slog"
	"time"
)

// Domain event names emitted on lifecycle transitions.
const (
	EventRegistrationSubmitted = "kyc.registration.submitted"
	EventUpdatePending         = "kyc.update.pending"
	EventUpdateApplied         = "kyc.update.applied"
	EventAccountValidated      = "kyc.account.validated"
	EventAccountRejected       = "kyc.account.rejected"
)

// Event is one lifecycle notification. CloneID is set on pending major
// updates, pointing the collaborator at the staged record.
type Event struct {
	Name    string
	UserID  uint
	CloneID uint
	Profile string
	Detail  string
	At      time.Time
}

// Dispatcher receives lifecycle events. Dispatch is called inside the
// committing request, so implementations must not block.
type Dispatcher interface {
	Dispatch(event Event)
}

// SlogDispatcher writes events to the structured log, where the
// database handler persists them for the audit trail.
type SlogDispatcher struct{}

func (SlogDispatcher) Dispatch(event Event) {
	attrs := []any{
		"user_id", event.UserID,
		"profile", event.Profile,
		"action", event.Name,
		"detail", event.Detail,
	}
	if event.CloneID != 0 {
		attrs = append(attrs, "clone_id", event.CloneID)
	}
	slog.Info(event.Name, attrs...)
}
