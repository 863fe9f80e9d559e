package model

import "time"

// Suspension requests go through their own mini-lifecycle (pending, rejected,
// accepted) and the UI wants a richer label derived from the stored state plus
// the dates. This is a pure read-time projection: nothing here is persisted
// and it is recomputed on every read.

type SuspensionState int

const (
	SuspensionStateRejected SuspensionState = 0
	SuspensionStateAccepted SuspensionState = 1
	SuspensionStatePending  SuspensionState = 2
)

type SuspensionLabel string

const (
	SuspensionPending       SuspensionLabel = "pending"
	SuspensionExpired       SuspensionLabel = "expired"
	SuspensionAboutToExpire SuspensionLabel = "about_to_expire"
	SuspensionRejected      SuspensionLabel = "rejected"
	SuspensionAccepted      SuspensionLabel = "accepted"
	SuspensionScheduled     SuspensionLabel = "scheduled"
	SuspensionCompleted     SuspensionLabel = "completed"
	SuspensionEndingSoon    SuspensionLabel = "ending_soon"
	SuspensionInProgress    SuspensionLabel = "in_progress"
)

type SuspensionSeverity string

const (
	SeverityInfo    SuspensionSeverity = "info"
	SeverityWarning SuspensionSeverity = "warning"
	SeverityUrgent  SuspensionSeverity = "urgent"
)

type SuspensionStatus struct {
	Label          SuspensionLabel
	Severity       SuspensionSeverity
	AllowedActions []string
	Editable       bool
}

// expiryWarningWindow is how close a boundary date has to be before the
// status escalates to about-to-expire / ending-soon.
const expiryWarningWindow = 7 * 24 * time.Hour

// DeriveSuspensionStatus projects the human-facing status for a suspension
// request from its stored state and window.
func DeriveSuspensionStatus(state SuspensionState, start, end *time.Time, now time.Time) SuspensionStatus {
	switch state {
	case SuspensionStateRejected:
		return SuspensionStatus{Label: SuspensionRejected, Severity: SeverityInfo}

	case SuspensionStatePending:
		if start == nil {
			return SuspensionStatus{
				Label:          SuspensionPending,
				Severity:       SeverityInfo,
				AllowedActions: []string{"accept", "reject"},
				Editable:       true,
			}
		}
		if now.After(*start) {
			return SuspensionStatus{
				Label:          SuspensionExpired,
				Severity:       SeverityUrgent,
				AllowedActions: []string{"reject"},
			}
		}
		if start.Sub(now) <= expiryWarningWindow {
			return SuspensionStatus{
				Label:          SuspensionAboutToExpire,
				Severity:       SeverityWarning,
				AllowedActions: []string{"accept", "reject"},
				Editable:       true,
			}
		}
		return SuspensionStatus{
			Label:          SuspensionPending,
			Severity:       SeverityInfo,
			AllowedActions: []string{"accept", "reject"},
			Editable:       true,
		}

	case SuspensionStateAccepted:
		if start == nil || end == nil {
			return SuspensionStatus{Label: SuspensionAccepted, Severity: SeverityInfo}
		}
		if now.Before(*start) {
			return SuspensionStatus{
				Label:          SuspensionScheduled,
				Severity:       SeverityInfo,
				AllowedActions: []string{"cancel"},
				Editable:       true,
			}
		}
		if now.After(*end) {
			return SuspensionStatus{Label: SuspensionCompleted, Severity: SeverityInfo}
		}
		if end.Sub(now) <= expiryWarningWindow {
			return SuspensionStatus{
				Label:          SuspensionEndingSoon,
				Severity:       SeverityWarning,
				AllowedActions: []string{"extend"},
			}
		}
		return SuspensionStatus{
			Label:          SuspensionInProgress,
			Severity:       SeverityInfo,
			AllowedActions: []string{"extend"},
		}
	}

	return SuspensionStatus{Label: SuspensionPending, Severity: SeverityInfo}
}
