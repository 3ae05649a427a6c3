package model

import (
	"time"

	"github.com/okian/assessor/internal/domain/scoring"
)

// NotificationKind names the outcome a notification reports.
type NotificationKind string

// Notification kinds.
const (
	NotifySubmitted    NotificationKind = "assessment.submitted"
	NotifyMissingField NotificationKind = "assessment.missing_field"
	NotifyDuplicate    NotificationKind = "assessment.duplicate"
)

// Notification tells the user-facing side how a submission went.
type Notification struct {
	Identity
	Kind          NotificationKind
	AssessmentID  string // set on success
	TotalScore    int
	Band          scoring.Band
	MissingFields []string // set for NotifyMissingField
	DuplicateOf   string   // id of the existing record for NotifyDuplicate
	At            time.Time
}
