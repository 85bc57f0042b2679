package entities

import "time"

// DrillStatus tracks how far a target progressed through a drill.
type DrillStatus string

const (
	StatusSent    DrillStatus = "sent"
	StatusOpened  DrillStatus = "opened"
	StatusClicked DrillStatus = "clicked"
	StatusFailed  DrillStatus = "failed"
)

// rank orders the escalation chain. Failed sits outside the chain and never
// escalates.
func (s DrillStatus) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusOpened:
		return 2
	case StatusClicked:
		return 3
	}
	return 0
}

// Escalate returns the higher of the two statuses. Transitions only move
// forward along sent -> opened -> clicked; skips are allowed, regressions are
// not.
func (s DrillStatus) Escalate(to DrillStatus) DrillStatus {
	if to.rank() > s.rank() {
		return to
	}
	return s
}

// DrillAnalytics records target interactions with a sent drill.
type DrillAnalytics struct {
	EmailOpened bool        `json:"emailOpened"`
	LinkClicked bool        `json:"linkClicked"`
	OpenedAt    *time.Time  `json:"openedAt,omitempty"`
	ClickedAt   *time.Time  `json:"clickedAt,omitempty"`
	IPAddress   string      `json:"ipAddress,omitempty"`
	UserAgent   string      `json:"userAgent,omitempty"`
	Status      DrillStatus `json:"status"`
}

// AnalyticsPatch is a partial analytics update. Nil fields are left untouched
// when merged into an existing record.
type AnalyticsPatch struct {
	EmailOpened *bool        `json:"emailOpened,omitempty"`
	LinkClicked *bool        `json:"linkClicked,omitempty"`
	OpenedAt    *time.Time   `json:"openedAt,omitempty"`
	ClickedAt   *time.Time   `json:"clickedAt,omitempty"`
	IPAddress   *string      `json:"ipAddress,omitempty"`
	UserAgent   *string      `json:"userAgent,omitempty"`
	Status      *DrillStatus `json:"status,omitempty"`
}

// Apply merges the patch into a. Status changes pass through Escalate so a
// stale or replayed callback can never walk a record backwards.
func (a *DrillAnalytics) Apply(p AnalyticsPatch) {
	if p.EmailOpened != nil {
		a.EmailOpened = *p.EmailOpened
	}
	if p.LinkClicked != nil {
		a.LinkClicked = *p.LinkClicked
	}
	if p.OpenedAt != nil {
		a.OpenedAt = p.OpenedAt
	}
	if p.ClickedAt != nil {
		a.ClickedAt = p.ClickedAt
	}
	if p.IPAddress != nil {
		a.IPAddress = *p.IPAddress
	}
	if p.UserAgent != nil {
		a.UserAgent = *p.UserAgent
	}
	if p.Status != nil {
		a.Status = a.Status.Escalate(*p.Status)
	}
}

// DrillRecord is one simulated phishing attempt against a named contact.
// Records are created at send time and afterwards mutated only through
// analytics updates; the store never deletes them.
//
// The JSON field names match the browser-era storage payloads so existing
// drill_data blobs load unchanged (targetEmail holds any contact, including
// phone numbers for SMS and WhatsApp drills).
type DrillRecord struct {
	ID            string         `json:"id"`
	TargetContact string         `json:"targetEmail"`
	TargetName    string         `json:"targetName"`
	Subject       string         `json:"subject"`
	Content       string         `json:"content"`
	ScamLink      string         `json:"scamLink"`
	CreatedAt     time.Time      `json:"createdAt"`
	SentAt        *time.Time     `json:"sentAt,omitempty"`
	Analytics     DrillAnalytics `json:"analytics"`
}
