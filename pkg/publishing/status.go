package publishing

import (
	"sort"
	"time"
)

// JobStatus is the locally held state of the SIS grade sync job
type JobStatus string

const (
	StatusUnknown     JobStatus = "unknown"
	StatusUnpublished JobStatus = "unpublished"
	StatusPending     JobStatus = "pending"
	StatusPublishing  JobStatus = "publishing"
	StatusPublished   JobStatus = "published"
	StatusError       JobStatus = "error"
)

// ParseStatus maps a server reported overall status to a JobStatus.
// Values outside the server vocabulary map to StatusError with ok=false.
func ParseStatus(s string) (JobStatus, bool) {
	switch JobStatus(s) {
	case StatusUnpublished, StatusPending, StatusPublishing, StatusPublished:
		return JobStatus(s), true
	default:
		return StatusError, false
	}
}

// InProgress reports whether the job is still running on the server side
func (s JobStatus) InProgress() bool {
	return s == StatusPending || s == StatusPublishing
}

// CanPublish reports whether a publish request may be issued from this status
func (s JobStatus) CanPublish() bool {
	return !s.InProgress() && s != StatusUnknown
}

// publishAccepted lists the statuses a publish response may carry
func publishAccepted(s string) bool {
	switch JobStatus(s) {
	case StatusPublished, StatusPublishing, StatusPending:
		return true
	}
	return false
}

// StatusReport maps a human readable message to the number of affected students
type StatusReport map[string]int

// ReportLine is one message of a StatusReport
type ReportLine struct {
	Message string
	Count   int
}

// Lines returns the report sorted by message
func (r StatusReport) Lines() []ReportLine {
	lines := make([]ReportLine, 0, len(r))
	for msg, count := range r {
		lines = append(lines, ReportLine{Message: msg, Count: count})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Message < lines[j].Message
	})
	return lines
}

// Clone returns a copy safe to hand to other goroutines
func (r StatusReport) Clone() StatusReport {
	out := make(StatusReport, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Response is a decoded status payload from the check or publish endpoint
type Response struct {
	OverallStatus string
	HasStatus     bool
	Statuses      StatusReport
}

// Transition is emitted whenever the held status changes
type Transition struct {
	Course string       `json:"course"`
	From   JobStatus    `json:"from"`
	To     JobStatus    `json:"to"`
	Report StatusReport `json:"report,omitempty"`
	At     time.Time    `json:"at"`
}
