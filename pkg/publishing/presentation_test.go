package publishing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name      string
		status    JobStatus
		label     string
		enabled   bool
		showError bool
	}{
		{name: "published", status: StatusPublished, label: LabelResync, enabled: true},
		{name: "pending", status: StatusPending, label: LabelSyncing, enabled: false},
		{name: "publishing", status: StatusPublishing, label: LabelSyncing, enabled: false},
		{name: "unpublished", status: StatusUnpublished, label: LabelSync, enabled: true},
		{name: "unknown", status: StatusUnknown, label: LabelResync, enabled: true, showError: true},
		{name: "error", status: StatusError, label: LabelResync, enabled: true, showError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Present(tt.status, nil, false)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.label, p.Label)
			assert.Equal(t, tt.enabled, p.Enabled)
			assert.Equal(t, tt.showError, p.ShowError)
		})
	}
}

func TestPresent_ReportLinesSortedByMessage(t *testing.T) {
	report := StatusReport{
		"Synced":           20,
		"Missing SIS ID":   3,
		"Grade not posted": 1,
	}

	p := Present(StatusPublished, report, true)

	assert.True(t, p.InProgress)
	assert.Equal(t, []ReportLine{
		{Message: "Grade not posted", Count: 1},
		{Message: "Missing SIS ID", Count: 3},
		{Message: "Synced", Count: 20},
	}, p.Lines)
}

func TestConfirmMessage(t *testing.T) {
	assert.Equal(t, ConfirmResyncMessage, ConfirmMessage(StatusPublished))
	assert.Equal(t, ConfirmSyncMessage, ConfirmMessage(StatusUnpublished))
	assert.Equal(t, ConfirmSyncMessage, ConfirmMessage(StatusError))
}
