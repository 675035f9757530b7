package publishing

const (
	LabelResync  = "Resync grades to SIS"
	LabelSyncing = "Syncing grades to SIS..."
	LabelSync    = "Sync grades to SIS"

	ConfirmResyncMessage = "Are you sure you want to resync these grades to the student information system?"
	ConfirmSyncMessage   = "Are you sure you want to sync these grades to the student information system? You should only do this if all your grades have been finalized."

	FlashPublishFailed = "Something went wrong when trying to sync grades to the student information system. Please try again later."
)

// Presentation is the display model derived from the held status and report
type Presentation struct {
	Status     JobStatus
	Label      string
	Enabled    bool
	ShowError  bool
	InProgress bool
	Lines      []ReportLine
}

// Present projects status and report into a Presentation.
// It has no side effects; re-checks are scheduled by the poller.
func Present(status JobStatus, report StatusReport, inProgress bool) Presentation {
	p := Presentation{
		Status:     status,
		InProgress: inProgress,
		Lines:      report.Lines(),
	}

	switch {
	case status == StatusPublished:
		p.Label = LabelResync
		p.Enabled = true
	case status.InProgress():
		p.Label = LabelSyncing
		p.Enabled = false
	case status == StatusUnpublished:
		p.Label = LabelSync
		p.Enabled = true
	default:
		p.Label = LabelResync
		p.Enabled = true
		p.ShowError = true
	}

	return p
}

// ConfirmMessage returns the confirmation text shown before publishing from status
func ConfirmMessage(status JobStatus) string {
	if status == StatusPublished {
		return ConfirmResyncMessage
	}
	return ConfirmSyncMessage
}
