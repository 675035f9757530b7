package tui

import (
	"time"

	"github.com/younsl/gradesync/pkg/publishing"
)

// Messages for Bubble Tea
type (
	presentationMsg publishing.Presentation
	flashMsg        string
	tickMsg         time.Time
	checkDoneMsg    struct{}
	publishDoneMsg  struct{}
)
