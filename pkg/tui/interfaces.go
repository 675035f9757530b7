package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/younsl/gradesync/pkg/publishing"
)

// Poller is the part of publishing.Poller the TUI drives
type Poller interface {
	TriggerCheck(ctx context.Context)
	Publish(ctx context.Context, confirm publishing.Confirmer)
	ConfirmPrompt() (string, bool)
	Snapshot() publishing.Snapshot
	Tracker() *publishing.CheckTracker
	Stop()
}

var _ Poller = (*publishing.Poller)(nil)

// ViewManagerInterface defines the interface for managing view state
type ViewManagerInterface interface {
	// Latest presentation from the poller
	SetPresentation(p publishing.Presentation)
	GetPresentation() publishing.Presentation

	// Flash notification
	ShowFlash(message string)
	DismissFlash()
	GetFlash() string

	// Publish confirmation
	ShowPublishConfirm(message string)
	HidePublishConfirm()
	IsShowingPublishConfirm() bool
	GetPublishConfirmMessage() string
	SetPublishSelection(selection int)
	GetPublishSelection() int
	IsPublishConfirmed() bool

	// Report scrolling
	GetReportOffset() int
	ScrollReport(direction int, totalLines int, visible int)
}

// CommandHandlerInterface defines the interface for handling commands
type CommandHandlerInterface interface {
	CheckStatus(ctx context.Context) tea.Cmd
	Publish(ctx context.Context) tea.Cmd
	TickCmd() tea.Cmd
}

// UIRenderer defines the interface for rendering UI components
type UIRenderer interface {
	RenderHeader(snapshot publishing.Snapshot) string
	RenderSyncButton(p publishing.Presentation, spinner string) string
	RenderReport(p publishing.Presentation, offset int, height int) string
	RenderFlash(message string) string
	RenderHelp() string
	RenderPublishConfirm(message string, selection int) string
	RenderKeyBindings() string
}

// KeyHandler defines the interface for handling keyboard input
type KeyHandler interface {
	HandleKeyPress(msg tea.KeyMsg, app *BubbleApp) (tea.Model, tea.Cmd)
}
