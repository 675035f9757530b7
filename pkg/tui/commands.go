package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/younsl/gradesync/pkg/publishing"
)

// CommandHandler handles all command operations
type CommandHandler struct {
	poller Poller
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(poller Poller) CommandHandlerInterface {
	return &CommandHandler{
		poller: poller,
	}
}

// CheckStatus runs one status check. Presentation updates arrive through the
// presenter channel, not through the returned message.
func (ch *CommandHandler) CheckStatus(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		ch.poller.TriggerCheck(ctx)
		return checkDoneMsg{}
	}
}

// Publish starts the grade sync. The confirmation dialog has already been
// answered by the time this runs.
func (ch *CommandHandler) Publish(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		ch.poller.Publish(ctx, publishing.AlwaysConfirm)
		return publishDoneMsg{}
	}
}

func (ch *CommandHandler) TickCmd() tea.Cmd {
	return tea.Tick(1*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
