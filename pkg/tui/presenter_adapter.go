package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/younsl/gradesync/pkg/publishing"
)

// ChannelPresenter adapts the Bubble Tea update channel to publishing.Presenter.
// The poller calls it from command and timer goroutines; messages reach the
// model through BubbleApp.listenForUpdates.
type ChannelPresenter struct {
	ctx     context.Context
	updates chan<- tea.Msg
}

// NewChannelPresenter creates a presenter that stops delivering once ctx is done
func NewChannelPresenter(ctx context.Context, updates chan<- tea.Msg) *ChannelPresenter {
	return &ChannelPresenter{
		ctx:     ctx,
		updates: updates,
	}
}

// Update forwards a presentation to the model
func (cp *ChannelPresenter) Update(p publishing.Presentation) {
	cp.send(presentationMsg(p))
}

// Flash forwards a dismissible error notification to the model
func (cp *ChannelPresenter) Flash(message string) {
	cp.send(flashMsg(message))
}

func (cp *ChannelPresenter) send(msg tea.Msg) {
	select {
	case cp.updates <- msg:
	case <-cp.ctx.Done():
	}
}

// Ensure ChannelPresenter implements publishing.Presenter
var _ publishing.Presenter = (*ChannelPresenter)(nil)
