package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultKeyHandler implements the KeyHandler interface
type DefaultKeyHandler struct {
	commands CommandHandlerInterface
}

// NewKeyHandler creates a new key handler
func NewKeyHandler(commands CommandHandlerInterface) KeyHandler {
	return &DefaultKeyHandler{
		commands: commands,
	}
}

// HandleKeyPress handles keyboard input
func (kh *DefaultKeyHandler) HandleKeyPress(msg tea.KeyMsg, app *BubbleApp) (tea.Model, tea.Cmd) {
	// Handle publish confirmation popup keys first
	if app.viewManager.IsShowingPublishConfirm() {
		return kh.handlePublishConfirmKeys(msg, app)
	}

	// If help is showing, any key closes it (except quit keys)
	if app.showHelp {
		return kh.handleHelpKeys(msg, app)
	}

	return kh.handleMainViewKeys(msg, app)
}

func (kh *DefaultKeyHandler) handlePublishConfirmKeys(msg tea.KeyMsg, app *BubbleApp) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left":
		app.viewManager.SetPublishSelection(0)
		return app, nil
	case "right":
		app.viewManager.SetPublishSelection(1)
		return app, nil
	case "enter":
		if app.viewManager.IsPublishConfirmed() {
			return app.startPublish()
		}
		app.viewManager.HidePublishConfirm()
		return app, nil
	case "esc", "n", "N":
		app.viewManager.HidePublishConfirm()
		return app, nil
	case "y", "Y":
		return app.startPublish()
	default:
		return app, nil
	}
}

func (kh *DefaultKeyHandler) handleHelpKeys(msg tea.KeyMsg, app *BubbleApp) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return app.quit()
	default:
		app.showHelp = false
		return app, nil
	}
}

func (kh *DefaultKeyHandler) handleMainViewKeys(msg tea.KeyMsg, app *BubbleApp) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return app.quit()

	case "h", "?":
		app.showHelp = !app.showHelp
		return app, nil

	case "p":
		return app.showPublishConfirmation()

	case "r":
		return app, kh.commands.CheckStatus(app.ctx)

	case "x", "esc":
		app.viewManager.DismissFlash()
		return app, nil

	case "up", "k":
		return app.scrollReport(-1)

	case "down", "j":
		return app.scrollReport(1)

	default:
		return app, nil
	}
}
