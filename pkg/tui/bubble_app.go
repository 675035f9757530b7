package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/younsl/gradesync/pkg/publishing"
)

const reportHeight = 10

// BubbleApp is the main Bubble Tea application model
type BubbleApp struct {
	poller Poller
	config *AppConfig
	ctx    context.Context
	cancel context.CancelFunc

	viewManager    ViewManagerInterface
	uiRenderer     UIRenderer
	commandHandler CommandHandlerInterface
	keyHandler     KeyHandler

	spinner  spinner.Model
	showHelp bool
	width    int
	height   int

	updateChan chan tea.Msg
}

// PollerFactory builds the poller once the app owns the presenter channel
type PollerFactory func(presenter publishing.Presenter) Poller

// NewBubbleApp creates a new Bubble Tea application
func NewBubbleApp(newPoller PollerFactory, config *AppConfig) *BubbleApp {
	ctx, cancel := context.WithCancel(context.Background())

	updateChan := make(chan tea.Msg, 100)
	poller := newPoller(NewChannelPresenter(ctx, updateChan))

	commandHandler := NewCommandHandler(poller)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &BubbleApp{
		poller:         poller,
		config:         config,
		ctx:            ctx,
		cancel:         cancel,
		viewManager:    NewViewManager(),
		uiRenderer:     NewUIComponents(config),
		commandHandler: commandHandler,
		keyHandler:     NewKeyHandler(commandHandler),
		spinner:        s,
		updateChan:     updateChan,
	}
}

// Init initializes the Bubble Tea application
func (app *BubbleApp) Init() tea.Cmd {
	cmds := []tea.Cmd{
		app.commandHandler.TickCmd(),
		app.listenForUpdates(),
		app.spinner.Tick,
	}
	if app.config.CheckOnStart {
		cmds = append(cmds, app.commandHandler.CheckStatus(app.ctx))
	}
	return tea.Batch(cmds...)
}

// listenForUpdates creates a command to continuously listen for presenter updates
func (app *BubbleApp) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-app.updateChan:
			return msg
		case <-app.ctx.Done():
			return nil
		}
	}
}

// Update handles messages and updates the model
func (app *BubbleApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		return app, nil

	case tea.KeyMsg:
		return app.keyHandler.HandleKeyPress(msg, app)

	case presentationMsg:
		app.viewManager.SetPresentation(publishing.Presentation(msg))
		return app, app.listenForUpdates()

	case flashMsg:
		app.viewManager.ShowFlash(string(msg))
		return app, app.listenForUpdates()

	case tickMsg:
		return app.handleTickMessage()

	case spinner.TickMsg:
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case checkDoneMsg, publishDoneMsg:
		return app, nil

	default:
		return app, nil
	}
}

// View renders the UI
func (app *BubbleApp) View() string {
	if app.showHelp {
		return app.uiRenderer.RenderHelp()
	}

	if app.viewManager.IsShowingPublishConfirm() {
		return app.uiRenderer.RenderPublishConfirm(
			app.viewManager.GetPublishConfirmMessage(),
			app.viewManager.GetPublishSelection(),
		)
	}

	return app.renderMain()
}

func (app *BubbleApp) handleTickMessage() (tea.Model, tea.Cmd) {
	app.poller.Tracker().UpdateCheckCountdown()
	return app, app.commandHandler.TickCmd()
}

func (app *BubbleApp) showPublishConfirmation() (tea.Model, tea.Cmd) {
	message, ok := app.poller.ConfirmPrompt()
	if !ok {
		return app, nil
	}
	app.viewManager.ShowPublishConfirm(message)
	return app, nil
}

func (app *BubbleApp) startPublish() (tea.Model, tea.Cmd) {
	app.viewManager.HidePublishConfirm()
	app.viewManager.DismissFlash()
	return app, app.commandHandler.Publish(app.ctx)
}

func (app *BubbleApp) scrollReport(direction int) (tea.Model, tea.Cmd) {
	lines := len(app.viewManager.GetPresentation().Lines)
	app.viewManager.ScrollReport(direction, lines, reportHeight)
	return app, nil
}

// quit tears down the poller before leaving so no re-check outlives the view.
// The presenter context goes first so Stop never waits on a blocked send.
func (app *BubbleApp) quit() (tea.Model, tea.Cmd) {
	app.shutdown()
	return app, tea.Quit
}

func (app *BubbleApp) shutdown() {
	app.cancel()
	app.poller.Stop()
}

func (app *BubbleApp) renderMain() string {
	var content strings.Builder

	presentation := app.viewManager.GetPresentation()

	content.WriteString(app.uiRenderer.RenderHeader(app.poller.Snapshot()))
	content.WriteString("\n\n")

	spin := ""
	if presentation.InProgress || presentation.Status.InProgress() {
		spin = app.spinner.View()
	}
	content.WriteString(app.uiRenderer.RenderSyncButton(presentation, spin))
	content.WriteString("\n\n")

	content.WriteString(app.uiRenderer.RenderReport(presentation, app.viewManager.GetReportOffset(), reportHeight))
	content.WriteString("\n")

	content.WriteString(app.uiRenderer.RenderFlash(app.viewManager.GetFlash()))
	content.WriteString(app.uiRenderer.RenderKeyBindings())

	return content.String()
}

// RunBubbleApp runs the Bubble Tea application
func RunBubbleApp(newPoller PollerFactory, config *AppConfig) error {
	app := NewBubbleApp(newPoller, config)
	defer app.shutdown()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()

	return err
}
