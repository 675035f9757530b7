package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/younsl/gradesync/pkg/publishing"
)

const (
	reportMessageWidth = 60
	reportCountWidth   = 6
)

// UIComponents handles UI rendering
type UIComponents struct {
	config *AppConfig
	now    func() time.Time
}

// NewUIComponents creates new UI components
func NewUIComponents(config *AppConfig) UIRenderer {
	return &UIComponents{
		config: config,
		now:    time.Now,
	}
}

// RenderHeader renders the header section
func (ui *UIComponents) RenderHeader(snapshot publishing.Snapshot) string {
	serverName := ui.config.ServerURL
	if serverName == "" {
		serverName = "unknown"
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true).
		Padding(0, 1)

	titleText := "gradesync"
	if ui.config.Version != "" && ui.config.Version != "dev" {
		titleText = fmt.Sprintf("gradesync v%s", ui.config.Version)
	} else if ui.config.Version == "dev" {
		titleText = "gradesync dev"
	}
	title := headerStyle.Render(titleText)
	server := fmt.Sprintf("Server: %s", serverName)
	course := fmt.Sprintf("Course: %s", ui.config.CourseID)
	status := fmt.Sprintf("Status: %s", ui.renderStatus(snapshot.Status))

	return fmt.Sprintf("%s  %s  %s  %s\n%s",
		title, server, course, status, ui.getTimerInfo(snapshot.Progress))
}

// RenderSyncButton renders the sync action with its enabled state and error indicator
func (ui *UIComponents) RenderSyncButton(p publishing.Presentation, spinner string) string {
	buttonStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder())

	if p.Enabled {
		buttonStyle = buttonStyle.
			Foreground(lipgloss.Color("15")).
			BorderForeground(lipgloss.Color("4")).
			Bold(true)
	} else {
		buttonStyle = buttonStyle.
			Foreground(lipgloss.Color("8")).
			BorderForeground(lipgloss.Color("8"))
	}

	label := p.Label
	if spinner != "" {
		label = spinner + " " + label
	}
	button := buttonStyle.Render(label)

	if !p.ShowError {
		return button
	}

	indicator := lipgloss.NewStyle().
		Foreground(lipgloss.Color("1")).
		Bold(true).
		Render("✗ The last sync did not complete")
	return lipgloss.JoinHorizontal(lipgloss.Center, button, "  ", indicator)
}

// RenderReport renders one line per message with its student count
func (ui *UIComponents) RenderReport(p publishing.Presentation, offset int, height int) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)
	b.WriteString(headerStyle.Render(
		ui.padString("MESSAGE", reportMessageWidth) + " " + ui.padLeft("STUDENTS", reportCountWidth+2)))
	b.WriteString("\n")

	if len(p.Lines) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
		b.WriteString(emptyStyle.Render("No sync messages"))
		b.WriteString("\n")
		return b.String()
	}

	end := offset + height
	if end > len(p.Lines) {
		end = len(p.Lines)
	}
	if offset > end {
		offset = end
	}

	for _, line := range p.Lines[offset:end] {
		message := ui.padString(ui.truncate(line.Message, reportMessageWidth), reportMessageWidth)
		count := ui.padLeft(fmt.Sprintf("%d", line.Count), reportCountWidth+2)
		b.WriteString(fmt.Sprintf("%s %s\n", message, count))
	}

	if len(p.Lines) > height {
		more := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
			Render(fmt.Sprintf("%d-%d of %d (↑/↓ to scroll)", offset+1, end, len(p.Lines)))
		b.WriteString(more)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderFlash renders the dismissible error notification
func (ui *UIComponents) RenderFlash(message string) string {
	if message == "" {
		return "\n"
	}

	flashStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("1")).
		Padding(0, 1)
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("  [x] dismiss")

	return flashStyle.Render("Error: "+message) + hint + "\n\n"
}

// RenderHelp renders the help screen
func (ui *UIComponents) RenderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Padding(2, 4).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("4"))

	interval := ui.config.Interval
	if interval <= 0 {
		interval = publishing.DefaultInterval
	}

	help := fmt.Sprintf(`gradesync - SIS Grade Sync Monitor

KEY BINDINGS:
  q, Ctrl+C    Quit
  p            Sync grades to SIS (with confirmation)
  r            Check sync status now
  x, Esc       Dismiss error notification
  ↑/↓, k/j     Scroll sync messages
  h, ?         Toggle this help

POLLING:
  Re-check interval    %s while a sync is pending or publishing
  Startup check        %t

Press any key to continue...`, interval, ui.config.CheckOnStart)

	return helpStyle.Render(help)
}

// RenderPublishConfirm renders the publish confirmation popup with interactive selection
func (ui *UIComponents) RenderPublishConfirm(message string, selection int) string {
	confirmStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Padding(1, 2).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("2")).
		Width(60).
		Align(lipgloss.Center)

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("2")).
		Bold(true).
		Align(lipgloss.Center).
		Render("Confirm SIS Grade Sync")

	courseInfo := fmt.Sprintf("Course: %s\nServer: %s", ui.config.CourseID, ui.config.ServerURL)

	question := lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Align(lipgloss.Center).
		Width(54).
		Render(message)

	timestamp := lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("Requested at %s", ui.formatTimestamp(ui.now())))

	buttons := ui.renderButtons(selection)

	instructions := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Render("Use ←/→ to select, Enter to confirm, Esc to cancel")

	content := fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n\n%s\n\n%s", title, courseInfo, question, timestamp, buttons, instructions)

	return confirmStyle.Render(content)
}

// RenderKeyBindings renders the key binding footer
func (ui *UIComponents) RenderKeyBindings() string {
	keyBindings := "Keys: [p]ublish [r]echeck [x] dismiss [h]elp [q]uit [↑↓] scroll"
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(keyBindings)
}

// Helper functions

func (ui *UIComponents) renderButtons(selection int) string {
	buttonWidth := 8

	base := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Padding(0, 1).
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder())

	// Color only the selected button
	noButton := base.Render("No")
	yesButton := base.Render("Yes")
	if selection == 0 {
		noButton = base.Background(lipgloss.Color("2")).Bold(true).Render("No")
	} else {
		yesButton = base.Background(lipgloss.Color("1")).Bold(true).Render("Yes")
	}

	buttonContainer := lipgloss.JoinHorizontal(
		lipgloss.Center,
		noButton,
		strings.Repeat(" ", 4),
		yesButton,
	)

	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(buttonContainer)
}

func (ui *UIComponents) renderStatus(status publishing.JobStatus) string {
	var color string
	switch status {
	case publishing.StatusPublished:
		color = "2"
	case publishing.StatusPending, publishing.StatusPublishing:
		color = "4"
	case publishing.StatusUnpublished:
		color = "3"
	case publishing.StatusError:
		color = "1"
	default:
		color = "8"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(status))
}

func (ui *UIComponents) getTimerInfo(progress publishing.CheckProgress) string {
	var parts []string

	if progress.LastCheckAt != nil {
		parts = append(parts, fmt.Sprintf("Last check: %s (%s)",
			ui.formatTimestamp(*progress.LastCheckAt), humanize.RelTime(*progress.LastCheckAt, ui.now(), "ago", "from now")))
	} else {
		parts = append(parts, "Last check: never")
	}

	if progress.NextCheckAt != nil {
		parts = append(parts, fmt.Sprintf("Next check in %ds", progress.CheckCountdown))
	}

	parts = append(parts, fmt.Sprintf("Checks: %d", progress.CheckCount))

	return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(strings.Join(parts, " | "))
}

func (ui *UIComponents) formatTimestamp(t time.Time) string {
	timezone := ui.config.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}

// Text formatting utilities

func (ui *UIComponents) truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}

	// If width is too small to even fit "..", return empty string
	if width < 2 {
		return ""
	}

	return runewidth.Truncate(s, width, "..")
}

func (ui *UIComponents) padString(s string, width int) string {
	currentWidth := runewidth.StringWidth(s)
	if currentWidth >= width {
		return s
	}
	return s + strings.Repeat(" ", width-currentWidth)
}

func (ui *UIComponents) padLeft(s string, width int) string {
	currentWidth := runewidth.StringWidth(s)
	if currentWidth >= width {
		return s
	}
	return strings.Repeat(" ", width-currentWidth) + s
}
