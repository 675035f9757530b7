package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/younsl/gradesync/pkg/publishing"
)

// linePresenter prints every presentation as plain lines and forwards it to
// updates for commands that wait on the sync job.
type linePresenter struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	updates chan publishing.Presentation
	flashed []string
}

func newLinePresenter(out, errOut io.Writer) *linePresenter {
	return &linePresenter{
		out:     out,
		errOut:  errOut,
		updates: make(chan publishing.Presentation, 16),
	}
}

func (lp *linePresenter) Update(p publishing.Presentation) {
	lp.mu.Lock()
	writePresentation(lp.out, p)
	lp.mu.Unlock()

	select {
	case lp.updates <- p:
	default:
	}
}

func (lp *linePresenter) Flash(message string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.flashed = append(lp.flashed, message)
	fmt.Fprintf(lp.errOut, "Error: %s\n", message)
}

func (lp *linePresenter) Flashes() []string {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return append([]string(nil), lp.flashed...)
}

var _ publishing.Presenter = (*linePresenter)(nil)

func writePresentation(w io.Writer, p publishing.Presentation) {
	state := "enabled"
	if !p.Enabled {
		state = "disabled"
	}
	fmt.Fprintf(w, "status: %s\n", p.Status)
	fmt.Fprintf(w, "action: %s (%s)\n", p.Label, state)
	if p.ShowError {
		fmt.Fprintln(w, "last sync did not complete")
	}
	for _, line := range p.Lines {
		fmt.Fprintf(w, "  %5d  %s\n", line.Count, line.Message)
	}
}

// promptConfirmer asks on in and accepts y or yes. With assumeYes set it
// prints the question and answers it without reading.
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	asked     bool
	yes       bool
}

func newPromptConfirmer(in io.Reader, out io.Writer, assumeYes bool) *promptConfirmer {
	return &promptConfirmer{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

func (pc *promptConfirmer) Confirm(message string) bool {
	pc.asked = true
	fmt.Fprintf(pc.out, "%s [y/N]: ", message)
	if pc.assumeYes {
		fmt.Fprintln(pc.out, "yes")
		pc.yes = true
		return true
	}

	answer, err := pc.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(pc.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		pc.yes = true
	}
	return pc.yes
}

var _ publishing.Confirmer = (*promptConfirmer)(nil)
