package tui

import (
	"github.com/younsl/gradesync/pkg/publishing"
)

// ViewManager handles view-specific state
type ViewManager struct {
	presentation publishing.Presentation

	flash string

	showPublishConfirm    bool
	publishConfirmMessage string
	publishSelection      int

	reportOffset int
}

// NewViewManager creates a new view manager showing the initial unknown state
func NewViewManager() ViewManagerInterface {
	return &ViewManager{
		presentation: publishing.Present(publishing.StatusUnknown, nil, false),
	}
}

// SetPresentation replaces the rendered poller state
func (vm *ViewManager) SetPresentation(p publishing.Presentation) {
	vm.presentation = p
	if vm.reportOffset >= len(p.Lines) {
		vm.reportOffset = 0
	}
}

// GetPresentation returns the latest poller state
func (vm *ViewManager) GetPresentation() publishing.Presentation {
	return vm.presentation
}

// ShowFlash shows a dismissible notification
func (vm *ViewManager) ShowFlash(message string) {
	vm.flash = message
}

// DismissFlash hides the notification
func (vm *ViewManager) DismissFlash() {
	vm.flash = ""
}

func (vm *ViewManager) GetFlash() string {
	return vm.flash
}

// ShowPublishConfirm shows the publish confirmation popup
func (vm *ViewManager) ShowPublishConfirm(message string) {
	vm.showPublishConfirm = true
	vm.publishConfirmMessage = message
	vm.publishSelection = 0
}

// HidePublishConfirm hides the publish confirmation popup
func (vm *ViewManager) HidePublishConfirm() {
	vm.showPublishConfirm = false
	vm.publishConfirmMessage = ""
	vm.publishSelection = 0
}

// IsShowingPublishConfirm returns whether publish confirmation is showing
func (vm *ViewManager) IsShowingPublishConfirm() bool {
	return vm.showPublishConfirm
}

// GetPublishConfirmMessage returns the question shown in the popup
func (vm *ViewManager) GetPublishConfirmMessage() string {
	return vm.publishConfirmMessage
}

// SetPublishSelection sets the publish selection (0 = No, 1 = Yes)
func (vm *ViewManager) SetPublishSelection(selection int) {
	if selection == 0 || selection == 1 {
		vm.publishSelection = selection
	}
}

// GetPublishSelection returns the current selection (0 = No, 1 = Yes)
func (vm *ViewManager) GetPublishSelection() int {
	return vm.publishSelection
}

// IsPublishConfirmed returns true if "Yes" is selected
func (vm *ViewManager) IsPublishConfirmed() bool {
	return vm.publishSelection == 1
}

func (vm *ViewManager) GetReportOffset() int {
	return vm.reportOffset
}

// ScrollReport moves the report window, keeping the last page full
func (vm *ViewManager) ScrollReport(direction int, totalLines int, visible int) {
	maxOffset := totalLines - visible
	if maxOffset < 0 {
		maxOffset = 0
	}

	newOffset := vm.reportOffset + direction
	if newOffset < 0 {
		newOffset = 0
	}
	if newOffset > maxOffset {
		newOffset = maxOffset
	}
	vm.reportOffset = newOffset
}
