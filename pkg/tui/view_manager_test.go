package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/younsl/gradesync/pkg/publishing"
)

func TestNewViewManagerStartsUnknown(t *testing.T) {
	vm := NewViewManager()

	p := vm.GetPresentation()
	assert.Equal(t, publishing.StatusUnknown, p.Status)
	assert.Equal(t, publishing.LabelResync, p.Label)
	assert.True(t, p.Enabled)
	assert.Empty(t, vm.GetFlash())
	assert.False(t, vm.IsShowingPublishConfirm())
}

func TestViewManagerFlash(t *testing.T) {
	vm := NewViewManager()

	vm.ShowFlash(publishing.FlashPublishFailed)
	assert.Equal(t, publishing.FlashPublishFailed, vm.GetFlash())

	vm.DismissFlash()
	assert.Empty(t, vm.GetFlash())
}

func TestViewManagerPublishConfirm(t *testing.T) {
	vm := NewViewManager()

	vm.ShowPublishConfirm(publishing.ConfirmSyncMessage)
	assert.True(t, vm.IsShowingPublishConfirm())
	assert.Equal(t, publishing.ConfirmSyncMessage, vm.GetPublishConfirmMessage())
	assert.Equal(t, 0, vm.GetPublishSelection())
	assert.False(t, vm.IsPublishConfirmed())

	vm.SetPublishSelection(1)
	assert.True(t, vm.IsPublishConfirmed())

	// Out of range selections are ignored
	vm.SetPublishSelection(5)
	assert.Equal(t, 1, vm.GetPublishSelection())

	vm.HidePublishConfirm()
	assert.False(t, vm.IsShowingPublishConfirm())
	assert.Empty(t, vm.GetPublishConfirmMessage())
	assert.Equal(t, 0, vm.GetPublishSelection())
}

func TestViewManagerScrollReport(t *testing.T) {
	tests := []struct {
		name       string
		start      int
		direction  int
		totalLines int
		visible    int
		expected   int
	}{
		{name: "scroll down", start: 0, direction: 1, totalLines: 20, visible: 10, expected: 1},
		{name: "clamp at top", start: 0, direction: -1, totalLines: 20, visible: 10, expected: 0},
		{name: "clamp at last page", start: 10, direction: 1, totalLines: 20, visible: 10, expected: 10},
		{name: "fits on one page", start: 0, direction: 1, totalLines: 5, visible: 10, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := &ViewManager{reportOffset: tt.start}
			vm.ScrollReport(tt.direction, tt.totalLines, tt.visible)
			assert.Equal(t, tt.expected, vm.GetReportOffset())
		})
	}
}

func TestViewManagerSetPresentationResetsOffset(t *testing.T) {
	vm := &ViewManager{reportOffset: 4}

	vm.SetPresentation(publishing.Present(publishing.StatusPublished, publishing.StatusReport{"Synced": 1}, false))

	assert.Equal(t, 0, vm.GetReportOffset())
	assert.Equal(t, publishing.StatusPublished, vm.GetPresentation().Status)
}
