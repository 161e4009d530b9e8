// Package tray provides the system tray interface for the Mirada avatar service.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/aaguirre/mirada/internal/app"
)

// Tray represents the system tray menu.
type Tray struct {
	onCommand func(cmd app.Command)
	onQuit    func()
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem

	statusMode      string
	statusRecording bool
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnCommand sets the callback invoked when a menu item dispatches a
// pipeline command.
func (t *Tray) OnCommand(fn func(cmd app.Command)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mirada")
	systray.SetTooltip("Mirada Virtual Eyes")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem("Starting...", "Current render mode")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuCycle := systray.AddMenuItem("Cycle Mode", "Switch to the next render mode")
	menuStart := systray.AddMenuItem("Start Recording", "Begin a capture session")
	menuStop := systray.AddMenuItem("Stop Recording", "Stop and index the capture session")
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset Blink Counters", "Zero the blink totals")
	menuClear := systray.AddMenuItem("Clear Gaze History", "Reset gaze smoothing")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mirada")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuCycle.ClickedCh:
				t.dispatch(app.CommandCycleMode)
			case <-menuStart.ClickedCh:
				t.dispatch(app.CommandStartRecording)
			case <-menuStop.ClickedCh:
				t.dispatch(app.CommandStopRecording)
			case <-menuReset.ClickedCh:
				t.dispatch(app.CommandResetCounters)
			case <-menuClear.ClickedCh:
				t.dispatch(app.CommandClearHistory)
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// dispatch forwards a menu command to the registered callback.
func (t *Tray) dispatch(cmd app.Command) {
	t.mu.RLock()
	callback := t.onCommand
	t.mu.RUnlock()

	if callback != nil {
		callback(cmd)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the status line with the current render mode and
// recording indicator. Repeated calls with an unchanged status are
// ignored, so it is cheap to call once per frame.
func (t *Tray) SetStatus(mode string, recording bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.menuStatus == nil {
		return
	}
	if mode == t.statusMode && recording == t.statusRecording {
		return
	}
	t.statusMode = mode
	t.statusRecording = recording

	title := "Mode: " + mode
	if recording {
		title += "  ● REC"
	}
	t.menuStatus.SetTitle(title)
}
