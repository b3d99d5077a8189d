package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syllabyte/brainprogress/internal/cycle"
)

// TickMsg advances a manual indicator.
type TickMsg struct {
	Time time.Time
}

// SnapshotMsg carries a driver snapshot from the runner goroutine into the
// message loop.
type SnapshotMsg struct {
	Snapshot cycle.Snapshot
}

// TickCmd returns a command that sends a TickMsg after interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// SnapshotSender adapts send, typically program.Send, to a runner callback.
func SnapshotSender(send func(tea.Msg)) func(cycle.Snapshot) {
	return func(s cycle.Snapshot) {
		send(SnapshotMsg{Snapshot: s})
	}
}
