package tui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

type jobStatus string

const (
	jobKindGenerate   jobKind = "generate"
	jobKindExportText jobKind = "export-txt"
	jobKindExportPDF  jobKind = "export-pdf"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
	parent  context.Context
}

func newJobBus(parent context.Context) *jobBus {
	if parent == nil {
		parent = context.Background()
	}
	return &jobBus{parent: parent}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start emits a running signal, then runs the job off the update loop and
// delivers its payload wrapped in a jobResultEnvelope.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	parent := b.parent
	runCmd := func() tea.Msg {
		payload, err := runner(parent)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		log.Printf("[jobs] %s %s (duration=%s, err=%v)", id, snapshot.Status, snapshot.Duration, err)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// jobTracker keeps the latest snapshot per kind for the status bar.
type jobTracker map[jobKind]jobSnapshot

func (t jobTracker) record(s jobSnapshot) {
	t[s.Kind] = s
}

func (t jobTracker) running() int {
	n := 0
	for _, s := range t {
		if s.Status == jobStatusRunning {
			n++
		}
	}
	return n
}
