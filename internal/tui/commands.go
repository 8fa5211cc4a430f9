package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/legalchain/internal/export"
	"github.com/csheth/legalchain/internal/submit"
)

type generateResultMsg struct {
	snapshot submit.Snapshot
}

type exportResultMsg struct {
	format export.Format
	path   string
	pages  int
	err    error
}

// generateJob runs an attempt that has already entered Pending. Failures are
// carried in the snapshot; the job itself only fails for the status bar.
func generateJob(attempt *submit.Attempt) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		snap := attempt.Run(parent)
		if snap.Status == submit.StatusFailed {
			return generateResultMsg{snapshot: snap}, snap.Cause
		}
		return generateResultMsg{snapshot: snap}, nil
	}
}

func exportJob(dir string, format export.Format, doc string, layout export.Layout) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		path, artifact, err := export.Save(dir, format, doc, layout)
		if err != nil {
			return exportResultMsg{format: format, err: err}, err
		}
		return exportResultMsg{format: format, path: path, pages: artifact.Stats.Pages}, nil
	}
}

func isSilentExportError(err error) bool {
	return errors.Is(err, export.ErrNothingToExport)
}
