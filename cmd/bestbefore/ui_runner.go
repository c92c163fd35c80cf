package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"bestbefore/internal/checker"
	"bestbefore/internal/ui"
)

type checkOutcome struct {
	result *checker.Result
	err    error
}

// runCheckWithUI checks files while a Bubble Tea program renders progress to
// out.
func runCheckWithUI(ctx context.Context, out io.Writer, title string, files []string, opts checker.Options) (*checker.Result, error) {
	events := make(chan checker.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		o := opts
		o.Progress = checker.ChannelSink{Ch: events}
		res, err := checker.CheckFiles(ctx, files, o)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the view may quit early (ctrl+c); keep the checker from blocking on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
