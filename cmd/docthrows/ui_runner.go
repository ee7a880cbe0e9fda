package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"docthrows/internal/driver"
	"docthrows/internal/snapshot"
	"docthrows/internal/ui"
)

type analyzeOutcome struct {
	result *driver.Result
	err    error
}

// runAnalyzeWithUI runs driver.Analyze in the background while a progress
// view consumes its events. Interrupting the view cancels the analysis.
func runAnalyzeWithUI(ctx context.Context, title string, snap *snapshot.Result, opts driver.Options) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := driver.Files(snap.Files, snap.Index)
	events := make(chan driver.Event, 256)
	opts.Events = events
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		res, err := driver.Analyze(ctx, snap, opts)
		outcomeCh <- analyzeOutcome{result: res, err: err}
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	final, uiErr := program.Run()
	if uiErr != nil || ui.Canceled(final) {
		cancel()
	}
	// Analyze закрывает events; дочитываем, чтобы воркеры не повисли
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if outcome.err != nil {
		return nil, outcome.err
	}
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, nil
}
