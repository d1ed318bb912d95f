package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vsdiag/internal/driver"
	"vsdiag/internal/ui"
)

type outcome[T any] struct {
	result T
	err    error
}

// runWithUI runs work in the background with progress reported to a Bubble
// Tea view, returning once both have finished.
func runWithUI[T any](title string, final driver.Stage, files []string, opts driver.Options, work func(driver.Options) (T, error)) (T, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan outcome[T], 1)

	go func() {
		withSink := opts
		withSink.Progress = driver.ChannelSink{Ch: events}
		res, err := work(withSink)
		outcomeCh <- outcome[T]{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, final, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the worker from blocking on a channel nobody reads
		go func() {
			for range events {
			}
		}()
	}
	out := <-outcomeCh
	if uiErr != nil {
		return out.result, uiErr
	}
	return out.result, out.err
}
