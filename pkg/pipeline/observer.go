package pipeline

import (
	"log/slog"
	"time"
)

// EventType classifies run events for filtering and routing.
type EventType string

const (
	EventStageEnter  EventType = "stage_enter"
	EventStageExit   EventType = "stage_exit"
	EventTransition  EventType = "transition"
	EventRunComplete EventType = "run_complete"
	EventRunError    EventType = "run_error"
)

// Event is a single observation from a pipeline run.
type Event struct {
	Type    EventType
	Stage   string
	Next    string
	Outcome Outcome
	Elapsed time.Duration
	Err     error
}

// Observer receives events during a run. Single-method design (like
// http.Handler) so adding new event types never breaks implementations.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// MultiObserver fans out events to multiple observers.
type MultiObserver []Observer

func (m MultiObserver) OnEvent(e Event) {
	for _, obs := range m {
		obs.OnEvent(e)
	}
}

// LogObserver writes run events as structured slog lines.
type LogObserver struct {
	Logger *slog.Logger
}

func (o *LogObserver) OnEvent(e Event) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{slog.String("event", string(e.Type))}
	if e.Stage != "" {
		attrs = append(attrs, slog.String("stage", e.Stage))
	}
	if e.Next != "" {
		attrs = append(attrs, slog.String("next", e.Next))
	}
	if e.Outcome != "" {
		attrs = append(attrs, slog.String("outcome", string(e.Outcome)))
	}
	if e.Elapsed > 0 {
		attrs = append(attrs, slog.Duration("elapsed", e.Elapsed))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
		logger.LogAttrs(nil, slog.LevelWarn, "run", attrs...)
		return
	}
	logger.LogAttrs(nil, slog.LevelInfo, "run", attrs...)
}

func emitEvent(obs Observer, e Event) {
	if obs != nil {
		obs.OnEvent(e)
	}
}
