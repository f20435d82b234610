// Package metrics defines the reporting surface the turn controller uses
// instead of process-wide logging state: callers pass in an Observer and
// decide themselves how events are rendered.
package metrics

import "time"

type Event struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev Event)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(Event) {}
