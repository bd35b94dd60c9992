package notify

import (
	"context"

	"github.com/sweeney/float-alarm/internal/logic"
)

// FakeSender records send attempts and returns scripted results.
type FakeSender struct {
	// Results are returned in order; once exhausted Default is returned.
	Results []Result
	// Default is returned when Results is empty.
	Default Result
	// Link, if set, is consulted first: disconnected means Failed without an attempt.
	Link Link

	// Attempts records every kind that reached the transport.
	Attempts []logic.Notification
}

// NewFakeSender creates a FakeSender that always succeeds.
func NewFakeSender() *FakeSender {
	return &FakeSender{Default: Sent}
}

// Send records kind and returns the next scripted result.
func (f *FakeSender) Send(_ context.Context, kind logic.Notification) Result {
	if f.Link != nil && !f.Link.IsConnected() {
		return Failed
	}

	f.Attempts = append(f.Attempts, kind)
	if len(f.Results) == 0 {
		return f.Default
	}
	r := f.Results[0]
	f.Results = f.Results[1:]
	return r
}

// Count returns how many attempts were made for kind.
func (f *FakeSender) Count(kind logic.Notification) int {
	n := 0
	for _, k := range f.Attempts {
		if k == kind {
			n++
		}
	}
	return n
}
