package viewer

import (
	"context"
	"time"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/supervisor"
)

// Sources are the independent inputs of a session. Any of them may be nil.
type Sources struct {
	Lines  <-chan string
	Errors <-chan string
	Keys   <-chan Command
	Ticks  <-chan time.Time
	Exit   <-chan supervisor.ExitStatus
}

// Merge linearizes sources into one action stream. Order within each source
// is preserved; there is no ordering across sources. The producer's exit is
// held back until both line channels are closed so its final output is seen
// first. The returned channel is closed after the exit action is delivered
// or when ctx is done.
func Merge(ctx context.Context, src Sources) <-chan Action {
	out := make(chan Action)
	go func() {
		defer close(out)

		send := func(a Action) bool {
			select {
			case out <- a:
				return true
			case <-ctx.Done():
				return false
			}
		}

		lines, errs, keys, ticks, exit := src.Lines, src.Errors, src.Keys, src.Ticks, src.Exit
		var pending *supervisor.ExitStatus
		for {
			if pending != nil && lines == nil && errs == nil {
				send(ExitAction{Status: *pending})
				return
			}

			var a Action
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok {
					lines = nil
					continue
				}
				a = LineAction{Stream: Stdout, Text: line}
			case line, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				a = LineAction{Stream: Stderr, Text: line}
			case cmd, ok := <-keys:
				if !ok {
					keys = nil
					continue
				}
				a = KeyAction{Command: cmd}
			case at, ok := <-ticks:
				if !ok {
					ticks = nil
					continue
				}
				a = TickAction{At: at}
			case status, ok := <-exit:
				exit = nil
				if ok {
					pending = &status
				}
				continue
			}
			if !send(a) {
				return
			}
		}
	}()
	return out
}
