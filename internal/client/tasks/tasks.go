// Package tasks runs fire-and-forget work in the background while keeping
// track of it, so a caller (or a test) can wait for everything started so far.
package tasks

import (
	"context"

	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Group is a set of background tasks. Errors and panics of a task are
// logged and never reach the code that started it.
type Group struct {
	wg  conc.WaitGroup
	log logging.Logger
}

func NewGroup(log logging.Logger) *Group {
	if log == nil {
		log = logging.Discard()
	}
	return &Group{log: log}
}

// Go starts fn in a new goroutine. fn gets a context that keeps ctx's values
// but is not cancelled with it.
func (g *Group) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)

	g.wg.Go(func() {
		var pc panics.Catcher
		pc.Try(func() {
			if err := fn(detached); err != nil {
				g.log.Warn(detached, "background task failed", "task", name, "error", err)
			}
		})
		if r := pc.Recovered(); r != nil {
			g.log.Error(detached, "background task panicked", "task", name, "panic", r.Value, "stack", string(r.Stack))
		}
	})
}

// Wait blocks until every task started so far has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}
