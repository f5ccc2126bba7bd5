// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// interruptWatch owns the SIGINT handler of one run.
type interruptWatch struct {
	hit    atomic.Bool
	once   sync.Once
	sigc   chan os.Signal
	done   chan struct{}
	cancel context.CancelCauseFunc
}

// watchInterrupt returns a context that is canceled by the first SIGINT.
// The handler is removed after that first signal, so a second one gets the
// process's previous behavior. Callers must call stop.
func watchInterrupt(ctx context.Context, enabled bool) (context.Context, *interruptWatch) {
	ctx, cancel := context.WithCancelCause(ctx)
	w := &interruptWatch{cancel: cancel, done: make(chan struct{})}
	if !enabled {
		return ctx, w
	}
	w.sigc = make(chan os.Signal, 1)
	signal.Notify(w.sigc, os.Interrupt)
	go func() {
		select {
		case <-w.sigc:
			signal.Stop(w.sigc)
			w.hit.Store(true)
			cancel(ErrInterrupted)
		case <-w.done:
		}
	}()
	return ctx, w
}

func (w *interruptWatch) caught() bool { return w.hit.Load() }

func (w *interruptWatch) stop() {
	w.once.Do(func() {
		if w.sigc != nil {
			signal.Stop(w.sigc)
		}
		close(w.done)
		w.cancel(nil)
	})
}

func stack() []byte { return debug.Stack() }
