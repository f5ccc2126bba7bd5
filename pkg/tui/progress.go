// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var DefaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	clearLine  = "\r\033[K"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// Progress draws a single status line, a spinner frame followed by a label
// and the elapsed time, while an asynchronous command runs.
type Progress struct {
	w        io.Writer
	frames   []string
	interval time.Duration
	color    Colorizer
	cursor   bool
	now      func() time.Time
}

type ProgressOption func(*Progress)

func WithFrames(frames ...string) ProgressOption {
	return func(p *Progress) {
		if len(frames) > 0 {
			p.frames = frames
		}
	}
}

func WithInterval(d time.Duration) ProgressOption {
	return func(p *Progress) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithColor paints frames with the colorizer's spinner role.
func WithColor(c Colorizer) ProgressOption {
	return func(p *Progress) { p.color = c }
}

// WithCursor leaves the terminal cursor visible while drawing.
func WithCursor(visible bool) ProgressOption {
	return func(p *Progress) { p.cursor = visible }
}

func NewProgress(w io.Writer, opts ...ProgressOption) *Progress {
	p := &Progress{
		w:        w,
		frames:   DefaultFrames,
		interval: 120 * time.Millisecond,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start draws the first frame and keeps animating until ctx is done or the
// returned stop function is called. stop erases the line and may be called
// more than once.
func (p *Progress) Start(ctx context.Context, label string) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	started := p.now()

	var mu sync.Mutex
	draw := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(p.w, clearLine+p.line(i, label, p.now().Sub(started)))
	}

	if !p.cursor {
		fmt.Fprint(p.w, hideCursor)
	}
	draw(0)
	go func() {
		defer close(done)
		t := time.NewTicker(p.interval)
		defer t.Stop()
		for i := 1; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				draw(i)
			}
		}
	}()

	return sync.OnceFunc(func() {
		cancel()
		<-done
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(p.w, clearLine)
		if !p.cursor {
			fmt.Fprint(p.w, showCursor)
		}
	})
}

func (p *Progress) line(i int, label string, elapsed time.Duration) string {
	s := p.color.Paint(RoleSpinner, p.frames[i%len(p.frames)])
	if label != "" {
		s += " " + label
	}
	return s + p.color.Paint(RoleDefault, fmt.Sprintf(" (%s)", elapsed.Truncate(100*time.Millisecond)))
}
