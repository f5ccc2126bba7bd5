// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor drives one asynchronous body to completion.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrReused is returned when an Executor is run a second time.
var ErrReused = errors.New("executor: already used")

// PanicError wraps a value recovered from a panicking body.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Executor runs exactly one body. It is not a scheduler; create one per
// invocation and drop it afterwards.
type Executor struct {
	used atomic.Bool
}

func New() *Executor { return &Executor{} }

// Run starts fn on its own goroutine and blocks until it returns. A panic in
// fn is returned as *PanicError. Canceling ctx is visible to fn; Run still
// waits for fn to return.
func (e *Executor) Run(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if !e.used.CompareAndSwap(false, true) {
		return nil, ErrReused
	}
	g, gctx := errgroup.WithContext(ctx)
	var out any
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()
		v, err := fn(gctx)
		out = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Run is shorthand for New().Run.
func Run(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	return New().Run(ctx, fn)
}
