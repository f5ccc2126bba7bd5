// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command helloworld greets someone a few times, pausing between lines.
//
//	helloworld Alice --times 3 --every 500ms
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yeetrun/clify/pkg/cli"
	"github.com/yeetrun/clify/pkg/command"
)

func greet(ctx context.Context, name string, times int, every time.Duration) error {
	for i := range times {
		if i > 0 {
			select {
			case <-time.After(every):
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		}
		fmt.Printf("Hello, %s!\n", name)
	}
	return nil
}

func main() {
	cli.Main(command.ReflectAsync("helloworld", greet,
		command.Param{Name: "name", Default: "World", Doc: "who to greet"},
		command.Param{Name: "times", Default: 1},
		command.Param{Name: "every", Default: "2s", Doc: "pause between greetings"},
	))
}
