// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yeetrun/clify/pkg/tui"
)

// lineFormatter writes "prog: error: message". Fields are only shown at
// debug level.
type lineFormatter struct {
	prog  string
	color tui.Colorizer
}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	prog := f.prog
	if p, ok := e.Data["prog"].(string); ok && p != "" {
		prog = p
	}
	if prog != "" {
		b.WriteString(prog)
		b.WriteString(": ")
	}
	switch {
	case e.Level <= logrus.ErrorLevel:
		b.WriteString(f.color.Paint(tui.RoleError, "error:"))
		b.WriteByte(' ')
	case e.Level == logrus.WarnLevel:
		b.WriteString(f.color.Paint(tui.RoleNotice, "warning:"))
		b.WriteByte(' ')
	case e.Level >= logrus.DebugLevel:
		b.WriteString("debug: ")
	}
	b.WriteString(e.Message)
	if e.Logger != nil && e.Logger.IsLevelEnabled(logrus.DebugLevel) {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			if k != "prog" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func newLogger(out io.Writer, f *lineFormatter, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(f)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
