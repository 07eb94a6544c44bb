// Package debug carries the build-time debug switch and stack capture used
// in internal failure reports.
package debug

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Stack returns a condensed stack of the caller.
func Stack() string {
	var sbb strings.Builder
	WriteStack(&sbb)
	return sbb.String()
}

// WriteStack writes a condensed stack of the caller to sbb. Under the debug
// build tag frames keep their full paths; otherwise runtime noise is
// dropped and paths are shortened to their base name.
func WriteStack(sbb *strings.Builder) {
	// derived from: https://golang.org/pkg/runtime/#example_Frames
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	pc = pc[:n]
	frames := runtime.CallersFrames(pc)
	for {
		frame, more := frames.Next()
		fe := strings.Split(frame.Function, "/")
		function := fe[len(fe)-1]
		file := frame.File

		if !Debug {
			if strings.Contains(function, "runtime.gopanic") {
				continue
			}
			if strings.Contains(function, "runtime.main") {
				continue
			}
			file = filepath.Base(file)
		}

		sbb.WriteString(function)
		sbb.WriteByte('\n')
		sbb.WriteByte('\t')
		sbb.WriteString(file)
		sbb.WriteByte(':')
		sbb.WriteString(strconv.Itoa(frame.Line))
		sbb.WriteByte('\n')
		if !more {
			break
		}
	}
}
