package profile

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/google/pprof/profile"
)

// since we are assuming usage of this package from a single go routine, this channel only has
// one "producer", and one "consumer". its purpose is to guarantee the order of execution of
// adding / removing a profiling session and sampling events, while enabling the caller
// (circuit.Builder) to sample the events asynchronously.
var chCommands = make(chan command, 100)
var onceInit sync.Once

type command struct {
	p      *Profile
	pc     []uintptr
	remove bool
}

func worker() {
	for c := range chCommands {
		if c.p != nil {
			if c.remove {
				for i := 0; i < len(sessions); i++ {
					if sessions[i] == c.p {
						sessions[i] = sessions[len(sessions)-1]
						sessions = sessions[:len(sessions)-1]
						break
					}
				}
				close(c.p.chDone)

				// decrement active sessions
				atomic.AddUint32(&activeSessions, ^uint32(0))
			} else {
				sessions = append(sessions, c.p)
			}
			continue
		}

		// it's a sampling event; a node was built
		collectSample(c.pc)
	}

}

// collectSample must be called from the worker go routine
func collectSample(pc []uintptr) {
	// for each session we may have a distinct sample, since ids of functions and locations may mismatch
	samples := make([]*profile.Sample, len(sessions))
	for i := range samples {
		samples[i] = &profile.Sample{Value: []int64{1}} // for now, we just collect new node count
	}

	frames := runtime.CallersFrames(pc)
	// Loop to get frames.
	// A fixed number of pcs can expand to an indefinite number of Frames.
	for {
		frame, more := frames.Next()

		if strings.HasPrefix(frame.Function, "testing.") || strings.HasPrefix(frame.Function, "runtime.") {
			// we stop; the frames below were the circuit definition
			break
		}

		// filter internal builder plumbing
		if filterBuilderPrivateFunc(frame.Function) {
			if !more {
				break
			}
			continue
		}

		frame.Function = strings.ReplaceAll(frame.Function, "[...]", "[T]")

		for i := range samples {
			samples[i].Location = append(samples[i].Location, sessions[i].getLocation(&frame))
		}

		if !isBuilderFunc(frame.Function) {
			for i := range sessions {
				sessions[i].onceSetName.Do(func() {
					// once per profile session, we set the "name of the binary".
					// here we take the first frame above the builder: hopefully
					// the function defining the circuit.
					fe := strings.Split(frame.Function, "/")
					sessions[i].pprof.Mapping = []*profile.Mapping{
						{ID: 1, File: fe[len(fe)-1]},
					}
				})
			}
		}

		if !more {
			break
		}
	}

	for i := range sessions {
		sessions[i].pprof.Sample = append(sessions[i].pprof.Sample, samples[i])
	}
}

const builderPrefix = "github.com/go-eda/miter/circuit.(*Builder)."

func isBuilderFunc(f string) bool {
	return strings.HasPrefix(f, builderPrefix)
}

func filterBuilderPrivateFunc(f string) bool {
	if strings.HasPrefix(f, builderPrefix) && len(f) > len(builderPrefix) {
		// filter builder private APIs from the trace; the exported entry
		// points stay, so profiles show the mix of operators built.
		c := []rune(f)[len(builderPrefix)]
		if unicode.IsLower(c) {
			return true
		}
	}
	return false
}
