// Package profile provides a simple way to generate pprof compatible circuit
// construction profiles.
//
// A profile session samples every expression node created through
// circuit.Builder and attributes it to the Go function that built it. Since
// the builder operates in a single go-routine, this package is also NOT
// thread safe and is meant to be called in the same go-routine.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/pprof/profile"

	"github.com/go-eda/miter/logger"
)

var (
	sessions       []*Profile // active sessions
	activeSessions uint32
)

// Profile represents an active circuit construction profiling session.
type Profile struct {
	// defaults to ./miter.pprof
	// if blank, profile is not written to disk
	filePath string

	// actual pprof profile struct
	// details on pprof format: https://github.com/google/pprof/blob/main/proto/README.md
	pprof profile.Profile

	functions map[string]*profile.Function
	locations map[uint64]*profile.Location

	onceSetName sync.Once

	chDone chan struct{}
}

// Option defines configuration Options for Profile.
type Option func(*Profile)

// WithPath controls the profile destination file. If blank, profile is not written.
//
// Defaults to ./miter.pprof.
func WithPath(path string) Option {
	return func(p *Profile) {
		p.filePath = path
	}
}

// WithNoOutput indicates that the profile is not going to be written to disk.
//
// This is equivalent to WithPath("")
func WithNoOutput() Option {
	return func(p *Profile) {
		p.filePath = ""
	}
}

// Start creates a new active profiling session. When Stop() is called, this
// session is removed from active profiling sessions and may be serialized to
// disk as a pprof compatible file (see WithPath option).
//
// All calls to profile.Start() and Stop() are meant to be executed in the same
// go routine that builds the circuit.
//
// It is allowed to create multiple overlapping profiling sessions for one
// circuit.
func Start(options ...Option) *Profile {

	// start the worker first time a profiling session starts.
	onceInit.Do(func() {
		go worker()
	})

	p := Profile{
		functions: make(map[string]*profile.Function),
		locations: make(map[uint64]*profile.Location),
		filePath:  filepath.Join(".", "miter.pprof"),
		chDone:    make(chan struct{}),
	}
	p.pprof.SampleType = []*profile.ValueType{{
		Type: "nodes",
		Unit: "count",
	}}

	for _, option := range options {
		option(&p)
	}

	log := logger.Logger()
	if p.filePath == "" {
		log.Warn().Msg("miter profiling enabled [not writing to disk]")
	} else {
		log.Info().Str("path", p.filePath).Msg("miter profiling enabled")
	}

	// add the session to active sessions
	chCommands <- command{p: &p}
	atomic.AddUint32(&activeSessions, 1)

	return &p
}

// Stop removes the profile from active sessions and may write the pprof file
// to disk. See WithPath option.
func (p *Profile) Stop() {
	log := logger.Logger()

	if p.chDone == nil {
		log.Fatal().Msg("miter profile stopped multiple times")
	}

	// ask worker routine to remove ourselves from the active sessions
	chCommands <- command{p: p, remove: true}

	// wait for worker routine to remove us.
	<-p.chDone
	p.chDone = nil

	// if filePath is set, serialize profile to disk in pprof format
	if p.filePath != "" {
		f, err := os.Create(p.filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create miter profile")
		}
		if err := p.pprof.Write(f); err != nil {
			log.Error().Err(err).Msg("writing profile")
		}
		f.Close()
		log.Info().Str("path", p.filePath).Msg("miter profiling disabled")
	} else {
		log.Warn().Msg("miter profiling disabled [not writing to disk]")
	}

}

// NbNodes returns the number of samples (expression nodes) collected by the
// profile session.
func (p *Profile) NbNodes() int {
	return len(p.pprof.Sample)
}

// Top returns a text table similar to the pprof top command: per function the
// number of nodes built there (flat) and in its callees (cum), sorted by flat
// count.
func (p *Profile) Top() string {
	type row struct {
		name      string
		flat, cum int64
	}
	byName := make(map[string]*row)
	var total int64
	for _, s := range p.pprof.Sample {
		total += s.Value[0]
		seen := make(map[string]bool, len(s.Location))
		for i, loc := range s.Location {
			for _, line := range loc.Line {
				name := line.Function.Name
				r, ok := byName[name]
				if !ok {
					r = &row{name: name}
					byName[name] = r
				}
				if i == 0 {
					r.flat += s.Value[0]
				}
				// a recursive function counts once per sample
				if !seen[name] {
					r.cum += s.Value[0]
					seen[name] = true
				}
			}
		}
	}

	rows := make([]*row, 0, len(byName))
	for _, r := range byName {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].flat != rows[j].flat {
			return rows[i].flat > rows[j].flat
		}
		if rows[i].cum != rows[j].cum {
			return rows[i].cum > rows[j].cum
		}
		return rows[i].name < rows[j].name
	})

	var sbb strings.Builder
	fmt.Fprintf(&sbb, "Showing nodes accounting for %d, 100%% of %d total\n", total, total)
	fmt.Fprintf(&sbb, "%10s %7s %10s %7s  %s\n", "flat", "flat%", "cum", "cum%", "function")
	for _, r := range rows {
		fmt.Fprintf(&sbb, "%10d %6.2f%% %10d %6.2f%%  %s\n",
			r.flat, percent(r.flat, total), r.cum, percent(r.cum, total), r.name)
	}
	return sbb.String()
}

func percent(v, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(v) / float64(total)
}

// RecordNode adds a sample (with count == 1) to all the active profiling
// sessions. circuit.Builder calls it once per expression node it hands out;
// when no session is active it returns immediately.
func RecordNode() {
	if n := atomic.LoadUint32(&activeSessions); n == 0 {
		return // do nothing, no active session.
	}

	// collect the stack and send it async to the worker
	pc := make([]uintptr, 20)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	pc = pc[:n]
	chCommands <- command{pc: pc}
}

func (p *Profile) getLocation(frame *runtime.Frame) *profile.Location {
	l, ok := p.locations[uint64(frame.PC)]
	if !ok {
		// first let's see if we have the function.
		f, ok := p.functions[frame.File+frame.Function]
		if !ok {
			fe := strings.Split(frame.Function, "/")
			fName := fe[len(fe)-1]
			f = &profile.Function{
				ID:         uint64(len(p.functions) + 1),
				Name:       fName,
				SystemName: frame.Function,
				Filename:   frame.File,
			}

			p.functions[frame.File+frame.Function] = f
			p.pprof.Function = append(p.pprof.Function, f)
		}

		l = &profile.Location{
			ID:   uint64(len(p.locations) + 1),
			Line: []profile.Line{{Function: f, Line: int64(frame.Line)}},
		}
		p.locations[uint64(frame.PC)] = l
		p.pprof.Location = append(p.pprof.Location, l)
	}

	return l
}
