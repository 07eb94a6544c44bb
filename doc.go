// Package miter decides sequential functional equivalence of small
// fixed-width synchronous circuits.
//
// Two circuits with the same input and output interface are compared by
// exploring the product of their state spaces from reset: at every
// reachable state, under every input, the observable outputs must agree.
// The verdict is one of:
//   - Pass, with the depth up to which the proof holds (unbounded when the
//     reachable state space closed)
//   - Fail, with a minimal input trace driving both circuits from reset to
//     the first observable divergence
//   - Unknown, when an exploration bound was exhausted first
//
// Circuits are described programmatically through circuit.Builder or parsed
// from netlist files; the equiv package runs the comparison and the report
// package renders verdicts. The miter command wires these together into a
// command-line front end.
package miter

import "github.com/blang/semver/v4"

var Version = semver.MustParse("0.9.0")
