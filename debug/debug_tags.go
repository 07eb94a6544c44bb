//go:build debug

package debug

// Debug is true when built with the debug tag; failure reports then keep
// full stack frames and paths.
const Debug = true
