//go:build windows

package interrupt

// ListenSignals is a no-op on windows, which has no user signals; use the
// control API to push interruptions instead.
func ListenSignals(q *Queue) (stop func()) {
	return func() {}
}
