//go:build !windows

package interrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ListenSignals forwards SIGUSR1 as Began and SIGUSR2 as Ended into q until
// stop is called.
func ListenSignals(q *Queue) (stop func()) {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sigs:
				k := Ended
				if s == syscall.SIGUSR1 {
					k = Began
				}
				_ = q.Push(ctx, k)
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		cancel()
	}
}
