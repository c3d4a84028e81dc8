package test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"testing"
	"time"
)

// Timeout dumps all goroutines and panics when the returned cancel func is
// not called within d. Useful to turn a deadlocked relay into a readable
// failure.
func Timeout(t *testing.T, d time.Duration) (cancel func()) {
	ctx, cancel := context.WithTimeout(context.Background(), d)

	name := t.Name()

	go func() {
		<-ctx.Done()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if err := pprof.Lookup("goroutine").WriteTo(os.Stdout, 1); err != nil {
				fmt.Printf("failed to print goroutines: %v\n", err)
			}

			panic(fmt.Sprintf("%s: timed out after %s", name, d))
		}
	}()

	return cancel
}
