package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("runs handler after parent context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		async.Dispatch(ctx, "test", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			done <- ctx.Err()
			return nil
		})
		cancel()

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})

	t.Run("recovers from panic", func(t *testing.T) {
		done := make(chan struct{})
		async.Dispatch(context.Background(), "panic", func(ctx context.Context) error {
			defer close(done)
			panic("boom")
		})
		<-done
	})

	t.Run("swallows handler error", func(t *testing.T) {
		done := make(chan struct{})
		async.Dispatch(context.Background(), "error", func(ctx context.Context) error {
			defer close(done)
			return errors.New("failed")
		})
		<-done
	})
}
