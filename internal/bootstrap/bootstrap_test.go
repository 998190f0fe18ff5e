package bootstrap

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil", func(t *testing.T) {
		app := New()
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("run returns error without running hooks", func(t *testing.T) {
		app := New()
		hookCalled := false
		app.AddShutdownHook(func(ctx context.Context) error {
			hookCalled = true
			return nil
		})

		want := errors.New("listen failed")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
		assert.False(t, hookCalled)
	})

	t.Run("shutdown hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New()
		var mu sync.Mutex
		var order []string
		for _, name := range []string{"listener", "client", "logger"} {
			app.AddShutdownHook(func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"logger", "client", "listener"}, order)
	})

	t.Run("hook errors are joined", func(t *testing.T) {
		app := New()
		errFirst := errors.New("first")
		errSecond := errors.New("second")
		app.AddShutdownHook(func(ctx context.Context) error { return errFirst })
		app.AddShutdownHook(func(ctx context.Context) error { return nil })
		app.AddShutdownHook(func(ctx context.Context) error { return errSecond })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := app.Run(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
		assert.ErrorIs(t, err, errFirst)
		assert.ErrorIs(t, err, errSecond)
	})

	t.Run("hooks receive a context with the shutdown deadline", func(t *testing.T) {
		app := New(WithShutdownTimeout(time.Minute))
		var deadline time.Time
		var hasDeadline bool
		app.AddShutdownHook(func(ctx context.Context) error {
			deadline, hasDeadline = ctx.Deadline()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		require.NoError(t, app.Run(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}))
		require.True(t, hasDeadline)
		assert.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New()
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook(func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})

	t.Run("signal triggers shutdown", func(t *testing.T) {
		app := New(WithSignals(syscall.SIGUSR1))
		hookCalled := make(chan struct{})
		app.AddShutdownHook(func(ctx context.Context) error {
			close(hookCalled)
			return nil
		})

		err := app.Run(context.Background(), func(ctx context.Context) error {
			assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		select {
		case <-hookCalled:
		default:
			t.Fatal("shutdown hook was not called")
		}
	})
}

func TestWithShutdownTimeout_NonPositive(t *testing.T) {
	app := New(WithShutdownTimeout(0))
	assert.Equal(t, DefaultShutdownTimeout, app.shutdownTimeout)
}
