package feed

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func TestListener_NewBackOff(t *testing.T) {
	// intervals carry up to 50% jitter
	within := func(t *testing.T, d, base time.Duration) {
		t.Helper()
		assert.GreaterOrEqual(t, d, base/2)
		assert.LessOrEqual(t, d, base+base/2)
	}

	listener := NewListener(nil, "canteen_changes", &recordingPublisher{}, discardLogger())

	t.Run("grows to the cap and never gives up", func(t *testing.T) {
		retry := listener.newBackOff(context.Background())

		within(t, retry.NextBackOff(), defaultMinBackoff)
		var last time.Duration
		for range 50 {
			last = retry.NextBackOff()
			require.NotEqual(t, backoff.Stop, last)
		}
		within(t, last, defaultMaxBackoff)
	})

	t.Run("reset starts over from the initial interval", func(t *testing.T) {
		retry := listener.newBackOff(context.Background())
		for range 10 {
			retry.NextBackOff()
		}

		retry.Reset()
		within(t, retry.NextBackOff(), defaultMinBackoff)
	})

	t.Run("stops once the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		retry := listener.newBackOff(ctx)
		cancel()

		assert.Equal(t, backoff.Stop, retry.NextBackOff())
	})
}

func TestListener_Run(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set, skipping postgres integration tests")
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_DB_TEST"),
		os.Getenv("POSTGRES_SSL"),
	)

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	publisher := &recordingPublisher{}
	listener := NewListener(pool, "canteen_changes_test", publisher, discardLogger())

	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	payload := `{"collection":"orders","op":"update","id":"abc"}`
	require.Eventually(t, func() bool {
		_, err := pool.Exec(context.Background(), "SELECT pg_notify('canteen_changes_test', $1)", payload)
		require.NoError(t, err)
		return len(publisher.snapshot()) > 0
	}, 5*time.Second, 100*time.Millisecond)

	_, err = pool.Exec(context.Background(), "SELECT pg_notify('canteen_changes_test', 'not json')")
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}

	for _, e := range publisher.snapshot() {
		assert.Equal(t, Event{Collection: "orders", Op: "update", ID: "abc"}, e)
	}
}
