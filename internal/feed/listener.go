package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Listener forwards PostgreSQL notifications on a channel to a Publisher
type Listener struct {
	pool       *pgxpool.Pool
	channel    string
	publisher  Publisher
	logger     *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener creates a Listener for channel
func NewListener(pool *pgxpool.Pool, channel string, publisher Publisher, logger *slog.Logger) *Listener {
	return &Listener{
		pool:       pool,
		channel:    channel,
		publisher:  publisher,
		logger:     logger,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// Run listens until ctx is done, reconnecting with exponential backoff when the connection fails.
func (l *Listener) Run(ctx context.Context) error {
	retry := l.newBackOff(ctx)

	for {
		connected, err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if connected {
			retry.Reset()
		}

		wait := retry.NextBackOff()
		if wait == backoff.Stop {
			return nil
		}

		l.logger.WarnContext(ctx, "feed_listener_disconnected", "channel", l.channel, "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// newBackOff retries forever, growing from minBackoff up to maxBackoff. It stops once ctx is done.
func (l *Listener) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.minBackoff
	b.MaxInterval = l.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(b, ctx)
}

// listen holds one pooled connection for as long as notifications can be received.
// connected reports whether LISTEN succeeded before the failure.
func (l *Listener) listen(ctx context.Context) (connected bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if !conn.Conn().IsClosed() {
			unlistenCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			_, _ = conn.Exec(unlistenCtx, "UNLISTEN *")
			cancel()
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen on %s: %w", l.channel, err)
	}

	l.logger.InfoContext(ctx, "feed_listener_started", "channel", l.channel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}

		event, err := DecodeEvent(n.Payload)
		if err != nil {
			l.logger.WarnContext(ctx, "feed_event_invalid", "channel", n.Channel, "error", err)
			continue
		}

		l.publisher.Publish(event)
	}
}
