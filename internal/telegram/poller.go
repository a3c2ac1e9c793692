package telegram

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/skel-labs/skelbot/internal/logging"
)

// UpdateHandler processes one update. Handlers run in their own
// goroutine so a slow agent turn never stalls the poll loop.
type UpdateHandler func(ctx context.Context, upd Update)

// Poller drives getUpdates long polling and dispatches updates.
type Poller struct {
	client  *Client
	timeout time.Duration
	handler UpdateHandler
}

// NewPoller creates a poller.
func NewPoller(client *Client, timeout time.Duration, handler UpdateHandler) *Poller {
	return &Poller{client: client, timeout: timeout, handler: handler}
}

// Run polls until ctx is cancelled. Transient API failures back off
// exponentially; an expired empty poll is not a failure.
func (p *Poller) Run(ctx context.Context) error {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = time.Second
	retry.MaxInterval = 30 * time.Second
	retry.MaxElapsedTime = 0 // poll forever

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, next, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if IsPollTimeout(err) {
				continue
			}
			wait := retry.NextBackOff()
			logging.Warn().Err(err).Dur("retryIn", wait).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()
		offset = next

		for _, upd := range updates {
			go p.handler(ctx, upd)
		}
	}
}
