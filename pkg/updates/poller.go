// Package updates delivers incoming Telegram updates to a Handler, either
// by long polling getUpdates or from webhook requests.
package updates

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/dev-dhg/tgbot/pkg/botapi"
)

var logger = loggo.GetLogger("tgbot.updates")

// Handler processes one update. Updates are handed over one at a time in
// update_id order.
type Handler interface {
	HandleUpdate(ctx context.Context, update botapi.Update)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, update botapi.Update)

func (f HandlerFunc) HandleUpdate(ctx context.Context, update botapi.Update) {
	f(ctx, update)
}

// Source fetches pending updates. *botapi.Client implements it.
type Source interface {
	GetUpdates(ctx context.Context, opts botapi.GetUpdatesOptions) ([]botapi.Update, error)
}

// PollerConfig tunes a Poller.
type PollerConfig struct {
	// Timeout is the long polling timeout in seconds.
	Timeout int
	// Limit is the batch size, clamped by the client into [1, 100].
	Limit int
	// RetryDelay is the pause after a failed fetch.
	RetryDelay time.Duration
}

// Poller runs the getUpdates loop and tracks the confirmation offset.
type Poller struct {
	source  Source
	handler Handler
	cfg     PollerConfig
	offset  int64
}

func NewPoller(source Source, handler Handler, cfg PollerConfig) *Poller {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &Poller{source: source, handler: handler, cfg: cfg}
}

// Offset returns the next update_id the poller will ask for, or zero when
// nothing has been received yet.
func (p *Poller) Offset() int64 {
	return p.offset
}

// Run polls until ctx is done. Fetch errors are logged and retried after
// RetryDelay, or after the delay Telegram asks for with retry_after.
func (p *Poller) Run(ctx context.Context) error {
	logger.Infof("starting long polling (timeout %ds)", p.cfg.Timeout)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := p.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			delay := p.cfg.RetryDelay
			var apiErr *botapi.APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				delay = time.Duration(apiErr.RetryAfter) * time.Second
			}
			logger.Errorf("getting updates: %v (retrying in %s)", err, delay)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		if n > 0 {
			logger.Tracef("handled %d updates, offset %d", n, p.offset)
		}
	}
}

// Poll fetches one batch, hands every update to the handler and advances
// the offset past the highest update_id seen. It returns the batch size.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	opts := botapi.GetUpdatesOptions{}
	if p.offset != 0 {
		opts.Offset = botapi.Some(p.offset)
	}
	if p.cfg.Limit != 0 {
		opts.Limit = botapi.Some(p.cfg.Limit)
	}
	if p.cfg.Timeout != 0 {
		opts.Timeout = botapi.Some(p.cfg.Timeout)
	}
	batch, err := p.source.GetUpdates(ctx, opts)
	if err != nil {
		return 0, errors.Trace(err)
	}
	for _, update := range batch {
		if update.UpdateID >= p.offset {
			p.offset = update.UpdateID + 1
		}
		p.handler.HandleUpdate(ctx, update)
	}
	return len(batch), nil
}
