package docledger

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRefresher = (*client)(nil)

// AutoRefresher provides controls for background refreshes.
type AutoRefresher interface {
	// AutoRefreshOn begins refreshing at the configured interval
	AutoRefreshOn() error

	// AutoRefreshOff stops background refreshes
	AutoRefreshOff() error
}

// AutoRefreshOn begins refreshing at the configured interval.
func (c *client) AutoRefreshOn() error {
	if c.options.autoRefreshInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRefreshInterval",
			Value:   c.options.autoRefreshInterval,
			Message: "refresh interval must be positive",
		}
	}

	// Stop any running loop before starting a new one
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.stopCh = make(chan struct{})
	c.refreshTicker = time.NewTicker(c.options.autoRefreshInterval)
	ctx, cancel := context.WithCancel(context.Background())
	c.refreshCancel = cancel

	go c.refreshLoop(ctx, c.refreshTicker, c.stopCh)

	c.logger.Debug().Dur("interval", c.options.autoRefreshInterval).Msg("Auto-refresh started")
	return nil
}

func (c *client) refreshLoop(parent context.Context, ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(parent, constants.RefreshContextTimeout)
			err := c.Refresh(ctx)
			cancel()

			switch {
			case err == nil, stderrors.Is(err, errors.ErrStale):
			case errors.IsCanceled(err):
				return
			case errors.IsTimeout(err):
				c.logger.Warn().Err(err).Dur("timeout", constants.RefreshContextTimeout).Msg("Auto-refresh timed out")
			default:
				c.logger.Error().Err(err).Msg("Auto-refresh failed")
			}
		case <-parent.Done():
			return
		case <-stopCh:
			return
		}
	}
}

// AutoRefreshOff stops background refreshes.
func (c *client) AutoRefreshOff() error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.refreshTicker != nil {
		c.refreshTicker.Stop()
		c.refreshTicker = nil
	}
	if c.refreshCancel != nil {
		c.refreshCancel()
		c.refreshCancel = nil
	}
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	return nil
}
