package docledger

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater reloads the collection.
type Updater interface {
	// Refresh fetches both ledgers, reconciles them and replaces the
	// collection. It returns errors.ErrStale when a later refresh or a local
	// mutation was installed first; the collection is then left as it is.
	Refresh(ctx context.Context) error
}

// Refresh fetches both ledgers, reconciles them and replaces the collection.
func (c *client) Refresh(ctx context.Context) error {
	gen := c.generation.Add(1)
	start := time.Now()
	logger := c.logger.With().Uint64("generation", gen).Logger()
	ctx = logging.WithLogger(ctx, &logger)

	var primary, renewals []documents.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := c.service.Documents(gctx)
		if err != nil {
			return errors.WrapResource("fetch", "sheet", documents.SheetDocuments, err)
		}
		primary = recs
		return nil
	})
	g.Go(func() error {
		recs, err := c.service.Renewals(gctx)
		if err != nil {
			return errors.WrapResource("fetch", "sheet", documents.SheetRenewals, err)
		}
		renewals = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("Refresh failed, keeping current documents")
		return err
	}

	result := c.reconciler.Reconcile(primary, renewals)

	c.mu.Lock()
	if gen < c.installed {
		c.mu.Unlock()
		logger.Debug().Uint64("installed", c.installed).Msg("Discarding stale refresh")
		return errors.ErrStale
	}
	c.installed = gen
	old := c.records
	c.records = result.Records
	c.refreshedAt = c.options.now()
	c.mu.Unlock()

	logger.Info().
		Int("primary", len(primary)).
		Int("renewals", len(renewals)).
		Int("records", len(result.Records)).
		Dur("duration", time.Since(start)).
		Msg("Refreshed documents")

	c.hooks.triggerCollectionUpdate(old, result.Records)
	return nil
}
