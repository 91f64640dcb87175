// Package docledger is the entry point for the document ledger. It keeps a
// reconciled, newest-first view of the primary and renewal ledgers held by
// the spreadsheet script service, applies writes optimistically and reports
// collection changes through hooks.
//
// Example usage:
//
//	dl, err := docledger.New(
//	    docledger.WithEndpoint("https://script.google.com/macros/s/.../exec"),
//	    docledger.WithAutoRefreshInterval(10*time.Minute),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dl.AutoRefreshOff()
//
//	dl.OnDocumentAdded(func(rec documents.Record) {
//	    log.Printf("New document: %s", rec.SerialNumber)
//	})
//
//	if err := dl.Refresh(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range dl.Documents() {
//	    fmt.Printf("%d %s %s\n", rec.DisplayID, rec.SerialNumber, rec.Name)
//	}
package docledger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/internal/transport"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
	"github.com/agentstation/docledger/pkg/reconcile"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Reader provides copy-on-read access to the reconciled collection.
type Reader interface {
	// Documents returns a copy of the current collection
	Documents() []documents.Record

	// Get returns the document with the given serial number
	Get(serial string) (documents.Record, error)

	// RefreshedAt returns when the collection was last replaced by a refresh
	RefreshedAt() time.Time

	// Location returns the zone used for sheet dates without an offset
	Location() *time.Location

	// Now returns the current time from the configured clock
	Now() time.Time
}

// Client manages the reconciled ledger with background refreshes and hooks.
type Client interface {
	Reader

	// Updater reloads the collection from the script service
	Updater

	// Mutator writes documents and applies the change locally
	Mutator

	// Workflow covers approvals, sharing and reference lists
	Workflow

	// AutoRefresher controls background refreshes
	AutoRefresher

	// Hooks registers collection change callbacks
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	options    *options
	service    Service
	reconciler *reconcile.Reconciler
	logger     *zerolog.Logger

	mu          sync.RWMutex
	records     []documents.Record
	refreshedAt time.Time
	installed   uint64 // generation of the last installed change, guarded by mu

	// generation is bumped by every refresh and every local mutation. A
	// refresh installs its result unless a change with a later generation
	// was installed first; failed refreshes install nothing.
	generation atomic.Uint64

	// auto refresh state
	refreshMu     sync.Mutex
	refreshTicker *time.Ticker
	stopCh        chan struct{}
	refreshCancel context.CancelFunc

	hooks *hooks
}

// New creates a Client. Either WithService or WithEndpoint is required.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Default()
	}

	svc := o.service
	if svc == nil {
		if svc, err = newSheetsService(o, logger); err != nil {
			return nil, err
		}
	}

	rec, err := reconcile.New(reconcile.WithTieBreak(o.tieBreak), reconcile.WithLogger(logger))
	if err != nil {
		return nil, errors.NewConfigError("reconcile", "invalid reconciler options", err)
	}

	c := &client{
		options:    o,
		service:    svc,
		reconciler: rec,
		logger:     logger,
		records:    []documents.Record{},
		stopCh:     make(chan struct{}),
		hooks:      newHooks(),
	}

	if o.autoRefreshEnabled {
		if err := c.AutoRefreshOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-refresh", "", err)
		}
	}

	return c, nil
}

func newSheetsService(o *options, logger *zerolog.Logger) (*sheets.Client, error) {
	var topts []transport.Option
	topts = append(topts, transport.WithLogger(logger))
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.apiKey != "" {
		topts = append(topts, transport.WithAPIKey(o.apiKey))
	}
	tc := transport.New(transport.NewAuthenticator(o.authScheme), topts...)

	return sheets.New(o.endpoint,
		sheets.WithTransport(tc),
		sheets.WithLogger(logger),
		sheets.WithLocation(o.location),
		sheets.WithUploadFolder(o.uploadFolder),
		sheets.WithClock(o.now),
	)
}

// Documents returns a copy of the current collection.
func (c *client) Documents() []documents.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]documents.Record, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Clone()
	}
	return out
}

// Get returns the document with the given serial number.
func (c *client) Get(serial string) (documents.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := documents.FindBySerial(c.records, serial)
	if !ok {
		return documents.Record{}, errors.NewNotFoundError("document", serial)
	}
	return rec.Clone(), nil
}

// RefreshedAt returns when the collection was last replaced by a refresh.
func (c *client) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// Location returns the zone used for sheet dates without an offset.
func (c *client) Location() *time.Location {
	return c.options.location
}

// Now returns the current time from the configured clock.
func (c *client) Now() time.Time {
	return c.options.now()
}
