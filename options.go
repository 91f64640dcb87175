package docledger

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/reconcile"
)

// options holds the configuration for a Client.
type options struct {
	service Service

	// script service connection, used when no service is injected
	endpoint     string
	apiKey       string
	authScheme   string
	uploadFolder string
	httpClient   *http.Client

	tieBreak reconcile.TieBreak
	location *time.Location
	now      func() time.Time
	logger   *zerolog.Logger

	autoRefreshEnabled  bool
	autoRefreshInterval time.Duration
}

// Option configures a Client.
type Option func(*options) error

func defaults() *options {
	return &options{
		tieBreak:            reconcile.TieKeepFirst,
		location:            time.Local,
		now:                 time.Now,
		autoRefreshInterval: constants.DefaultRefreshInterval,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithService injects the script service. It takes precedence over
// WithEndpoint.
func WithService(svc Service) Option {
	return func(o *options) error {
		if svc == nil {
			return errors.NewConfigError("docledger", "service cannot be nil", nil)
		}
		o.service = svc
		return nil
	}
}

// WithEndpoint sets the script service URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) error {
		o.endpoint = endpoint
		return nil
	}
}

// WithAPIKey sets an API key and how it is attached to requests
// ("", "bearer", "header:<name>", "query:<param>" or a bare query param).
func WithAPIKey(key, scheme string) Option {
	return func(o *options) error {
		o.apiKey = key
		o.authScheme = scheme
		return nil
	}
}

// WithUploadFolder sets the Drive folder new files are uploaded to.
func WithUploadFolder(id string) Option {
	return func(o *options) error {
		o.uploadFolder = id
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for the script service.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		o.httpClient = hc
		return nil
	}
}

// WithTieBreak selects how equal timestamps for one serial are resolved.
func WithTieBreak(tb reconcile.TieBreak) Option {
	return func(o *options) error {
		if !tb.Valid() {
			return errors.NewValidationError("tie_break", string(tb), "must be keep-first or keep-latest")
		}
		o.tieBreak = tb
		return nil
	}
}

// WithLocation sets the zone for sheet dates without an offset.
func WithLocation(loc *time.Location) Option {
	return func(o *options) error {
		if loc == nil {
			return errors.NewConfigError("docledger", "location cannot be nil", nil)
		}
		o.location = loc
		return nil
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.NewConfigError("docledger", "clock cannot be nil", nil)
		}
		o.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithAutoRefresh starts background refreshes when the client is created.
func WithAutoRefresh(enabled bool) Option {
	return func(o *options) error {
		o.autoRefreshEnabled = enabled
		return nil
	}
}

// WithAutoRefreshInterval sets how often background refreshes run.
func WithAutoRefreshInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoRefreshInterval = interval
		return nil
	}
}
