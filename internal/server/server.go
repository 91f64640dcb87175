// Package server provides the HTTP API for the document ledger.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/server/cache"
	"github.com/agentstation/docledger/internal/server/events"
	"github.com/agentstation/docledger/internal/server/events/adapters"
	"github.com/agentstation/docledger/internal/server/middleware"
	"github.com/agentstation/docledger/internal/server/sse"
	ws "github.com/agentstation/docledger/internal/server/websocket"
	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	ledger         docledger.Client
	tokens         *auth.TokenService
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startTime      time.Time
}

// New creates a new server instance with the given configuration. tokens
// may be nil only when authentication is disabled.
func New(ledger docledger.Client, tokens *auth.TokenService, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if ledger == nil {
		return nil, errors.NewConfigError("server", "a ledger is required", nil)
	}
	if cfg.AuthEnabled && tokens == nil {
		return nil, errors.NewConfigError("jwt_secret", "a token secret is required when authentication is enabled", nil)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Debug().Msg("Creating new server instance")

	// Set defaults
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = constants.CacheTTL
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	// Subscribe transports to broker
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))
	logger.Debug().Int("subscribers", broker.SubscriberCount()).Msg("Realtime transports subscribed")

	ctx, cancel := context.WithCancel(context.Background())

	server := &Server{
		ledger:         ledger,
		tokens:         tokens,
		cache:          cache.New(cfg.CacheTTL, constants.CacheCleanupInterval),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg),
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		server.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	server.connectHooks()

	logger.Debug().Msg("Server instance created successfully")
	return server, nil
}

// checkOrigin allows same-origin WebSocket upgrades, plus the configured
// CORS origins when CORS is enabled.
func checkOrigin(cfg Config) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || !cfg.CORSEnabled {
			return true
		}
		if len(cfg.CORSOrigins) == 0 {
			return true
		}
		for _, allowed := range cfg.CORSOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}

// connectHooks registers ledger hooks that publish to the broker and drop
// cached dashboards.
func (s *Server) connectHooks() {
	s.ledger.OnDocumentAdded(func(rec documents.Record) {
		s.cache.InvalidateDashboards()
		s.broker.Publish(events.DocumentAdded, map[string]any{
			"document": rec,
		})
		s.logger.Debug().
			Str("serial", rec.SerialNumber).
			Msg("Document added event published")
	})

	s.ledger.OnDocumentUpdated(func(old, updated documents.Record) {
		s.cache.InvalidateDashboards()
		s.broker.Publish(events.DocumentUpdated, map[string]any{
			"old_document": old,
			"new_document": updated,
		})
		s.logger.Debug().
			Str("serial", updated.SerialNumber).
			Msg("Document updated event published")
	})

	s.ledger.OnDocumentRemoved(func(rec documents.Record) {
		s.cache.InvalidateDashboards()
		s.broker.Publish(events.DocumentRemoved, map[string]any{
			"document": rec,
		})
		s.logger.Debug().
			Str("serial", rec.SerialNumber).
			Msg("Document removed event published")
	})

	s.logger.Info().Msg("Ledger hooks connected to event broker")
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	s.logger.Debug().Msg("Starting background services")

	for _, run := range []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run} {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			run(s.ctx)
		}()
	}

	s.logger.Debug().Msg("All background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services, waiting for them until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")

	s.cancel()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
