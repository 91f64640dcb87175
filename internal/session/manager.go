package session

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// Listener is called with the previous and current session after a change.
type Listener func(prev, curr Session)

// Manager owns the current session: it loads on start, saves on every
// change and tells listeners about changes made here or by other processes.
type Manager struct {
	mu        sync.RWMutex
	store     Store
	current   Session
	listeners []Listener
	logger    *zerolog.Logger
}

// NewManager loads the stored session.
func NewManager(store Store, logger *zerolog.Logger) (*Manager, error) {
	if logger == nil {
		logger = logging.Default()
	}
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, current: sess, logger: logger}, nil
}

// Current returns the session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers a listener.
func (m *Manager) OnChange(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Login starts and saves a session for an authenticated account.
func (m *Manager) Login(a accounts.Account) (Session, error) {
	sess := FromAccount(a)
	if err := m.store.Save(sess); err != nil {
		return Session{}, err
	}
	m.apply(sess)
	m.logger.Info().Str("user", sess.UserName).Str("role", sess.Role).Msg("Logged in")
	return sess, nil
}

// Logout clears the stored session.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.apply(Session{})
	m.logger.Info().Msg("Logged out")
	return nil
}

// Require returns the session or an authentication error when nobody is
// logged in.
func (m *Manager) Require() (Session, error) {
	sess := m.Current()
	if !sess.LoggedIn {
		return sess, errors.NewAuthenticationError("session", "not logged in, run 'docledger login'", nil)
	}
	return sess, nil
}

// Reload re-reads the store and applies any difference.
func (m *Manager) Reload() error {
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	m.apply(sess)
	return nil
}

// apply swaps in sess and notifies listeners outside the lock.
func (m *Manager) apply(sess Session) {
	m.mu.Lock()
	prev := m.current
	m.current = sess
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	if prev == sess {
		return
	}
	for _, fn := range listeners {
		fn(prev, sess)
	}
}

// Watch reloads the session whenever another process rewrites the file.
// It only works for a FileStore and stops when ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	fs, ok := m.store.(*FileStore)
	if !ok {
		return errors.NewConfigError("session", "watch requires a file store", nil)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapResource("create", "watcher", fs.Path(), err)
	}
	// The directory is watched because saves replace the file by rename.
	dir := filepath.Dir(fs.Path())
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return errors.WrapIO("watch", dir, err)
	}

	go m.watchLoop(ctx, watcher, filepath.Base(fs.Path()))
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, name string) {
	defer func() {
		if err := watcher.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close session watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := m.Reload(); err != nil {
				m.logger.Warn().Err(err).Msg("Failed to reload session")
				continue
			}
			m.logger.Debug().Str("op", event.Op.String()).Msg("Session file changed")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("Session watcher error")
		}
	}
}
