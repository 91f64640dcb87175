package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/errors"
)

// Store persists a Session.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore keeps the session in a YAML file readable only by its owner.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the session. A missing file is an empty session.
func (s *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, errors.WrapIO("read", s.path, err)
	}
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, errors.WrapParse("yaml", s.path, err)
	}
	return sess, nil
}

// Save writes the session through a temporary file and rename.
func (s *FileStore) Save(sess Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return errors.WrapParse("yaml", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, constants.SecureDirPermissions); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapIO("write", tmp.Name(), err)
	}
	if err := tmp.Chmod(constants.SecureFilePermissions); err != nil {
		tmp.Close()
		return errors.WrapIO("chmod", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}

// Clear removes the session file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", s.path, err)
	}
	return nil
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	mu   sync.Mutex
	sess Session
}

// NewMemoryStore creates a store holding sess.
func NewMemoryStore(sess Session) *MemoryStore {
	return &MemoryStore{sess: sess}
}

// Load implements Store.
func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, nil
}

// Save implements Store.
func (m *MemoryStore) Save(sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}
