package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

func TestSessionRoles(t *testing.T) {
	tests := []struct {
		name  string
		sess  Session
		admin bool
	}{
		{"admin", Session{LoggedIn: true, Role: "admin", UserName: "Ana"}, true},
		{"admin mixed case", Session{LoggedIn: true, Role: " Admin ", UserName: "Ana"}, true},
		{"user", Session{LoggedIn: true, Role: "user", UserName: "Ben"}, false},
		{"logged out admin", Session{Role: "admin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, tt.sess.IsAdmin())
			v := tt.sess.Viewer()
			assert.Equal(t, tt.sess.UserName, v.Name)
			assert.Equal(t, tt.admin, v.Admin)
		})
	}
}

func TestFromAccount(t *testing.T) {
	sess := FromAccount(accounts.Account{Username: "ben", Role: "user"})
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "ben", sess.UserName)
	assert.Equal(t, "user", sess.Role)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.yaml")
	store := NewFileStore(path)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)

	want := Session{LoggedIn: true, Role: "admin", UserName: "Ana"}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "is_logged_in: true")
	assert.Contains(t, string(data), "user_name: Ana")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.False(t, got.LoggedIn)
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("is_logged_in: [unterminated"), 0600))

	_, err := NewFileStore(path).Load()
	require.Error(t, err)
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestManagerLoginLogout(t *testing.T) {
	store := NewMemoryStore(Session{})
	m, err := NewManager(store, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = m.Require()
	assert.True(t, errors.IsUnauthorized(err))

	var changes []Session
	m.OnChange(func(_, curr Session) { changes = append(changes, curr) })

	sess, err := m.Login(accounts.Account{Name: "Ana", Username: "ana", Role: "admin"})
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())

	stored, _ := store.Load()
	assert.Equal(t, sess, stored)

	got, err := m.Require()
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.UserName)

	// Reloading an unchanged store is silent.
	require.NoError(t, m.Reload())

	require.NoError(t, m.Logout())
	assert.False(t, m.Current().LoggedIn)

	require.Len(t, changes, 2)
	assert.True(t, changes[0].LoggedIn)
	assert.False(t, changes[1].LoggedIn)
}

func TestManagerWatchRequiresFileStore(t *testing.T) {
	m, err := NewManager(NewMemoryStore(Session{}), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Error(t, m.Watch(context.Background()))
}

func TestManagerWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	m, err := NewManager(NewFileStore(path), logging.NewNopLogger())
	require.NoError(t, err)

	changed := make(chan Session, 8)
	m.OnChange(func(_, curr Session) { changed <- curr })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx))

	// Another process logs in.
	other := NewFileStore(path)
	require.NoError(t, other.Save(Session{LoggedIn: true, Role: "user", UserName: "Ben"}))

	select {
	case sess := <-changed:
		assert.Equal(t, "Ben", sess.UserName)
	case <-time.After(5 * time.Second):
		t.Fatal("session change was not observed")
	}
	assert.Eventually(t, func() bool {
		return m.Current().UserName == "Ben"
	}, 5*time.Second, 10*time.Millisecond)

	// And logs out.
	require.NoError(t, other.Clear())
	assert.Eventually(t, func() bool {
		return !m.Current().LoggedIn
	}, 5*time.Second, 10*time.Millisecond)
}
