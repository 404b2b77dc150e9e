package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "store.json")
	s, err := NewLocalStorage(path, "correct horse")
	require.NoError(t, err)

	_, ok, err := s.Get("authToken")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(map[string]string{"authToken": "abc.def.ghi", "user": `{"id":"1"}`}))

	// a fresh instance with the same passphrase reads it back
	again, err := NewLocalStorage(path, "correct horse")
	require.NoError(t, err)
	v, ok, err := again.Get("authToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", v)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "abc.def.ghi"), "token must not be stored in clear text")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLocalStorage_WrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewLocalStorage(path, "one")
	require.NoError(t, err)
	require.NoError(t, s.Set(map[string]string{"authToken": "x"}))

	other, err := NewLocalStorage(path, "two")
	require.NoError(t, err)
	_, _, err = other.Get("authToken")
	assert.ErrorIs(t, err, ErrCorrupted)

	// deleting with the wrong key wipes the unreadable file
	require.NoError(t, other.Delete("authToken"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_DeleteLastKeyRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewLocalStorage(path, "pw")
	require.NoError(t, err)
	require.NoError(t, s.Set(map[string]string{"a": "1", "b": "2"}))

	require.NoError(t, s.Delete("a"))
	v, ok, err := s.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, s.Delete("b", "missing"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewLocalStorage_EmptyPassphrase(t *testing.T) {
	_, err := NewLocalStorage(filepath.Join(t.TempDir(), "s.json"), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Set(map[string]string{"k": "v"}))
	v, ok, _ := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	require.NoError(t, m.Delete("k"))
	_, ok, _ = m.Get("k")
	assert.False(t, ok)
}

func TestDeviceID_Stable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device-id")
	first, err := DeviceID(path)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := DeviceID(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
