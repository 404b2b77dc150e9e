package storage

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const fileVersion = 1

// argon2id parameters
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	saltSize   = 16
)

// envelope is the on-disk format. Payload is a JSON object of key/value pairs
// sealed with XChaCha20-Poly1305 under an argon2id key.
type envelope struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// LocalStorage is an encrypted key/value file.
type LocalStorage struct {
	path       string
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  []byte
}

func NewLocalStorage(path string, passphrase string) (*LocalStorage, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassword
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		path:       cleanPath,
		passphrase: []byte(passphrase),
	}, nil
}

func (s *LocalStorage) Path() string {
	return s.path
}

func (s *LocalStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *LocalStorage) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return s.save(current)
}

func (s *LocalStorage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		if errors.Is(err, ErrCorrupted) {
			// unreadable credentials are as good as gone
			return s.remove()
		}
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	if len(current) == 0 {
		return s.remove()
	}
	return s.save(current)
}

func (s *LocalStorage) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Version != fileVersion {
		return nil, ErrCorrupted
	}

	aead, err := chacha20poly1305.NewX(s.deriveKey(env.Salt))
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrCorrupted
	}
	plain, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrCorrupted
	}

	values := make(map[string]string)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, ErrCorrupted
	}
	return values, nil
}

func (s *LocalStorage) save(values map[string]string) error {
	if s.salt == nil {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		s.salt = salt
		s.key = nil
	}

	aead, err := chacha20poly1305.NewX(s.deriveKey(s.salt))
	if err != nil {
		return fmt.Errorf("failed to init cipher: %w", err)
	}

	plain, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	raw, err := json.Marshal(envelope{
		Version:    fileVersion,
		Salt:       s.salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plain, nil),
	})
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}

	// write-then-rename so a crash never leaves a half-written file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

func (s *LocalStorage) remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete storage file: %w", err)
	}
	s.salt = nil
	s.key = nil
	return nil
}

// deriveKey caches the key for the current salt; argon2id is deliberately slow.
func (s *LocalStorage) deriveKey(salt []byte) []byte {
	if s.key != nil && string(salt) == string(s.salt) {
		return s.key
	}
	key := argon2.IDKey(s.passphrase, salt, kdfTime, kdfMemory, kdfThreads, chacha20poly1305.KeySize)
	s.salt = append([]byte(nil), salt...)
	s.key = key
	return key
}
