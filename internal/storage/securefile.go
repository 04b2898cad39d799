package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

const secretboxNonceSize = 24

// SecureFileKV seals its contents into a single file with NaCl secretbox.
// The whole map is re-sealed on every write; the value set is tiny (one
// credential record), so simplicity wins over incremental updates.
type SecureFileKV struct {
	mu   sync.Mutex
	path string
	key  [32]byte
}

// NewSecureFileKV opens (or prepares to create) the sealed file at path.
// key is the base64 encoding of a 32-byte secretbox key.
func NewSecureFileKV(path, key string) (*SecureFileKV, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode secure store key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secure store key must be 32 bytes, got %d", len(raw))
	}
	s := &SecureFileKV{path: path}
	copy(s.key[:], raw)
	return s, nil
}

func (s *SecureFileKV) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return "", err
	}
	if v, ok := items[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (s *SecureFileKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items[key] = value
	return s.save(items)
}

func (s *SecureFileKV) load() (map[string]string, error) {
	sealed, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read secure store: %w", err)
	}
	if len(sealed) < secretboxNonceSize {
		return nil, fmt.Errorf("secure store truncated")
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], sealed[:secretboxNonceSize])
	plain, ok := secretbox.Open(nil, sealed[secretboxNonceSize:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("secure store unseal failed")
	}

	var items map[string]string
	if err := json.Unmarshal(plain, &items); err != nil {
		return nil, fmt.Errorf("decode secure store: %w", err)
	}
	return items, nil
}

func (s *SecureFileKV) save(items map[string]string) error {
	plain, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode secure store: %w", err)
	}

	var nonce [secretboxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("write secure store: %w", err)
	}
	return os.Rename(tmp, s.path)
}
