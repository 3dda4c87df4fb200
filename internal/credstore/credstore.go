// Package credstore persists the single authentication token across restarts.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/and161185/notepad/internal/crypto/clientcrypto"
	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

// tokenFile is the on-disk layout. Exactly one of AccessToken/SealedToken is set.
type tokenFile struct {
	AccessToken string    `json:"access_token,omitempty"`
	SealedToken []byte    `json:"sealed_token,omitempty"`
	Salt        []byte    `json:"salt,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// FileStore keeps the token in a JSON file, optionally sealed with a passphrase.
type FileStore struct {
	path       string
	passphrase []byte
	log        *zap.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithPassphrase enables sealing of the stored token.
func WithPassphrase(p string) Option {
	return func(s *FileStore) {
		if p != "" {
			s.passphrase = []byte(p)
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// DefaultDir returns the per-user config directory for the client.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "notepad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notepad")
}

// DefaultPath returns the default token file location.
func DefaultPath() string { return filepath.Join(DefaultDir(), "token.json") }

// New creates a FileStore at path (DefaultPath when empty).
func New(path string, opts ...Option) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	s := &FileStore{path: path, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the token file location.
func (s *FileStore) Path() string { return s.path }

// Save writes token, replacing any previous value.
func (s *FileStore) Save(token string) error {
	tf := tokenFile{ExpiresAt: ExpiryHint(token)}
	if s.passphrase != nil {
		salt, err := clientcrypto.Rand(clientcrypto.SaltLen)
		if err != nil {
			return fmt.Errorf("%w: salt: %v", errs.ErrStorageUnavailable, err)
		}
		sealed, err := clientcrypto.Seal(clientcrypto.DeriveKey(s.passphrase, salt), []byte(token), s.aad())
		if err != nil {
			return fmt.Errorf("%w: seal: %v", errs.ErrStorageUnavailable, err)
		}
		tf.SealedToken, tf.Salt = sealed, salt
	} else {
		tf.AccessToken = token
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", errs.ErrStorageUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err)
	}
	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err)
	}
	s.log.Debug("token saved", zap.String("path", s.path), zap.Bool("sealed", s.passphrase != nil))
	return nil
}

// Load returns the stored token. A missing file is reported as ok=false with no error.
func (s *FileStore) Load() (model.Token, bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Token{}, false, nil
	}
	if err != nil {
		return model.Token{}, false, fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err)
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return model.Token{}, false, fmt.Errorf("%w: decode %s: %v", errs.ErrStorageUnavailable, s.path, err)
	}

	tok := tf.AccessToken
	if len(tf.SealedToken) > 0 {
		if s.passphrase == nil {
			return model.Token{}, false, fmt.Errorf("%w: token is sealed, passphrase required", errs.ErrStorageUnavailable)
		}
		pt, err := clientcrypto.Open(clientcrypto.DeriveKey(s.passphrase, tf.Salt), tf.SealedToken, s.aad())
		if err != nil {
			return model.Token{}, false, fmt.Errorf("%w: unseal: %v", errs.ErrStorageUnavailable, err)
		}
		tok = string(pt)
	}
	if tok == "" {
		return model.Token{}, false, nil
	}
	return model.Token{AccessToken: tok, ExpiresAt: tf.ExpiresAt}, true, nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err)
}

func (s *FileStore) aad() []byte { return []byte(filepath.Base(s.path)) }

// ExpiryHint reads the exp claim of a JWT without verifying it.
// Opaque tokens yield the zero time.
func ExpiryHint(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
