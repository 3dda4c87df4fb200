package credstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/notepad/internal/errs"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestDefaultPath_HonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.Equal(t, filepath.Join(dir, "notepad", "token.json"), DefaultPath())
	require.Equal(t, DefaultPath(), New("").Path())
}

func TestFileStore_SaveLoadClear(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	s := New(path)

	_, ok, err := s.Load()
	require.NoError(t, err, "missing file is not an error")
	require.False(t, ok)

	require.NoError(t, s.Save("abc"))
	tok, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", tok.AccessToken)
	require.True(t, tok.ExpiresAt.IsZero(), "opaque token has no expiry hint")

	require.NoError(t, s.Save("def"), "save overwrites")
	tok, _, _ = s.Load()
	require.Equal(t, "def", tok.AccessToken)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clear is idempotent")
	_, ok, err = s.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := New(filepath.Join(dir, "token.json"))
	require.NoError(t, s.Save("abc"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), tempFilePrefix), "leftover %s", e.Name())
	}
}

func TestFileStore_JWTExpiryHint(t *testing.T) {
	t.Parallel()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := New(filepath.Join(t.TempDir(), "token.json"))

	require.NoError(t, s.Save(signed(t, exp)))
	tok, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tok.ExpiresAt.Equal(exp), "got %v want %v", tok.ExpiresAt, exp)
}

func TestFileStore_Unavailable(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	s := New(filepath.Join(blocker, "token.json"))

	require.ErrorIs(t, s.Save("abc"), errs.ErrStorageUnavailable)
	require.ErrorIs(t, s.Clear(), errs.ErrStorageUnavailable)
	_, _, err := s.Load()
	require.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestFileStore_Corrupt(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, ok, err := New(path).Load()
	require.ErrorIs(t, err, errs.ErrStorageUnavailable)
	require.False(t, ok)
}

func TestFileStore_Sealed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "token.json")
	s := New(path, WithPassphrase("hunter2"))
	require.NoError(t, s.Save("secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	tok, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "secret-token", tok.AccessToken)

	_, _, err = New(path, WithPassphrase("wrong")).Load()
	require.ErrorIs(t, err, errs.ErrStorageUnavailable)

	_, _, err = New(path).Load()
	require.ErrorIs(t, err, errs.ErrStorageUnavailable, "sealed file without passphrase")
}

func TestExpiryHint(t *testing.T) {
	t.Parallel()
	require.True(t, ExpiryHint("opaque").IsZero())
	require.True(t, ExpiryHint("").IsZero())

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.True(t, ExpiryHint(noExp).IsZero())

	exp := time.Now().Add(-time.Minute).Truncate(time.Second)
	require.True(t, ExpiryHint(signed(t, exp)).Equal(exp))
}
