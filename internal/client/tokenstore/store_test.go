package tokenstore

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachbridge/authkit/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE secrets (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return New(db), db
}

func rawValue(t *testing.T, db *sql.DB, key string) []byte {
	t.Helper()
	var v []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM secrets WHERE key=?`, key).Scan(&v))
	return v
}

func TestGetTokens_EmptyStore(t *testing.T) {
	s, _ := setupStore(t)

	pair, err := s.GetTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{}, pair)
}

func TestSetTokens_RoundtripAndOverwrite(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, "at1", "rt1"))
	pair, err := s.GetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{AccessToken: "at1", RefreshToken: "rt1"}, pair)

	require.NoError(t, s.SetTokens(ctx, "at2", "rt2"))
	pair, err = s.GetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{AccessToken: "at2", RefreshToken: "rt2"}, pair)
}

func TestClearTokens_Idempotent(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, "at", "rt"))
	require.NoError(t, s.ClearTokens(ctx))
	require.NoError(t, s.ClearTokens(ctx))

	pair, err := s.GetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{}, pair)
}

func TestSaveGetUser(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	// absent -> nil, nil
	u, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	want := &models.User{ID: "u1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}
	require.NoError(t, s.SaveUser(ctx, want))

	u, err = s.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, u)
}

func TestBiometricKey_SealedAtRest(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetBiometricKey(ctx, "opaque-biometric-key"))

	// Stored form must not contain the plaintext key.
	raw := rawValue(t, db, "biometric_key")
	assert.False(t, bytes.Contains(raw, []byte("opaque-biometric-key")))

	key, err := s.GetBiometricKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-biometric-key", key)
}

func TestBiometricEnabled_FlagAndMeta(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	enabled, meta, err := s.GetBiometricEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Nil(t, meta)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetBiometricEnabled(ctx, "u1", at))

	enabled, meta, err = s.GetBiometricEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NotNil(t, meta)
	assert.Equal(t, "u1", meta.UserID)
	assert.True(t, meta.EnabledAt.Equal(at))
}

func TestDeleteBiometricKey_RemovesKeyAndMeta(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetBiometricKey(ctx, "k"))
	require.NoError(t, s.SetBiometricEnabled(ctx, "u1", time.Now()))

	require.NoError(t, s.DeleteBiometricKey(ctx))
	require.NoError(t, s.DeleteBiometricKey(ctx)) // idempotent

	key, err := s.GetBiometricKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", key)

	enabled, _, err := s.GetBiometricEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRememberMe_RoundtripAndSealedAtRest(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	// absent -> empty values, no error
	email, password, err := s.GetRememberMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", email)
	assert.Equal(t, "", password)

	require.NoError(t, s.SetRememberMe(ctx, "ann@example.com", "s3cret-pw"))

	raw := rawValue(t, db, "remember_me")
	assert.False(t, bytes.Contains(raw, []byte("s3cret-pw")))

	email, password, err = s.GetRememberMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", email)
	assert.Equal(t, "s3cret-pw", password)
}

func TestClearRememberMe(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetRememberMe(ctx, "a@b", "pw"))
	require.NoError(t, s.ClearRememberMe(ctx))
	require.NoError(t, s.ClearRememberMe(ctx))

	email, password, err := s.GetRememberMe(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
	assert.Empty(t, password)
}

func TestClearAll_WipesStateButKeepsDeviceKey(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, "at", "rt"))
	require.NoError(t, s.SaveUser(ctx, &models.User{ID: "u1"}))
	require.NoError(t, s.SetBiometricKey(ctx, "k"))
	require.NoError(t, s.SetBiometricEnabled(ctx, "u1", time.Now()))
	require.NoError(t, s.SetRememberMe(ctx, "a@b", "pw"))

	require.NoError(t, s.ClearAll(ctx))

	pair, err := s.GetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{}, pair)

	u, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	enabled, _, err := s.GetBiometricEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	email, _, err := s.GetRememberMe(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)

	// The device key survives so future seals keep working.
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM secrets WHERE key='device_key'`).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, s.SetRememberMe(ctx, "a@b", "pw2"))
	_, password, err := s.GetRememberMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pw2", password)
}
