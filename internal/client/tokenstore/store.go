// Package tokenstore implements the secure token store: the access/refresh
// token pair, the cached user session, the biometric key, and the opt-in
// remember-me record. Values that must not be readable at rest are sealed
// with AES-GCM under a per-device key held in the same vault; release of the
// sensitive ones is additionally gated by the biometric package.
package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/teachbridge/authkit/internal/client/models"
	"github.com/teachbridge/authkit/internal/client/repositories/secrets"
	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/cryptox"
	"github.com/teachbridge/authkit/internal/dbx"
)

const (
	keyAccessToken   = "access_token"
	keyRefreshToken  = "refresh_token"
	keyUserSession   = "user_session"
	keyBiometricKey  = "biometric_key"
	keyBiometricMeta = "biometric_meta"
	keyRememberMe    = "remember_me"
	keyDeviceKey     = "device_key"
)

// Store persists auth state in the vault database. All multi-key writes run
// in a single transaction so the pair can never be observed half-written.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo() secrets.Repository {
	return secrets.NewSQLiteRepository(s.db)
}

// SetTokens persists both tokens atomically, overwriting any previous pair.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := secrets.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(access)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(refresh))
	})
}

// GetTokens returns the stored pair. Absent tokens come back as empty
// strings; an error means an underlying storage fault.
func (s *Store) GetTokens(ctx context.Context) (models.TokenPair, error) {
	repo := s.repo()

	access, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

// ClearTokens removes the pair. Removing absent keys is not an error.
func (s *Store) ClearTokens(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := secrets.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyAccessToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyRefreshToken)
	})
}

// SaveUser mirrors the current user record so the app can restore a session
// offline after a restart.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.repo().Set(ctx, keyUserSession, data)
}

// GetUser returns the mirrored user record, or nil when none is cached.
func (s *Store) GetUser(ctx context.Context) (*models.User, error) {
	data, err := s.repo().Get(ctx, keyUserSession)
	if err != nil || data == nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}

// SetBiometricKey seals the key under the device key and stores it.
func (s *Store) SetBiometricKey(ctx context.Context, key string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := secrets.NewSQLiteRepository(tx)
		deviceKey, err := s.deviceKey(ctx, repo)
		if err != nil {
			return err
		}
		sealed, err := cryptox.Seal([]byte(key), deviceKey)
		if err != nil {
			return err
		}
		return repo.Set(ctx, keyBiometricKey, sealed)
	})
}

// GetBiometricKey returns the stored biometric key, or an empty string when
// none is stored. Callers must gate this read behind a successful biometric
// challenge; the store itself cannot present one.
func (s *Store) GetBiometricKey(ctx context.Context) (string, error) {
	repo := s.repo()

	sealed, err := repo.Get(ctx, keyBiometricKey)
	if err != nil || sealed == nil {
		return "", err
	}
	deviceKey, err := s.deviceKey(ctx, repo)
	if err != nil {
		return "", err
	}
	key, err := cryptox.Open(sealed, deviceKey)
	if err != nil {
		return "", fmt.Errorf("unseal biometric key: %w", err)
	}
	return string(key), nil
}

// DeleteBiometricKey removes the key and its metadata. Idempotent.
func (s *Store) DeleteBiometricKey(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := secrets.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyBiometricKey); err != nil {
			return err
		}
		return repo.Delete(ctx, keyBiometricMeta)
	})
}

// BiometricMeta records that biometric login is enabled, for whom, and when.
type BiometricMeta struct {
	UserID    string    `json:"user_id"`
	EnabledAt time.Time `json:"enabled_at"`
}

// SetBiometricEnabled stores the enabled flag with its metadata.
func (s *Store) SetBiometricEnabled(ctx context.Context, userID string, at time.Time) error {
	data, err := json.Marshal(BiometricMeta{UserID: userID, EnabledAt: at})
	if err != nil {
		return err
	}
	return s.repo().Set(ctx, keyBiometricMeta, data)
}

// GetBiometricEnabled reports whether biometric login is enabled. The meta
// record is returned alongside for diagnostics.
func (s *Store) GetBiometricEnabled(ctx context.Context) (bool, *BiometricMeta, error) {
	data, err := s.repo().Get(ctx, keyBiometricMeta)
	if err != nil || data == nil {
		return false, nil, err
	}
	var meta BiometricMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return false, nil, fmt.Errorf("decode biometric meta: %w", err)
	}
	return true, &meta, nil
}

// rememberMeRecord is the stored form of the opt-in credentials. The
// password is sealed under a key derived from the device key and a fresh
// salt; it is recoverable only through GetRememberMe.
type rememberMeRecord struct {
	Email  string `json:"email"`
	Salt   []byte `json:"salt"`
	Sealed []byte `json:"sealed"`
}

// SetRememberMe stores the user's credentials for biometric-gated re-login.
func (s *Store) SetRememberMe(ctx context.Context, email, password string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := secrets.NewSQLiteRepository(tx)
		deviceKey, err := s.deviceKey(ctx, repo)
		if err != nil {
			return err
		}

		salt := common.GenerateRandByteArray(16)
		sealed, err := cryptox.Seal([]byte(password), cryptox.DeriveKey(deviceKey, salt))
		if err != nil {
			return err
		}

		data, err := json.Marshal(rememberMeRecord{Email: email, Salt: salt, Sealed: sealed})
		if err != nil {
			return err
		}
		return repo.Set(ctx, keyRememberMe, data)
	})
}

// GetRememberMe recovers the stored credentials. Both values are empty when
// nothing is stored. Callers must gate this read behind a successful
// biometric challenge.
func (s *Store) GetRememberMe(ctx context.Context) (email, password string, err error) {
	repo := s.repo()

	data, err := repo.Get(ctx, keyRememberMe)
	if err != nil || data == nil {
		return "", "", err
	}

	var rec rememberMeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", "", fmt.Errorf("decode remember-me record: %w", err)
	}

	deviceKey, err := s.deviceKey(ctx, repo)
	if err != nil {
		return "", "", err
	}
	plain, err := cryptox.Open(rec.Sealed, cryptox.DeriveKey(deviceKey, rec.Salt))
	if err != nil {
		return "", "", fmt.Errorf("unseal remember-me password: %w", err)
	}
	return rec.Email, string(plain), nil
}

// ClearRememberMe removes the stored credentials. Idempotent.
func (s *Store) ClearRememberMe(ctx context.Context) error {
	return s.repo().Delete(ctx, keyRememberMe)
}

// ClearAll wipes every piece of auth state except the device key: tokens,
// cached user, biometric key and flag, and remember-me credentials.
func (s *Store) ClearAll(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := secrets.NewSQLiteRepository(tx)
		for _, key := range []string{
			keyAccessToken, keyRefreshToken, keyUserSession,
			keyBiometricKey, keyBiometricMeta, keyRememberMe,
		} {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// deviceKey returns the per-device sealing key, creating it on first use.
func (s *Store) deviceKey(ctx context.Context, repo secrets.Repository) ([]byte, error) {
	key, err := repo.Get(ctx, keyDeviceKey)
	if err != nil {
		return nil, err
	}
	if key != nil {
		return key, nil
	}

	key = common.GenerateRandByteArray(32)
	if err := repo.Set(ctx, keyDeviceKey, key); err != nil {
		return nil, err
	}
	return key, nil
}
