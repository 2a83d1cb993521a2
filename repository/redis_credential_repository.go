// ABOUTME: Redis-backed CredentialRepository for clients sharing a session across processes
// ABOUTME: Stores the credential as JSON under a prefixed key, the return path alongside it

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MODSetter/SurfSense-sub002/models"
)

// RedisCredentialRepository implements CredentialRepository and
// SessionStateRepository on top of a Redis instance.
type RedisCredentialRepository struct {
	client    *redis.Client
	keyPrefix string
	logger    *slog.Logger
}

// NewRedisCredentialRepository creates a repository against the given address.
func NewRedisCredentialRepository(addr, password string, db int, keyPrefix string, logger *slog.Logger) *RedisCredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if keyPrefix == "" {
		keyPrefix = "surfsense"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCredentialRepository{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// NewRedisCredentialRepositoryWithClient creates a repository with an existing client (for testing).
func NewRedisCredentialRepositoryWithClient(client *redis.Client, keyPrefix string, logger *slog.Logger) *RedisCredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if keyPrefix == "" {
		keyPrefix = "surfsense"
	}

	return &RedisCredentialRepository{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Close closes the underlying Redis connection.
func (r *RedisCredentialRepository) Close() error {
	return r.client.Close()
}

// Ping checks Redis connectivity.
func (r *RedisCredentialRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCredentialRepository) credentialKey() string {
	return fmt.Sprintf("%s:credential", r.keyPrefix)
}

func (r *RedisCredentialRepository) returnPathKey() string {
	return fmt.Sprintf("%s:return_path", r.keyPrefix)
}

// GetCredential retrieves the stored credential.
func (r *RedisCredentialRepository) GetCredential(ctx context.Context) (*models.Credential, error) {
	data, err := r.client.Get(ctx, r.credentialKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCredentialNotFound
		}
		r.logger.Error("Failed to retrieve credential from Redis", "error", err)
		return nil, fmt.Errorf("failed to retrieve credential: %w", err)
	}

	var cred models.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		r.logger.Error("Failed to parse credential data from Redis", "error", err)
		return nil, fmt.Errorf("invalid credential data: %w", err)
	}

	return &cred, nil
}

// SaveCredential stores the credential, replacing any previous value.
func (r *RedisCredentialRepository) SaveCredential(ctx context.Context, cred *models.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return ErrInvalidCredential
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	// No TTL: expiry is tracked inside the credential itself so a stale
	// token can still be refreshed after the access token lapses.
	if err := r.client.Set(ctx, r.credentialKey(), data, 0).Err(); err != nil {
		r.logger.Error("Failed to store credential in Redis", "error", err)
		return fmt.Errorf("failed to store credential: %w", err)
	}

	r.logger.Debug("Credential saved to Redis",
		"key", r.credentialKey(),
		"expires_at", cred.ExpiresAt)
	return nil
}

// UpdateCredential replaces the stored credential.
func (r *RedisCredentialRepository) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	return r.SaveCredential(ctx, cred)
}

// DeleteCredential removes the stored credential.
func (r *RedisCredentialRepository) DeleteCredential(ctx context.Context) error {
	if err := r.client.Del(ctx, r.credentialKey()).Err(); err != nil {
		r.logger.Error("Failed to delete credential from Redis", "error", err)
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// SaveReturnPath stores the post-login return path.
func (r *RedisCredentialRepository) SaveReturnPath(ctx context.Context, path string) error {
	if err := r.client.Set(ctx, r.returnPathKey(), path, 0).Err(); err != nil {
		return fmt.Errorf("failed to store return path: %w", err)
	}
	return nil
}

// GetReturnPath retrieves the stored return path, empty when none is set.
func (r *RedisCredentialRepository) GetReturnPath(ctx context.Context) (string, error) {
	path, err := r.client.Get(ctx, r.returnPathKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to retrieve return path: %w", err)
	}
	return path, nil
}

// ClearReturnPath removes the stored return path.
func (r *RedisCredentialRepository) ClearReturnPath(ctx context.Context) error {
	if err := r.client.Del(ctx, r.returnPathKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear return path: %w", err)
	}
	return nil
}
