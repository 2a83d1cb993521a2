package repository

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MODSetter/SurfSense-sub002/models"
)

// Fixed storage keys inside the credential file.
const (
	envKeyAccessToken  = "SURFSENSE_ACCESS_TOKEN"
	envKeyRefreshToken = "SURFSENSE_REFRESH_TOKEN"
	envKeyTokenType    = "SURFSENSE_TOKEN_TYPE"
	envKeyExpiresAt    = "SURFSENSE_EXPIRES_AT"
	envKeyIssuedAt     = "SURFSENSE_ISSUED_AT"
	envKeyReturnPath   = "SURFSENSE_RETURN_PATH"
)

// EnvFileCredentialRepository implements CredentialRepository using .env file
// storage. Lines unrelated to the credential are preserved across writes.
type EnvFileCredentialRepository struct {
	filePath string
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewEnvFileCredentialRepository creates a new .env file-based repository
func NewEnvFileCredentialRepository(filePath string, logger *slog.Logger) *EnvFileCredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}

	repo := &EnvFileCredentialRepository{
		filePath: filePath,
		logger:   logger,
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warn("Failed to create directory for credential file", "error", err, "dir", dir)
		}
	}

	return repo
}

// GetCredential retrieves the current credential from the file
func (r *EnvFileCredentialRepository) GetCredential(ctx context.Context) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values, err := r.readValues()
	if err != nil {
		return nil, err
	}

	accessToken, ok := values[envKeyAccessToken]
	if !ok || accessToken == "" {
		return nil, ErrCredentialNotFound
	}

	cred := &models.Credential{
		AccessToken:  accessToken,
		RefreshToken: values[envKeyRefreshToken],
		TokenType:    values[envKeyTokenType],
	}
	if cred.TokenType == "" {
		cred.TokenType = "bearer"
	}
	if raw, ok := values[envKeyExpiresAt]; ok && raw != "" {
		if expiresAt, err := time.Parse(time.RFC3339, raw); err == nil {
			cred.ExpiresAt = expiresAt
		}
	}
	if raw, ok := values[envKeyIssuedAt]; ok && raw != "" {
		if issuedAt, err := time.Parse(time.RFC3339, raw); err == nil {
			cred.IssuedAt = issuedAt
		}
	}

	return cred, nil
}

// SaveCredential stores the credential, rewriting only its own keys
func (r *EnvFileCredentialRepository) SaveCredential(ctx context.Context, cred *models.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return ErrInvalidCredential
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("Saving credential to file", "file_path", r.filePath)

	lines := []string{
		fmt.Sprintf("%s=%s", envKeyAccessToken, cred.AccessToken),
		fmt.Sprintf("%s=%s", envKeyRefreshToken, cred.RefreshToken),
		fmt.Sprintf("%s=%s", envKeyTokenType, cred.TokenType),
	}
	if !cred.ExpiresAt.IsZero() {
		lines = append(lines, fmt.Sprintf("%s=%s", envKeyExpiresAt, cred.ExpiresAt.Format(time.RFC3339)))
	}
	if !cred.IssuedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("%s=%s", envKeyIssuedAt, cred.IssuedAt.Format(time.RFC3339)))
	}

	return r.rewrite(credentialKeys(), lines)
}

// UpdateCredential updates the credential in the file
func (r *EnvFileCredentialRepository) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	return r.SaveCredential(ctx, cred)
}

// DeleteCredential removes credential lines, preserving everything else
func (r *EnvFileCredentialRepository) DeleteCredential(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("Deleting credential from file", "file_path", r.filePath)
	return r.rewrite(credentialKeys(), nil)
}

// SaveReturnPath stores the post-login return path
func (r *EnvFileCredentialRepository) SaveReturnPath(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rewrite([]string{envKeyReturnPath}, []string{fmt.Sprintf("%s=%s", envKeyReturnPath, path)})
}

// GetReturnPath retrieves the stored return path, empty when none is set
func (r *EnvFileCredentialRepository) GetReturnPath(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values, err := r.readValues()
	if err != nil {
		return "", err
	}
	return values[envKeyReturnPath], nil
}

// ClearReturnPath removes the stored return path
func (r *EnvFileCredentialRepository) ClearReturnPath(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rewrite([]string{envKeyReturnPath}, nil)
}

func credentialKeys() []string {
	return []string{
		envKeyAccessToken,
		envKeyRefreshToken,
		envKeyTokenType,
		envKeyExpiresAt,
		envKeyIssuedAt,
	}
}

// rewrite replaces the lines owned by the given keys with newLines, keeping
// all other file content intact. The file is written with 0600 permissions.
func (r *EnvFileCredentialRepository) rewrite(ownedKeys, newLines []string) error {
	existing := r.readOtherLines(ownedKeys)

	file, err := os.OpenFile(r.filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open credential file: %w", err)
	}
	defer file.Close()

	for _, line := range existing {
		if _, err := file.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write existing content: %w", err)
		}
	}
	for _, line := range newLines {
		if _, err := file.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write credential content: %w", err)
		}
	}

	return nil
}

// readValues parses KEY=VALUE pairs from the file
func (r *EnvFileCredentialRepository) readValues() (map[string]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to open credential file: %w", err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	return values, nil
}

// readOtherLines reads all lines except those owned by the given keys
func (r *EnvFileCredentialRepository) readOtherLines(ownedKeys []string) []string {
	var lines []string

	file, err := os.Open(r.filePath)
	if err != nil {
		return lines // Return empty if file doesn't exist
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
scan:
	for scanner.Scan() {
		line := scanner.Text()
		for _, key := range ownedKeys {
			if strings.HasPrefix(line, key+"=") {
				continue scan
			}
		}
		lines = append(lines, line)
	}

	return lines
}
