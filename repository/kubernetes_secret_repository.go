// ABOUTME: Kubernetes Secret-based CredentialRepository implementation
// ABOUTME: Persists the session credential in a namespaced Secret for in-cluster clients

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MODSetter/SurfSense-sub002/models"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const (
	secretKeyCredential = "credential_data"
	secretKeyAccess     = "access_token"
	secretKeyRefresh    = "refresh_token"
	secretKeyExpiresAt  = "expires_at"
	secretKeyReturnPath = "return_path"
)

// KubernetesSecretRepository implements CredentialRepository using Kubernetes Secrets
type KubernetesSecretRepository struct {
	clientset  kubernetes.Interface
	namespace  string
	secretName string
	logger     *slog.Logger
}

// NewKubernetesSecretRepository creates a new Kubernetes Secret-based repository
func NewKubernetesSecretRepository(
	namespace, secretName string,
	logger *slog.Logger,
) (*KubernetesSecretRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Create in-cluster config (for Pod environment)
	config, err := rest.InClusterConfig()
	if err != nil {
		logger.Error("Failed to create in-cluster config", "error", err)
		return nil, fmt.Errorf("failed to create Kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		logger.Error("Failed to create Kubernetes clientset", "error", err)
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}

	return &KubernetesSecretRepository{
		clientset:  clientset,
		namespace:  namespace,
		secretName: secretName,
		logger:     logger,
	}, nil
}

// NewKubernetesSecretRepositoryWithClientset creates a repository with custom clientset (for testing)
func NewKubernetesSecretRepositoryWithClientset(
	clientset kubernetes.Interface,
	namespace, secretName string,
	logger *slog.Logger,
) *KubernetesSecretRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &KubernetesSecretRepository{
		clientset:  clientset,
		namespace:  namespace,
		secretName: secretName,
		logger:     logger,
	}
}

// GetCredential retrieves the current credential from the Secret
func (r *KubernetesSecretRepository) GetCredential(ctx context.Context) (*models.Credential, error) {
	r.logger.Debug("Retrieving credential from Kubernetes Secret",
		"namespace", r.namespace,
		"secret_name", r.secretName)

	secret, err := r.clientset.CoreV1().Secrets(r.namespace).Get(
		ctx, r.secretName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, ErrCredentialNotFound
		}
		r.logger.Error("Failed to retrieve secret from Kubernetes",
			"error", err,
			"namespace", r.namespace,
			"secret_name", r.secretName)
		return nil, fmt.Errorf("failed to retrieve credential secret: %w", err)
	}

	credBytes, exists := secret.Data[secretKeyCredential]
	if !exists {
		return nil, ErrCredentialNotFound
	}

	var cred models.Credential
	if err := json.Unmarshal(credBytes, &cred); err != nil {
		r.logger.Error("Failed to parse credential data from secret", "error", err)
		return nil, fmt.Errorf("invalid credential data in secret: %w", err)
	}

	return &cred, nil
}

// SaveCredential stores the credential in the Secret, creating it on first use
func (r *KubernetesSecretRepository) SaveCredential(ctx context.Context, cred *models.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return ErrInvalidCredential
	}

	r.logger.Debug("Saving credential to Kubernetes Secret",
		"secret_name", r.secretName,
		"expires_at", cred.ExpiresAt)

	credBytes, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	data := map[string][]byte{
		secretKeyCredential: credBytes,
		secretKeyAccess:     []byte(cred.AccessToken),
		secretKeyRefresh:    []byte(cred.RefreshToken),
	}
	if !cred.ExpiresAt.IsZero() {
		data[secretKeyExpiresAt] = []byte(cred.ExpiresAt.Format(time.RFC3339))
	}

	return r.mergeSecretData(ctx, data, nil)
}

// UpdateCredential updates the credential in the Secret
func (r *KubernetesSecretRepository) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	return r.SaveCredential(ctx, cred)
}

// DeleteCredential removes credential keys from the Secret, keeping the
// Secret itself (and any recorded return path) in place
func (r *KubernetesSecretRepository) DeleteCredential(ctx context.Context) error {
	r.logger.Debug("Deleting credential from Kubernetes Secret", "secret_name", r.secretName)

	err := r.mergeSecretData(ctx, nil, []string{
		secretKeyCredential,
		secretKeyAccess,
		secretKeyRefresh,
		secretKeyExpiresAt,
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return err
	}
	return nil
}

// SaveReturnPath stores the post-login return path in the Secret
func (r *KubernetesSecretRepository) SaveReturnPath(ctx context.Context, path string) error {
	return r.mergeSecretData(ctx, map[string][]byte{secretKeyReturnPath: []byte(path)}, nil)
}

// GetReturnPath retrieves the stored return path, empty when none is set
func (r *KubernetesSecretRepository) GetReturnPath(ctx context.Context) (string, error) {
	secret, err := r.clientset.CoreV1().Secrets(r.namespace).Get(
		ctx, r.secretName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to retrieve credential secret: %w", err)
	}
	return string(secret.Data[secretKeyReturnPath]), nil
}

// ClearReturnPath removes the stored return path
func (r *KubernetesSecretRepository) ClearReturnPath(ctx context.Context) error {
	err := r.mergeSecretData(ctx, nil, []string{secretKeyReturnPath})
	if err != nil && !apierrors.IsNotFound(err) {
		return err
	}
	return nil
}

// IsHealthy checks if the repository can access the Kubernetes API
func (r *KubernetesSecretRepository) IsHealthy(ctx context.Context) error {
	_, err := r.clientset.CoreV1().Secrets(r.namespace).Get(
		ctx, r.secretName, metav1.GetOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("Kubernetes API connectivity check failed: %w", err)
	}
	return nil
}

// GetStoragePath returns a description of the storage location
func (r *KubernetesSecretRepository) GetStoragePath() string {
	return fmt.Sprintf("Kubernetes Secret %s/%s", r.namespace, r.secretName)
}

// mergeSecretData applies set/unset operations to the Secret, creating it
// when it does not exist yet
func (r *KubernetesSecretRepository) mergeSecretData(ctx context.Context, set map[string][]byte, unset []string) error {
	currentSecret, err := r.clientset.CoreV1().Secrets(r.namespace).Get(
		ctx, r.secretName, metav1.GetOptions{})
	if err != nil {
		if !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to get current secret for update: %w", err)
		}
		if len(set) == 0 {
			return err
		}
		return r.createSecret(ctx, set)
	}

	if currentSecret.Data == nil {
		currentSecret.Data = make(map[string][]byte)
	}
	for key, value := range set {
		currentSecret.Data[key] = value
	}
	for _, key := range unset {
		delete(currentSecret.Data, key)
	}
	if currentSecret.Annotations == nil {
		currentSecret.Annotations = make(map[string]string)
	}
	currentSecret.Annotations["surfsense-client/last-updated"] = time.Now().Format(time.RFC3339)

	if _, err := r.clientset.CoreV1().Secrets(r.namespace).Update(ctx, currentSecret, metav1.UpdateOptions{}); err != nil {
		r.logger.Error("Failed to update secret", "error", err)
		return fmt.Errorf("failed to update credential secret: %w", err)
	}
	return nil
}

// createSecret creates a new secret with the given data
func (r *KubernetesSecretRepository) createSecret(ctx context.Context, data map[string][]byte) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      r.secretName,
			Namespace: r.namespace,
			Labels: map[string]string{
				"app.kubernetes.io/name":       "surfsense-client",
				"app.kubernetes.io/component":  "session-credential",
				"app.kubernetes.io/managed-by": "surfsense-client",
			},
			Annotations: map[string]string{
				"surfsense-client/last-updated": time.Now().Format(time.RFC3339),
			},
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}

	if _, err := r.clientset.CoreV1().Secrets(r.namespace).Create(ctx, secret, metav1.CreateOptions{}); err != nil {
		r.logger.Error("Failed to create secret", "error", err)
		return fmt.Errorf("failed to create credential secret: %w", err)
	}

	return nil
}
