// ABOUTME: Root command and shared wiring for the surfsensectl CLI
// ABOUTME: Builds the client stack from environment configuration per invocation

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MODSetter/SurfSense-sub002/config"
	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/driver"
	"github.com/MODSetter/SurfSense-sub002/handler"
	"github.com/MODSetter/SurfSense-sub002/repository"
	"github.com/MODSetter/SurfSense-sub002/security"
	"github.com/MODSetter/SurfSense-sub002/service"
	"github.com/MODSetter/SurfSense-sub002/utils"
	"github.com/MODSetter/SurfSense-sub002/utils/output"
)

var (
	verbose   bool
	colorMode string

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "surfsensectl",
	Short: "SurfSense backend client CLI",
	Long: `surfsensectl drives a SurfSense backend from the command line.

It keeps a session credential in the configured token store, attaches it
to every request, and recovers transparently from expired access tokens
and rotated CSRF cookies.

Configuration comes from the environment (a .env file next to the
invocation is honored):
  SURFSENSE_BACKEND_URL    backend origin, e.g. https://surfsense.example.com
  SURFSENSE_TOKEN_STORE    memory | file | kubernetes | redis (default: memory)

Example usage:
  surfsensectl login -u dev@example.com      # Start a session
  surfsensectl status                        # Inspect the stored credential
  surfsensectl documents list                # List documents
  surfsensectl chats list --search-space 3   # List chats in one space`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initCLI()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output (auto|always|never)")
}

// initCLI loads configuration and prepares the logger and printer. The
// service stack itself is built per command via newApp, so commands that
// never touch the backend stay cheap.
func initCLI() error {
	// A .env next to the invocation is optional.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		return err
	}
	printer = output.NewPrinter(output.ResolveColors(mode))

	logger.Debug("configuration loaded",
		"backend_url", cfg.Backend.BaseURL,
		"token_store", cfg.Storage.Backend,
	)

	return nil
}

// credentialStore is the combined persistence surface the CLI wires in:
// every concrete repository backs both the credential and the return path.
type credentialStore interface {
	repository.CredentialRepository
	repository.SessionStateRepository
}

// app bundles the wired service stack for one CLI invocation.
type app struct {
	cfg     *config.Config
	printer *output.Printer
	store   credentialStore
	monitor *utils.Monitor

	tokens     *service.TokenService
	sessions   *service.SessionService
	documents  *service.DocumentService
	connectors *service.ConnectorService
	chats      *service.ChatService
	podcasts   *service.PodcastService
}

// newApp wires the full client stack from the loaded configuration.
func newApp() (*app, error) {
	store, err := openCredentialStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	api := driver.NewAPIClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, logger)
	guard := security.NewCSRFGuard(cfg.CSRF.CookieName, cfg.CSRF.HeaderName, api.Jar(), logger)
	auth := driver.NewAuthClient(api, driver.AuthEndpoints{
		LoginPath:   cfg.Auth.LoginPath,
		RefreshPath: cfg.Auth.RefreshPath,
		LogoutPath:  cfg.Auth.LogoutPath,
		CSRFPath:    cfg.CSRF.ReissuePath,
	}, guard, logger)

	monitor := utils.NewMonitor(logger, verbose)
	tokens := service.NewTokenService(store, auth, monitor, logger)
	expiry := handler.NewSessionExpiryHandler(store, store, func(_ string) {
		printer.Warning("Session expired. Run 'surfsensectl login' to start a new session.")
	}, logger)
	limiter := security.NewClientRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		cfg.RateLimit.Enabled,
		logger,
	)
	pipeline := service.NewPipeline(api, tokens, guard, auth, expiry, limiter, monitor, logger)
	validator := security.NewRequestValidator()

	return &app{
		cfg:        cfg,
		printer:    printer,
		store:      store,
		monitor:    monitor,
		tokens:     tokens,
		sessions:   service.NewSessionService(auth, store, store, pipeline, validator, logger),
		documents:  service.NewDocumentService(pipeline, validator, logger),
		connectors: service.NewConnectorService(pipeline, validator, logger),
		chats:      service.NewChatService(pipeline, validator, logger),
		podcasts:   service.NewPodcastService(pipeline, validator, logger),
	}, nil
}

func openCredentialStore(cfg *config.Config, logger *slog.Logger) (credentialStore, error) {
	switch cfg.Storage.Backend {
	case config.StoreMemory:
		// Lives only for this invocation; useful against a local backend.
		return repository.NewMemoryCredentialRepository(logger), nil
	case config.StoreFile:
		return repository.NewEnvFileCredentialRepository(cfg.Storage.EnvFilePath, logger), nil
	case config.StoreRedis:
		return repository.NewRedisCredentialRepository(
			cfg.Storage.RedisAddr,
			cfg.Storage.RedisPassword,
			cfg.Storage.RedisDB,
			cfg.Storage.KeyPrefix,
			logger,
		), nil
	case config.StoreKubernetes:
		clientset, err := cfg.Kubernetes.CreateKubernetesClient()
		if err != nil {
			return nil, fmt.Errorf("kubernetes token store unavailable: %w", err)
		}
		return repository.NewKubernetesSecretRepositoryWithClientset(
			clientset,
			cfg.Kubernetes.Namespace,
			cfg.Kubernetes.TokenSecretName,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported token store %q", cfg.Storage.Backend)
	}
}

// requestContext budgets one CLI invocation: the original request plus the
// recovery retries the pipeline may spend on it.
func (a *app) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*a.cfg.Backend.RequestTimeout)
}

func parseID(arg, resource string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", resource, arg)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderError formats an error for stderr. API errors carry a user-facing
// message plus optional field issues; anything else prints verbatim.
func renderError(err error) string {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return "Error: " + err.Error() + "\n"
	}

	var b strings.Builder
	b.WriteString("Error: " + apiErr.Message + "\n")
	for _, issue := range apiErr.FieldIssues {
		b.WriteString("  - " + issue + "\n")
	}
	if apiErr.Kind == domain.ErrorKindAuthentication {
		b.WriteString("  Suggestion: Run 'surfsensectl login' to start a new session.\n")
	}
	return b.String()
}
