// ABOUTME: Request pipeline orchestrating authenticated backend calls
// ABOUTME: Bounded recovery loop: refresh and CSRF reissue each at most once per request

package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/driver"
	"github.com/MODSetter/SurfSense-sub002/repository"
	"github.com/MODSetter/SurfSense-sub002/security"
	"github.com/MODSetter/SurfSense-sub002/utils"
)

// APIDriver dispatches exactly one backend request per call.
type APIDriver interface {
	Do(ctx context.Context, req *driver.APIRequest) (*driver.APIResponse, error)
	BaseURL() string
}

// CSRFReissuer obtains a fresh CSRF cookie from the backend.
type CSRFReissuer interface {
	IssueCSRFToken(ctx context.Context) error
}

// SessionExpiryNotifier is invoked when authentication recovery is exhausted.
// The path is where the request was headed, recorded for post-login return.
type SessionExpiryNotifier interface {
	HandleSessionExpiry(ctx context.Context, currentPath string) error
}

// maxDispatchAttempts bounds the recovery loop: the original dispatch plus at
// most one retry after a refresh and one after a CSRF reissue.
const maxDispatchAttempts = 3

// Pipeline drives every authenticated request against the backend. Each call
// performs one dispatch, classifies the outcome into the typed error set, and
// recovers from exactly two conditions: an expired credential (single-flight
// refresh) and a stale CSRF token (one reissue). Both recoveries retry the
// original request once; everything else surfaces as a typed error.
type Pipeline struct {
	api            APIDriver
	tokens         *TokenService
	guard          *security.CSRFGuard
	reissuer       CSRFReissuer
	expiryNotifier SessionExpiryNotifier
	limiter        *security.ClientRateLimiter
	schema         *security.SchemaValidator
	monitor        *utils.Monitor
	logger         *slog.Logger
}

// NewPipeline wires the pipeline. reissuer, expiryNotifier, and limiter may
// be nil: recovery paths that depend on them degrade to their terminal error.
func NewPipeline(
	api APIDriver,
	tokens *TokenService,
	guard *security.CSRFGuard,
	reissuer CSRFReissuer,
	expiryNotifier SessionExpiryNotifier,
	limiter *security.ClientRateLimiter,
	monitor *utils.Monitor,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if monitor == nil {
		monitor = utils.NewMonitor(logger, false)
	}

	return &Pipeline{
		api:            api,
		tokens:         tokens,
		guard:          guard,
		reissuer:       reissuer,
		expiryNotifier: expiryNotifier,
		limiter:        limiter,
		schema:         security.NewSchemaValidator(logger),
		monitor:        monitor,
		logger:         logger,
	}
}

// Do dispatches req and decodes a 2xx body into out (out may be nil). req is
// never mutated; every attempt rebuilds its headers so a retry carries the
// refreshed credential and the current CSRF cookie.
func (p *Pipeline) Do(ctx context.Context, req *driver.APIRequest, out interface{}) error {
	accessToken := p.currentAccessToken(ctx)

	refreshed := false
	reissued := false

	for attempt := 0; attempt < maxDispatchAttempts; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return domain.NewGenericError("Request was cancelled.", err)
		}

		resp, err := p.dispatch(ctx, req, accessToken)
		if err != nil {
			return p.transportError(err)
		}

		// Cancellation short-circuits before classification: a cancelled
		// request never refreshes, reissues, or retries.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.NewGenericError("Request was cancelled.", ctxErr)
		}

		if resp.IsSuccess() {
			return p.decodeSuccess(resp, out, req.Path)
		}

		// A response whose error body is not JSON is never interpreted or
		// retried, whatever its status code.
		if !json.Valid(resp.Body) {
			return domain.NewGenericError("", nil).WithStatus(resp.StatusCode, resp.StatusText())
		}

		detail := driver.DetailMessage(resp.Body)

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			if refreshed {
				return p.terminalAuthError(ctx, req.Path, detail, resp)
			}
			refreshed = true

			cred, refreshErr := p.tokens.Refresh(ctx, accessToken)
			if refreshErr != nil {
				p.logger.Warn("Credential refresh failed, session expired",
					"endpoint", req.Path, "error", refreshErr)
				return p.terminalAuthError(ctx, req.Path, detail, resp)
			}

			accessToken = cred.AccessToken
			p.monitor.LogRetry(ctx, "token_refresh", req.Path)

		case security.IsCSRFFailure(resp.StatusCode, detail):
			if reissued || p.reissuer == nil {
				return p.authorizationError(detail, domain.MessageCSRFFailed, resp)
			}
			reissued = true

			if reissueErr := p.reissuer.IssueCSRFToken(ctx); reissueErr != nil {
				p.logger.Warn("CSRF token reissue failed",
					"endpoint", req.Path, "error", reissueErr)
				return p.authorizationError(detail, domain.MessageCSRFFailed, resp)
			}
			p.monitor.LogRetry(ctx, "csrf_reissue", req.Path)

		case resp.StatusCode == http.StatusForbidden:
			return p.authorizationError(detail, domain.MessageNoPermission, resp)

		case resp.StatusCode == http.StatusNotFound:
			err := domain.NewNotFoundError(detail)
			return err.WithStatus(resp.StatusCode, resp.StatusText())

		default:
			err := domain.NewGenericError(detail, nil)
			return err.WithStatus(resp.StatusCode, resp.StatusText())
		}
	}

	// Unreachable: both recovery kinds spent means every branch above returns.
	return domain.NewGenericError("", nil)
}

// Get issues a GET request.
func (p *Pipeline) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return p.Do(ctx, &driver.APIRequest{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST request with a JSON body.
func (p *Pipeline) Post(ctx context.Context, path string, body, out interface{}) error {
	return p.Do(ctx, &driver.APIRequest{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT request with a JSON body.
func (p *Pipeline) Put(ctx context.Context, path string, body, out interface{}) error {
	return p.Do(ctx, &driver.APIRequest{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch issues a PATCH request with a JSON body.
func (p *Pipeline) Patch(ctx context.Context, path string, body, out interface{}) error {
	return p.Do(ctx, &driver.APIRequest{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE request.
func (p *Pipeline) Delete(ctx context.Context, path string, out interface{}) error {
	return p.Do(ctx, &driver.APIRequest{Method: http.MethodDelete, Path: path}, out)
}

// currentAccessToken loads the stored access token, empty when logged out.
func (p *Pipeline) currentAccessToken(ctx context.Context) string {
	cred, err := p.tokens.CurrentCredential(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			p.logger.Warn("Credential lookup failed, dispatching unauthenticated", "error", err)
		}
		return ""
	}
	return cred.AccessToken
}

// dispatch performs one attempt with freshly built headers.
func (p *Pipeline) dispatch(ctx context.Context, req *driver.APIRequest, accessToken string) (*driver.APIResponse, error) {
	headers := req.Headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	if accessToken != "" && headers.Get("Authorization") == "" {
		headers.Set("Authorization", "Bearer "+accessToken)
	}
	if headers.Get("X-Request-ID") == "" {
		headers.Set("X-Request-ID", uuid.NewString())
	}
	p.decorateCSRF(req.Method, req.Path, headers)

	attempt := &driver.APIRequest{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Headers: headers,
		Body:    req.Body,
		RawBody: req.RawBody,
	}

	start := time.Now()
	resp, err := p.api.Do(ctx, attempt)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	p.monitor.LogAPIRequest(ctx, req.Method, req.Path, statusCode, time.Since(start), err)

	return resp, err
}

// decorateCSRF attaches the CSRF header for mutating methods when the cookie
// exists. Resolution failures are left for the dispatch to report.
func (p *Pipeline) decorateCSRF(method, path string, headers http.Header) {
	if p.guard == nil {
		return
	}
	target, err := utils.ResolveAgainstBase(p.api.BaseURL(), path)
	if err != nil {
		return
	}
	u, err := url.Parse(target)
	if err != nil {
		return
	}
	p.guard.Decorate(method, u, headers)
}

// decodeSuccess parses a 2xx body into out. Shape deviations are logged and
// never fail the request; the caller receives the decoded body regardless.
func (p *Pipeline) decodeSuccess(resp *driver.APIResponse, out interface{}, endpoint string) error {
	if out == nil || len(resp.Body) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		apiErr := domain.NewGenericError("Failed to parse the server response.", err)
		return apiErr.WithStatus(resp.StatusCode, resp.StatusText())
	}

	p.schema.Check(resp.Body, out, endpoint)
	return nil
}

// terminalAuthError notifies the expiry collaborator and returns the
// authentication error for a 401 that recovery could not resolve.
func (p *Pipeline) terminalAuthError(ctx context.Context, path, detail string, resp *driver.APIResponse) error {
	if p.expiryNotifier != nil {
		if err := p.expiryNotifier.HandleSessionExpiry(ctx, path); err != nil {
			p.logger.Error("Session expiry handling failed", "error", err)
		}
	}

	err := domain.NewAuthenticationError(detail)
	return err.WithStatus(resp.StatusCode, resp.StatusText())
}

func (p *Pipeline) authorizationError(detail, fallback string, resp *driver.APIResponse) error {
	message := detail
	if message == "" {
		message = fallback
	}
	err := domain.NewAuthorizationError(message)
	return err.WithStatus(resp.StatusCode, resp.StatusText())
}

// transportError maps dispatch failures into the typed set. Raw transport
// errors never reach callers.
func (p *Pipeline) transportError(err error) error {
	if errors.Is(err, driver.ErrBaseURLNotConfigured) {
		return domain.NewGenericError("Backend URL is not configured. Set SURFSENSE_BACKEND_URL.", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewGenericError("Request was cancelled.", err)
	}
	return domain.NewGenericError("", err)
}
