package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"upstox-mcp/internal/api"
	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/types"
)

const (
	DefaultAuthorizeURL = "https://api.upstox.com/v2/login/authorization/dialog"
	DefaultTokenURL     = "https://api.upstox.com/v2/login/authorization/token"
)

type FlowConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// ListenAddr is where the redirect capture listener binds. Its port must
	// match RedirectURI.
	ListenAddr     string
	AuthorizeURL   string
	TokenURL       string
	CaptureTimeout time.Duration
}

// Flow drives the three-leg authorization-code grant against the Upstox
// identity provider. It is only ever invoked from the interactive
// authenticate command, never from inside a tool call.
type Flow struct {
	cfg   FlowConfig
	store interfaces.CredentialStore
	api   *api.Client
	now   func() time.Time

	mu        sync.Mutex
	state     string
	boundAddr string
}

func NewFlow(cfg FlowConfig, store interfaces.CredentialStore) *Flow {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = 5 * time.Minute
	}
	return &Flow{
		cfg:   cfg,
		store: store,
		api:   api.NewClient(api.WithTimeout(30 * time.Second)),
		now:   time.Now,
	}
}

// BuildAuthorizationURL returns the provider's authorize URL with a freshly
// generated state nonce. Calling it again invalidates the previous state;
// only the most recent in-flight flow is honored.
func (f *Flow) BuildAuthorizationURL() (string, error) {
	if f.cfg.ClientID == "" || f.cfg.RedirectURI == "" {
		return "", faults.New(faults.InvalidArgument, "client id and redirect URI are required")
	}

	u, err := url.Parse(f.cfg.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize URL: %w", err)
	}

	f.mu.Lock()
	f.state = uuid.NewString()
	state := f.state
	f.mu.Unlock()

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", f.cfg.ClientID)
	q.Set("redirect_uri", f.cfg.RedirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

type captureOutcome struct {
	code string
	err  error
}

// CaptureRedirect blocks until the provider redirects back with code and
// state, the configured timeout elapses, or ctx is cancelled. A state value
// we never generated aborts the flow without touching the token endpoint.
func (f *Flow) CaptureRedirect(ctx context.Context) (string, error) {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	if state == "" {
		return "", errors.New("no authorization in flight; build the authorization URL first")
	}

	results := make(chan captureOutcome, 1)

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		out := f.inspectRedirect(req.URL.Query())
		if out.err != nil {
			http.Error(w, "Authorization failed. Check the terminal for details.", http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, "Authorization received. You can close this window.")
		}
		select {
		case results <- out:
		default: // a result is already pending; later hits are ignored
		}
	})

	ln, err := net.Listen("tcp", f.cfg.ListenAddr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", f.cfg.ListenAddr, err)
	}
	f.mu.Lock()
	f.boundAddr = ln.Addr().String()
	f.mu.Unlock()

	srv := &http.Server{Handler: r}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case results <- captureOutcome{err: fmt.Errorf("redirect listener: %w", serveErr)}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	timer := time.NewTimer(f.cfg.CaptureTimeout)
	defer timer.Stop()

	select {
	case out := <-results:
		if out.err != nil {
			if faults.Is(out.err, faults.StateMismatch) {
				// possible forgery: discard the in-flight state entirely
				f.mu.Lock()
				f.state = ""
				f.mu.Unlock()
			}
			return "", out.err
		}
		return out.code, nil
	case <-timer.C:
		return "", faults.New(faults.AuthTimeout,
			"no redirect received within %s; the browser flow may have been abandoned", f.cfg.CaptureTimeout)
	case <-ctx.Done():
		return "", faults.Wrap(faults.AuthTimeout, ctx.Err(), "redirect capture cancelled")
	}
}

func (f *Flow) inspectRedirect(q url.Values) captureOutcome {
	f.mu.Lock()
	current := f.state
	f.mu.Unlock()

	switch {
	case q.Get("state") != current || current == "":
		return captureOutcome{err: faults.New(faults.StateMismatch,
			"redirect state %q does not match the in-flight authorization", q.Get("state"))}
	case q.Get("code") == "":
		return captureOutcome{err: faults.New(faults.AuthRejected,
			"redirect carried no authorization code (error=%q)", q.Get("error"))}
	default:
		return captureOutcome{code: q.Get("code")}
	}
}

// RedirectAddr reports the address the capture listener actually bound,
// useful when ListenAddr uses port 0.
func (f *Flow) RedirectAddr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.boundAddr
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	UserName    string `json:"user_name"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Broker      string `json:"broker"`
}

// ExchangeCode trades the one-time authorization code for an access token,
// stamps it with the fixed daily cutoff, and persists it.
func (f *Flow) ExchangeCode(ctx context.Context, code string) (types.Credential, error) {
	if strings.TrimSpace(code) == "" {
		return types.Credential{}, faults.New(faults.InvalidArgument, "authorization code cannot be empty")
	}

	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", f.cfg.ClientID)
	form.Set("client_secret", f.cfg.ClientSecret)
	form.Set("redirect_uri", f.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")

	resp, err := f.api.POSTForm(ctx, f.cfg.TokenURL, form, map[string]string{
		"Accept":      "application/json",
		"Api-Version": "2.0",
	})
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			return types.Credential{}, faults.Wrap(faults.AuthRejected, err, "token endpoint declined the exchange")
		}
		return types.Credential{}, faults.Wrap(faults.UpstreamError, err, "token endpoint unreachable")
	}

	var tr tokenResponse
	if err := resp.ParseJSON(&tr); err != nil {
		return types.Credential{}, faults.Wrap(faults.AuthRejected, err, "malformed token response")
	}
	if tr.AccessToken == "" {
		return types.Credential{}, faults.New(faults.AuthRejected, "token response carried no access token")
	}

	issued := f.now()
	cred := types.Credential{
		AccessToken: tr.AccessToken,
		IssuedAt:    issued,
		ExpiresAt:   NextDailyCutoff(issued),
		SavedAt:     issued,
	}
	if err := f.store.Save(cred); err != nil {
		return types.Credential{}, err
	}

	// The code is single-use; the in-flight state dies with it.
	f.mu.Lock()
	f.state = ""
	f.mu.Unlock()

	return cred, nil
}
