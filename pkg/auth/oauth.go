package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// ClientSecretsFile is the downloaded Google "Desktop app" OAuth client,
	// stored in the dayplan config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile holds the access and refresh token obtained by Authorize.
	TokenFile = "token.json"

	// LocalhostAuthPort receives the OAuth redirect.
	LocalhostAuthPort = "6789"
)

// ErrNoToken means `dayplan auth` has not been run yet.
var ErrNoToken = errors.New("no saved Google token")

// TokenPath is where the installed-app token lives.
func TokenPath() string {
	return filepath.Join(config.Home(), TokenFile)
}

// GetConfig creates an oauth2.Config from the client secrets file.
func GetConfig(scopes []string) (*oauth2.Config, error) {
	clientSecretsFile := filepath.Join(config.Home(), ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	cfg.RedirectURL = normalizeRedirect(cfg.RedirectURL)
	return cfg, nil
}

// normalizeRedirect forces localhost and out-of-band redirects onto the
// port the callback listener binds.
func normalizeRedirect(redirect string) string {
	if redirect == "urn:ietf:wg:oauth:2.0:oob" || redirect == "" {
		return fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	}
	parsed, err := url.Parse(redirect)
	if err != nil {
		log.Printf("Warning: could not parse RedirectURL '%s': %v. Using it as is.", redirect, err)
		return redirect
	}
	if parsed.Hostname() == "localhost" || parsed.Hostname() == "127.0.0.1" {
		if parsed.Port() != LocalhostAuthPort {
			parsed.Host = net.JoinHostPort(parsed.Hostname(), LocalhostAuthPort)
		}
		return parsed.String()
	}
	log.Printf("Warning: RedirectURL in credentials.json is not a localhost callback: %s", redirect)
	return redirect
}

// TokenClient returns an HTTP client using the saved token. It never starts
// the browser flow; without a token it returns ErrNoToken.
func TokenClient(ctx context.Context, scopes []string) (*http.Client, error) {
	path := TokenPath()
	tok, err := tokenFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, err
	}
	cfg, err := GetConfig(scopes)
	if err != nil {
		return nil, err
	}
	src := &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: path,
		last: tok,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// savingTokenSource writes refreshed tokens back to disk.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		if err := saveToken(s.path, tok); err != nil {
			log.Printf("Warning: could not persist refreshed token: %v", err)
		}
		s.last = tok
	}
	return tok, nil
}

// Authorize runs the installed-app flow through a local callback server and
// saves the resulting token, replacing any previous one.
func Authorize(ctx context.Context, scopes []string, out io.Writer) error {
	cfg, err := GetConfig(scopes)
	if err != nil {
		return err
	}
	tok, err := getTokenFromWeb(ctx, cfg, out)
	if err != nil {
		return fmt.Errorf("failed to get token from web: %w", err)
	}
	return saveToken(TokenPath(), tok)
}

func getTokenFromWeb(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	state := fmt.Sprintf("dayplan-%d", time.Now().UnixNano())

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("state") != state {
				http.Error(w, "State mismatch", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Shutdown(context.Background())

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// AccessTypeOffline is what makes Google return a refresh token.
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(out, "Open the following URL in your browser to authorize dayplan:\n%s\n", authURL)

	select {
	case code := <-codeCh:
		exCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// RemoveToken deletes the saved token, if any.
func RemoveToken() error {
	err := os.Remove(TokenPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ServiceAccountClient builds a client from a service account key file.
func ServiceAccountClient(ctx context.Context, keyFile string, scopes []string) (*http.Client, error) {
	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key %s: %w", keyFile, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}
