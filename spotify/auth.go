package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/garry/playlistcheck/config"
)

// authenticate returns an HTTP client carrying a Spotify access token.
//
// Client-credentials mode suits public playlists and unattended runs. User mode
// runs the authorization code flow through a local callback server on the
// redirect URI, which private playlists require.
func authenticate(ctx context.Context, cfg config.SpotifyConfig) (*http.Client, error) {
	switch cfg.AuthMode {
	case config.AuthModeUser:
		return authenticateUser(ctx, cfg, openPrompt)
	case config.AuthModeClient, "":
		return authenticateClient(ctx, cfg, spotifyauth.TokenURL)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
}

// authenticateClient exchanges the client credentials for an app token
func authenticateClient(ctx context.Context, cfg config.SpotifyConfig, tokenURL string) (*http.Client, error) {
	ccConfig := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	// Fetch once up front so bad credentials fail here rather than on the first API call
	token, err := ccConfig.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, ccConfig.TokenSource(ctx))), nil
}

// authenticateUser runs the authorization code flow. prompt is handed the URL
// the user must visit.
func authenticateUser(ctx context.Context, cfg config.SpotifyConfig, prompt func(authURL string)) (*http.Client, error) {
	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", cfg.RedirectURI, err)
	}

	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(cfg.Scopes...),
	)

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	tokens := make(chan *oauth2.Token, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath(redirect), func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "Couldn't get token", http.StatusForbidden)
			select {
			case failures <- fmt.Errorf("failed to get token: %w", err):
			default:
			}
			return
		}
		fmt.Fprintln(w, "Login completed, you can close this window.")
		select {
		case tokens <- token:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️  Callback server stopped: %v", err)
		}
	}()
	defer server.Close()

	prompt(auth.AuthURL(state))

	select {
	case token := <-tokens:
		return auth.Client(ctx, token), nil
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization aborted: %w", ctx.Err())
	}
}

// callbackPath returns the path the callback handler listens on
func callbackPath(redirect *url.URL) string {
	if redirect.Path == "" {
		return "/"
	}
	return redirect.Path
}

// randomState returns an unguessable OAuth state value
func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// openPrompt asks the user to visit the authorization URL
func openPrompt(authURL string) {
	fmt.Println("🔐 Please log in to Spotify by visiting the following page in your browser:")
	fmt.Println("   " + authURL)
}
