package oauth

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachbridge/authkit/internal/logging"
	"golang.org/x/oauth2"
)

// fakeBrowser drives the loopback callback instead of opening a real browser.
// onOpen receives the parsed redirect URI and state from the auth URL.
type fakeBrowser struct {
	onOpen func(redirectURI, state string)
}

func (f *fakeBrowser) Warm(ctx context.Context) error { return nil }

func (f *fakeBrowser) Open(ctx context.Context, rawURL string) error {
	if f.onOpen == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	q := u.Query()
	go f.onOpen(q.Get("redirect_uri"), q.Get("state"))
	return nil
}

func (f *fakeBrowser) Close(ctx context.Context) error { return nil }

func googleIDToken(t *testing.T, sub, email, name string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         sub,
		"email":       email,
		"name":        name,
		"given_name":  "Ann",
		"family_name": "Lee",
		"picture":     "https://example.com/p.jpg",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestDecodeIDToken_MapsClaims(t *testing.T) {
	raw := googleIDToken(t, "g-123", "ann@example.com", "Ann Lee")

	u, err := DecodeIDToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "g-123", u.ID)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, "Ann Lee", u.Name)
	assert.Equal(t, "Ann", u.GivenName)
	assert.Equal(t, "Lee", u.FamilyName)
	assert.Equal(t, "https://example.com/p.jpg", u.Photo)
}

func TestDecodeIDToken_Malformed(t *testing.T) {
	_, err := DecodeIDToken("not.a.token")
	require.Error(t, err)
}

func TestAuthenticate_ContextCancelled(t *testing.T) {
	a := NewGoogleAdapter("client-id", &fakeBrowser{}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := a.Authenticate(ctx)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.False(t, res.Success)
	assert.Equal(t, "User cancelled Google sign-in", res.Error)
}

func TestAuthenticate_AccessDenied(t *testing.T) {
	browser := &fakeBrowser{onOpen: func(redirectURI, state string) {
		resp, err := http.Get(redirectURI + "?state=" + state + "&error=access_denied")
		if err == nil {
			_ = resp.Body.Close()
		}
	}}
	a := NewGoogleAdapter("client-id", browser, logging.Discard())

	res, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, "User cancelled Google sign-in", res.Error)
}

func TestAuthenticate_ProviderError(t *testing.T) {
	browser := &fakeBrowser{onOpen: func(redirectURI, state string) {
		resp, err := http.Get(redirectURI + "?state=" + state +
			"&error=server_error&error_description=" + url.QueryEscape("Something broke"))
		if err == nil {
			_ = resp.Body.Close()
		}
	}}
	a := NewGoogleAdapter("client-id", browser, logging.Discard())

	res, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.Cancelled)
	assert.Equal(t, "Something broke", res.Error)
}

func TestAuthenticate_Success(t *testing.T) {
	idToken := googleIDToken(t, "g-123", "ann@example.com", "Ann Lee")

	browser := &fakeBrowser{onOpen: func(redirectURI, state string) {
		resp, err := http.Get(redirectURI + "?state=" + state + "&code=auth-code")
		if err == nil {
			_ = resp.Body.Close()
		}
	}}
	a := NewGoogleAdapter("client-id", browser, logging.Discard())
	a.exchange = func(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
		assert.Equal(t, "auth-code", code)
		assert.NotEmpty(t, verifier)
		tok := &oauth2.Token{AccessToken: "google-at"}
		return tok.WithExtra(map[string]any{"id_token": idToken}), nil
	}

	res, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, idToken, res.IDToken)
	assert.Equal(t, "google-at", res.AccessToken)
	require.NotNil(t, res.User)
	assert.Equal(t, "ann@example.com", res.User.Email)
}

func TestAuthenticate_MissingIDTokenIsHardError(t *testing.T) {
	browser := &fakeBrowser{onOpen: func(redirectURI, state string) {
		resp, err := http.Get(redirectURI + "?state=" + state + "&code=auth-code")
		if err == nil {
			_ = resp.Body.Close()
		}
	}}
	a := NewGoogleAdapter("client-id", browser, logging.Discard())
	a.exchange = func(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "google-at"}, nil
	}

	_, err := a.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing identity token")
}

func TestAuthenticate_StateMismatchIgnored(t *testing.T) {
	browser := &fakeBrowser{onOpen: func(redirectURI, state string) {
		// a forged callback with the wrong state must not complete the flow
		resp, err := http.Get(redirectURI + "?state=forged&code=evil")
		if err == nil {
			_ = resp.Body.Close()
		}
		// the genuine callback follows
		resp, err = http.Get(redirectURI + "?state=" + state + "&error=access_denied")
		if err == nil {
			_ = resp.Body.Close()
		}
	}}
	a := NewGoogleAdapter("client-id", browser, logging.Discard())

	res, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
}
