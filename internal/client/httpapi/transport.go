package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/teachbridge/authkit/internal/common"
	"github.com/teachbridge/authkit/internal/logging"
	"golang.org/x/sync/singleflight"
)

// TokenSourceFunc supplies the current access token for outbound requests.
// An empty token means "send the request unauthenticated".
type TokenSourceFunc func(ctx context.Context) (string, error)

// RefreshFunc performs one token refresh and returns the new access token.
type RefreshFunc func(ctx context.Context) (string, error)

// AuthTransport decorates every request with the current access token and,
// on a 401 response, performs exactly one refresh followed by exactly one
// retry of the original request with the new token. A second 401, or a
// refresh failure, surfaces the response to the caller as final.
//
// Concurrent 401 handlers share a single in-flight refresh via singleflight,
// so overlapping failures trigger at most one network refresh call.
type AuthTransport struct {
	base    http.RoundTripper
	tokens  TokenSourceFunc
	refresh RefreshFunc
	group   singleflight.Group
	log     logging.Logger
}

func NewAuthTransport(base http.RoundTripper, tokens TokenSourceFunc, refresh RefreshFunc, log logging.Logger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{base: base, tokens: tokens, refresh: refresh, log: log}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.tokens(ctx)
	if err != nil {
		// A broken token store must not block the request; send it bare.
		t.log.Warn(ctx, "access token lookup failed", "error", err)
		token = ""
	}

	// The attempt counter is the retry policy: attempt 0 is the original
	// request, attempt 1 the single post-refresh retry.
	for attempt := 0; ; attempt++ {
		out, err := cloneRequest(req, token, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(out)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized || attempt >= 1 {
			return resp, nil
		}

		refreshed, err := t.refreshShared(ctx)
		if err != nil {
			// Refresh failed; the original 401 is the final answer.
			t.log.Warn(ctx, "token refresh after 401 failed", "error", err)
			return resp, nil
		}

		// Drop the 401 response before retrying with the new token.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		token = refreshed
	}
}

// refreshShared coalesces concurrent refresh attempts into one call.
func (t *AuthTransport) refreshShared(ctx context.Context) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		return t.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	token, ok := v.(string)
	if !ok || token == "" {
		return "", common.ErrInvalidToken
	}
	return token, nil
}

// cloneRequest copies req, sets the bearer token, and on a retry rebuilds
// the body from GetBody. The original request is never mutated.
func cloneRequest(req *http.Request, token string, attempt int) (*http.Request, error) {
	out := req.Clone(req.Context())

	if attempt > 0 && req.Body != nil {
		if req.GetBody == nil {
			return nil, errors.New("request body cannot be replayed")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}

	if token != "" {
		out.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}
	return out, nil
}
