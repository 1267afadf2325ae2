// Package oauth implements the Google sign-in adapter: an
// authorization-code + PKCE flow through an injected browser, and decoding
// of the returned ID token into a normalized user shape.
package oauth

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
)

// Browser opens the system browser for the OAuth redirect. Warm and Close
// mirror the warm-up/cool-down hooks of mobile custom-tab components; both
// are best-effort.
type Browser interface {
	Warm(ctx context.Context) error
	Open(ctx context.Context, url string) error
	Close(ctx context.Context) error
}

// SystemBrowser launches the OS default browser.
type SystemBrowser struct{}

func (SystemBrowser) Warm(ctx context.Context) error { return nil }

func (SystemBrowser) Open(ctx context.Context, url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", url).Start()
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux":
		return exec.CommandContext(ctx, "xdg-open", url).Start()
	default:
		return errors.New("no browser launcher for this platform")
	}
}

func (SystemBrowser) Close(ctx context.Context) error { return nil }
