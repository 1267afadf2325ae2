// Package cli implements the reference command-line client for the
// TeachBridge auth core. It wires the session manager and the performance
// harness over the local vault and drives them from a small REPL.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/teachbridge/authkit/internal/client/biometric"
	"github.com/teachbridge/authkit/internal/client/config"
	"github.com/teachbridge/authkit/internal/client/oauth"
	"github.com/teachbridge/authkit/internal/client/perf"
	"github.com/teachbridge/authkit/internal/client/services"
	"github.com/teachbridge/authkit/internal/client/vault"
	"github.com/teachbridge/authkit/internal/logging"
)

type App struct {
	config   *config.Config
	session  *services.Manager
	perfRepo perf.Repository
	analyzer *perf.Analyzer
	reader   *bufio.Reader
	log      logging.Logger
}

// NewApp builds the composition root: vault, session manager, and perf
// harness. The CLI runs on desktops, so the biometric platform is the
// unsupported one (fail-closed) and Google sign-in uses the system browser.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(logging.New(c.LogLevel))

	db, err := vault.Open(ctx, c.VaultPath)
	if err != nil {
		logger.Error(ctx, "vault initialization failed", "error", err)
		return nil, err
	}

	session := services.New(c, db, biometric.UnsupportedPlatform{}, oauth.SystemBrowser{}, logger)
	perfRepo := perf.NewSQLiteRepository(db)

	return &App{
		config:   c,
		session:  session,
		perfRepo: perfRepo,
		analyzer: perf.NewAnalyzer(perfRepo, 0),
		reader:   bufio.NewReader(os.Stdin),
		log:      logger,
	}, nil
}

// Run restores the session best-effort and enters the REPL.
func (a *App) Run(ctx context.Context) {
	rep := a.session.Initialize(ctx)
	for _, w := range rep.Warnings {
		printlnFn("warning:", w)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session.GetCurrentUser(context.Background()) != nil
}

func (a *App) status() string {
	if u := a.session.GetCurrentUser(context.Background()); u != nil {
		return u.Email
	}
	return "signed out"
}
