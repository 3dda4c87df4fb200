package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/notepad/internal/collection"
	"github.com/and161185/notepad/internal/config"
	"github.com/and161185/notepad/internal/credstore"
	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/limiter"
	"github.com/and161185/notepad/internal/logger"
	"github.com/and161185/notepad/internal/repository/httpapi"
	"github.com/and161185/notepad/internal/service"
	"github.com/and161185/notepad/internal/session"
)

type rootOptions struct {
	configFile string
	apiURL     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "notepad",
		Short: "Command-line client for the notes API",
		Long: `notepad keeps you logged in to a notes server and lets you
list, add, edit and remove your notes from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/notepad/config.yaml)")
	f.StringVar(&opts.apiURL, "api", "", "API base URL, overrides config")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newRmCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// app holds the wired client for the lifetime of one command.
type app struct {
	log   *zap.Logger
	store *credstore.FileStore
	sess  *session.Controller
	notes *service.NoteService
	auth  *service.AuthService

	mu    sync.Mutex
	bgErr error
}

func (o *rootOptions) newApp() (*app, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}

	log, err := logger.New(cfg.Logger.Level, o.verbose)
	if err != nil {
		return nil, err
	}

	api, err := httpapi.New(cfg.API.BaseURL,
		httpapi.WithTimeout(cfg.API.Timeout),
		httpapi.WithLimiter(limiter.New(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst)),
		httpapi.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	a := &app{log: log}
	a.store = credstore.New(cfg.Storage.TokenFile,
		credstore.WithPassphrase(cfg.Storage.Passphrase),
		credstore.WithLogger(log),
	)
	a.sess = session.New(a.store, session.WithLogger(log))
	a.notes = service.NewNoteService(api, a.sess, collection.New(),
		service.WithLogger(log),
		service.WithErrorHandler(a.setBackgroundErr),
	)
	a.auth = service.NewAuthService(api, a.sess, log)
	return a, nil
}

func (a *app) close() {
	a.notes.Close()
	_ = a.log.Sync()
}

func (a *app) setBackgroundErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bgErr = err
}

func (a *app) backgroundErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bgErr
}

// restore resumes the stored session and waits for the initial fetch.
// A token the server rejected during that fetch is reported as an error.
func (a *app) restore() error {
	if err := a.sess.Restore(); err != nil {
		return err
	}
	a.notes.Wait()
	if err := a.backgroundErr(); errors.Is(err, errs.ErrUnauthorized) {
		return err
	}
	return nil
}

// run wires the client, hands it to fn and tears it down afterwards.
func (o *rootOptions) run(fn func(a *app) error) error {
	a, err := o.newApp()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
