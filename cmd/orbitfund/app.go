package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orbitfund/orbitfund/internal/api"
	"github.com/orbitfund/orbitfund/internal/auth"
	"github.com/orbitfund/orbitfund/internal/config"
	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/journal"
	"github.com/orbitfund/orbitfund/internal/logger"
	"github.com/orbitfund/orbitfund/internal/nats"
	"github.com/orbitfund/orbitfund/internal/tui/wizard"
)

// app holds what every command needs: config, backend client, credentials
// and, when enabled, the journal.
type app struct {
	cfg      *config.Config
	client   *api.Client
	creds    *auth.Store
	journal  *journal.Store
	embedded *nats.Embedded
}

// openApp loads config, configures logging and connects the collaborators.
// A journal that fails to open is logged and skipped.
func openApp(ctx context.Context, withJournal bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	a := &app{
		cfg:    cfg,
		client: api.New(cfg.APIURL, api.WithTimeout(cfg.Timeout)),
		creds:  auth.NewStore(""),
	}

	if withJournal && cfg.Journal {
		e, err := nats.Open(ctx, filepath.Join(cfg.DataDir, "journal"))
		if err != nil {
			logger.Warn("Journal unavailable: %v", err)
		} else {
			a.embedded = e
			a.journal = journal.NewStore(e.JS, e.Stream)
		}
	}
	return a, nil
}

// Close stops the embedded journal server.
func (a *app) Close() {
	if a.embedded != nil {
		if err := a.embedded.Close(); err != nil {
			logger.Warn("Journal shutdown: %v", err)
		}
	}
}

// newDraft creates a manager wired to the backend, the credential store and
// the journal.
func (a *app) newDraft(mode draft.Mode, missionID, title string) (*draft.Manager, error) {
	opts := draft.Options{
		Mode:           mode,
		MissionID:      missionID,
		Credentials:    a.creds,
		Transport:      a.client,
		PreviewWorkers: a.cfg.PreviewWorkers,
	}
	if a.journal != nil {
		opts.Recorder = a.journal.Recorder(journal.DraftID(title))
	}
	return draft.New(opts)
}

// finish reports how the wizard ended. A missing credential sends the user
// to login; the submission itself is not retried.
func (a *app) finish(cmd *cobra.Command, res *wizard.Result) error {
	switch {
	case res.AuthRequired:
		return a.redirectToLogin(cmd)
	case res.Done:
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	case res.Cancelled:
		fmt.Fprintln(cmd.OutOrStdout(), "Draft discarded.")
	}
	return nil
}

func (a *app) redirectToLogin(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.ErrOrStderr(), draft.DisplayError(draft.ModeCreate, draft.ErrAuthRequired))
	if err := loginFlow(cmd, a, ""); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Run the command again to submit.")
	return nil
}

type displayer interface {
	Display() string
}

// describe returns the user facing text of an error.
func describe(err error) string {
	var d displayer
	if errors.As(err, &d) {
		return d.Display()
	}
	return err.Error()
}
