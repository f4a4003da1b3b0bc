package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/tui/wizard"
)

var submitFlags struct {
	from   string
	dryRun bool
	plain  bool
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Draft and launch a new mission",
	Long: `Draft and launch a new mission.

Without flags the interactive wizard opens. With --from the mission is read
from a YAML file, validated and submitted without a terminal UI; --dry-run
prints the request that would be sent instead.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitFlags.from, "from", "f", "", "Read the mission from a YAML file")
	submitCmd.Flags().BoolVar(&submitFlags.dryRun, "dry-run", false, "Print the submission manifest instead of sending it (requires --from)")
	submitCmd.Flags().BoolVar(&submitFlags.plain, "plain", false, "Do not highlight dry-run output")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if submitFlags.dryRun && submitFlags.from == "" {
		return fmt.Errorf("--dry-run requires --from")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, !submitFlags.dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	if submitFlags.from != "" {
		return submitFromFile(cmd, a, submitFlags.from, submitFlags.dryRun)
	}

	mgr, err := a.newDraft(draft.ModeCreate, "", "")
	if err != nil {
		return err
	}
	res, err := wizard.Run(ctx, mgr)
	if err != nil {
		return err
	}
	return a.finish(cmd, res)
}

// prepareFromFile builds a fully validated draft from a YAML file.
func prepareFromFile(a *app, path string) (*draft.Manager, error) {
	df, err := loadDraftFile(path)
	if err != nil {
		return nil, err
	}
	mgr, err := a.newDraft(draft.ModeCreate, "", df.Title)
	if err != nil {
		return nil, err
	}
	if err := df.apply(mgr, filepath.Dir(path)); err != nil {
		return nil, err
	}
	if err := mgr.ValidateAll(); err != nil {
		return nil, fmt.Errorf("draft %s: %w", path, err)
	}
	return mgr, nil
}

func submitFromFile(cmd *cobra.Command, a *app, path string, dryRun bool) error {
	ctx := cmd.Context()
	mgr, err := prepareFromFile(a, path)
	if err != nil {
		return err
	}

	if dryRun {
		p, err := mgr.BuildSubmissionPayload()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(p.Manifest(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		out := string(data)
		if !submitFlags.plain {
			out = highlightJSON(out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	mgr.Opened(ctx)
	if _, err := mgr.Submit(ctx); err != nil {
		if errors.Is(err, draft.ErrAuthRequired) {
			return a.redirectToLogin(cmd)
		}
		return errors.New(draft.DisplayError(mgr.Mode(), err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), mgr.View().Notice)
	return nil
}
