package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbitfund/orbitfund/internal/auth"
	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/tui/wizard"
)

var editCmd = &cobra.Command{
	Use:   "edit <mission-id>",
	Short: "Edit one of your missions",
	Long: `Fetch one of your missions and open it in the wizard.

Existing media is listed next to new files. Removing an existing file queues
it for deletion when the changes are saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	token, err := a.creds.Token()
	if errors.Is(err, auth.ErrNoCredential) {
		return a.redirectToLogin(cmd)
	}
	if err != nil {
		return err
	}

	rec, err := a.client.GetMission(ctx, token, id)
	if err != nil {
		return fmt.Errorf("failed to load mission %s: %s", id, describe(err))
	}

	mgr, err := a.newDraft(draft.ModeEdit, id, rec.Title)
	if err != nil {
		return err
	}
	mgr.Seed(rec)

	res, err := wizard.Run(ctx, mgr)
	if err != nil {
		return err
	}
	return a.finish(cmd, res)
}
