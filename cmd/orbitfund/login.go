package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/orbitfund/orbitfund/internal/auth"
)

var loginFlags struct {
	username string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the access token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&loginFlags.username, "username", "u", "", "Username (prompted when empty)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	return loginFlow(cmd, a, loginFlags.username)
}

// loginFlow prompts for the password (and username when not given),
// exchanges them for a token and stores it.
func loginFlow(cmd *cobra.Command, a *app, username string) error {
	if username == "" {
		prompt := promptui.Prompt{
			Label: "Username",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("username cannot be empty")
				}
				return nil
			},
		}
		var err error
		username, err = prompt.Run()
		if err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
	}

	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}
	password, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("login cancelled: %w", err)
	}

	res, err := a.client.Login(cmd.Context(), strings.TrimSpace(username), password)
	if err != nil {
		return fmt.Errorf("login failed: %s", describe(err))
	}

	name := res.Username
	if name == "" {
		name = strings.TrimSpace(username)
	}
	if err := a.creds.Save(auth.Credentials{Token: res.Token, Username: name}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
	if info := auth.Inspect(res.Token); !info.ExpiresAt.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Token expires %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store := auth.NewStore("")
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}
