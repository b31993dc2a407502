package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdash/internal/api"
	"github.com/Makepad-fr/itemdash/internal/session"
	"github.com/Makepad-fr/itemdash/internal/tui"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

func (a *app) dashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive dashboard",
		Long: `Open the interactive dashboard.

With --ephemeral the session lives in memory only: the stored token is
neither read nor replaced, and logging in again is needed next time.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.IsTerminal(os.Stdout) {
				return errors.New("dash needs an interactive terminal; use `itemdash items ls` instead")
			}
			cfg, err := a.dashConfig(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}
	cmd.Flags().Bool("ephemeral", false, "keep the session in memory for this run only")
	return cmd
}

func (a *app) dashConfig(cmd *cobra.Command) (tui.Config, error) {
	cfg := tui.Config{Logger: a.log, ToastTTL: a.cfg.TUI.ToastTTL}
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		store := session.NewMemStore()
		cfg.Tokens = store
		cfg.Gateway = api.New(a.cfg.API.BaseURL, store, api.WithTimeout(a.cfg.API.Timeout), api.WithLogger(a.log))
		return cfg, nil
	}

	client, err := a.apiClient()
	if err != nil {
		return cfg, err
	}
	_, loggedIn, err := a.store.Token()
	if err != nil {
		return cfg, err
	}
	cfg.Gateway = client
	cfg.Tokens = a.store
	cfg.LoggedIn = loggedIn
	return cfg, nil
}
