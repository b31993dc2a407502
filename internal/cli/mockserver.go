package cli

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdash/internal/mockapi"
	"github.com/Makepad-fr/itemdash/internal/store/jsonstore"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

func (a *app) mockServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local items service for trying the client out",
		Long: `Run an in-memory implementation of the items service.

Accounts are kept with bcrypt password hashes and logins return signed
JWTs valid for 24h. With --data, users and items survive restarts.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			data, _ := cmd.Flags().GetString("data")
			secret, _ := cmd.Flags().GetString("secret")

			opts := mockapi.Options{Logger: a.log}
			if secret != "" {
				opts.Secret = []byte(secret)
			}
			if data != "" {
				opts.Store = jsonstore.New(data)
			}
			srv, err := mockapi.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = srv.ListenAndServe(ctx, addr, func(bound net.Addr) {
				ui.OK(a.streams.Out, "Mock items service listening on http://"+bound.String())
				if data != "" {
					ui.Hint(a.streams.Out, "Persisting to "+opts.Store.Path())
				}
				if secret == "" {
					ui.Hint(a.streams.Out, "Tokens are signed with a random key and stop working on restart")
				}
			})
			if err != nil {
				return err
			}
			ui.Info(a.streams.Out, "Stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("data", "", "JSON file (or directory) to persist users and items")
	cmd.Flags().String("secret", "", "HMAC key for issued tokens (random when empty)")
	return cmd
}
