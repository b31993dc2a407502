package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdash/internal/flow"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/session"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

func (a *app) authFlow() (*flow.Auth, error) {
	client, err := a.apiClient()
	if err != nil {
		return nil, err
	}
	return flow.NewAuth(client, a.store, a.notes, nil, a.log), nil
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := a.authFlow()
			if err != nil {
				return err
			}
			email, err := a.stringFlagOrAsk(cmd, "email", "Email", false)
			if err != nil {
				return err
			}
			password, err := a.stringFlagOrAsk(cmd, "password", "Password", true)
			if err != nil {
				return err
			}
			if err := auth.Login(cmd.Context(), model.Credentials{Email: email, Password: password}); err != nil {
				return reported(err)
			}
			if info, _ := a.store.Info(); info != nil && info.Source == session.SourceEnv {
				ui.Warn(a.streams.Err, session.EnvToken+" is set and still takes precedence over the stored token")
			}
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email (prompted when omitted)")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := a.authFlow()
			if err != nil {
				return err
			}
			var reg model.Registration
			if reg.Username, err = a.stringFlagOrAsk(cmd, "username", "Username", false); err != nil {
				return err
			}
			if reg.Email, err = a.stringFlagOrAsk(cmd, "email", "Email", false); err != nil {
				return err
			}
			if reg.Password, err = a.stringFlagOrAsk(cmd, "password", "Password", true); err != nil {
				return err
			}
			if err := auth.Register(cmd.Context(), reg); err != nil {
				return reported(err)
			}
			ui.Hint(a.streams.Out, "Next: itemdash login --email "+reg.Email)
			return nil
		},
	}
	cmd.Flags().String("username", "", "display name (prompted when omitted)")
	cmd.Flags().String("email", "", "account email (prompted when omitted)")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := a.authFlow()
			if err != nil {
				return err
			}
			if err := auth.Logout(); err != nil {
				return reported(err)
			}
			if info, _ := a.store.Info(); info != nil && info.Source == session.SourceEnv {
				ui.Warn(a.streams.Err, "The token comes from "+session.EnvToken+"; unset it to log out completely")
			}
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the server, session backend and login state",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.sessionStore()
			if err != nil {
				return err
			}
			info, err := store.Info()
			if err != nil {
				return err
			}

			t := ui.Current()
			lines := []string{
				t.Title.Render("itemdash status"),
				"",
				fmt.Sprintf("Server:   %s", a.cfg.API.BaseURL),
				fmt.Sprintf("Session:  %s (%s)", a.cfg.Session.Backend, a.cfg.SessionDir()),
			}
			if info == nil {
				lines = append(lines, "Login:    "+t.Muted.Render("not logged in"))
				fmt.Fprintln(a.streams.Out, ui.Panel(lines))
				return nil
			}

			login := "logged in via " + info.Source
			if !info.CreatedAt.IsZero() {
				login += " since " + info.CreatedAt.Local().Format(time.DateTime)
			}
			lines = append(lines, "Login:    "+t.Success.Render(login))
			if claims, err := session.Inspect(info.Token); err == nil && claims.ExpiresAt != nil {
				exp := "expires " + claims.ExpiresAt.Local().Format(time.DateTime)
				if time.Now().After(*claims.ExpiresAt) {
					exp = t.Warn.Render("expired " + claims.ExpiresAt.Local().Format(time.DateTime))
				}
				lines = append(lines, "Token:    "+exp)
			}

			if check, _ := cmd.Flags().GetBool("check"); check {
				lines = append(lines, "Server:   "+a.checkServer(cmd.Context()))
			}
			fmt.Fprintln(a.streams.Out, ui.Panel(lines))
			return nil
		},
	}
	cmd.Flags().Bool("check", false, "also verify the token against the server")
	return cmd
}

// checkServer lists items once to see whether the token is accepted.
func (a *app) checkServer(ctx context.Context) string {
	t := ui.Current()
	client, err := a.apiClient()
	if err != nil {
		return t.Error.Render(err.Error())
	}
	if _, err := client.ListItems(ctx); err != nil {
		return t.Error.Render("request failed: " + err.Error())
	}
	return t.Success.Render("token accepted")
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the identity in the stored token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.sessionStore()
			if err != nil {
				return err
			}
			tok, ok, err := store.Token()
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("not logged in")
			}
			claims, err := session.Inspect(tok)
			if errors.Is(err, session.ErrOpaqueToken) {
				ui.Info(a.streams.Out, "Logged in with an opaque token; no identity to show")
				return nil
			}
			if err != nil {
				return err
			}
			name := claims.Subject
			if u, ok := claims.Raw["username"].(string); ok && u != "" {
				name = fmt.Sprintf("%s <%s>", u, claims.Subject)
			}
			if name == "" {
				name = "(no subject claim)"
			}
			fmt.Fprintln(a.streams.Out, name)
			return nil
		},
	}
}
