// Package cli is the itemdash command line: cobra commands that wire
// configuration, the session store and the API client into the flows.
package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/itemdash/internal/api"
	"github.com/Makepad-fr/itemdash/internal/config"
	"github.com/Makepad-fr/itemdash/internal/logging"
	"github.com/Makepad-fr/itemdash/internal/notify"
	"github.com/Makepad-fr/itemdash/internal/session"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

// app holds what commands share. Everything past the config is opened
// lazily so `config` and `mock-server` never touch the session store.
type app struct {
	streams Streams
	in      *bufio.Reader
	v       *viper.Viper

	cfgFile string
	debug   bool

	cfg    *config.Config
	log    *logging.Logger
	store  session.Store
	client *api.Client
	notes  *notify.Channel
}

func newRoot(s Streams) (*cobra.Command, *app) {
	a := &app{streams: s, in: bufio.NewReader(s.In), v: viper.New()}

	root := &cobra.Command{
		Use:   "itemdash",
		Short: "Terminal client for an items REST service",
		Long: `itemdash signs in to an items service, keeps the session token
between runs, and lists, adds, edits and deletes items from the
command line or an interactive dashboard.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup(cmd) },
	}
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: ExitUsage, err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/itemdash/config.yaml)")
	pf.String("server", "", "items service base URL (overrides api.base_url)")
	pf.BoolVar(&a.debug, "debug", false, "write debug-level logs to the session directory")
	_ = a.v.BindPFlag("api.base_url", pf.Lookup("server"))

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.whoamiCmd(),
		a.itemsCmd(),
		a.dashCmd(),
		a.mockServerCmd(),
		a.configCmd(),
	)
	return root, a
}

// annoConfigOptional marks commands that run even when --config names a
// file that does not exist yet.
const annoConfigOptional = "itemdash/config-optional"

func (a *app) setup(cmd *cobra.Command) error {
	cfgFile := a.cfgFile
	if _, ok := cmd.Annotations[annoConfigOptional]; ok && cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			cfgFile = ""
		}
	}
	if err := config.Init(a.v, cfgFile); err != nil {
		return err
	}
	if a.debug {
		a.v.Set("logging.enabled", true)
		a.v.Set("logging.level", logging.LevelDebug)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	ui.SetTheme(cfg.TUI.Theme)

	a.log = logging.NopLogger()
	if cfg.Logging.Enabled {
		l, err := logging.NewLogger(cfg.SessionDir(), cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		a.log = l
	}
	a.log.Debug("command", "name", cmd.CommandPath(), "server", cfg.API.BaseURL)
	a.notes = notify.NewChannel(a.log, notify.NewPrinter(a.streams.Out, a.streams.Err))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := session.Close(a.store); err != nil {
			a.log.Warn("close session store", "error", err)
		}
	}
	if a.log != nil {
		_ = a.log.Close()
	}
}

// sessionStore opens the configured token store once.
func (a *app) sessionStore() (session.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := session.Open(a.cfg.Session.Backend, a.cfg.SessionDir())
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	a.store = s
	return s, nil
}

// apiClient returns a client reading its token from the session store.
func (a *app) apiClient() (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	s, err := a.sessionStore()
	if err != nil {
		return nil, err
	}
	a.client = api.New(a.cfg.API.BaseURL, s, api.WithTimeout(a.cfg.API.Timeout), api.WithLogger(a.log))
	return a.client, nil
}
