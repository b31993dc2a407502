package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdash/internal/config"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or create the configuration file",
		Long: `View or create the configuration file.

Without arguments, displays the effective configuration. Every key can
also be set from the environment, e.g. ITEMDASH_API_BASE_URL for
api.base_url.`,
		Args: noArgs,
		RunE: a.runConfigShow,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			Args:  noArgs,
			RunE:  a.runConfigShow,
		},
		&cobra.Command{
			Use:         "init",
			Short:       "Write a config file with the default values",
			Args:        noArgs,
			RunE:        a.runConfigInit,
			Annotations: map[string]string{annoConfigOptional: ""},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(a.streams.Out, a.configPath())
				return nil
			},
		},
	)
	return cmd
}

// configPath is the file in use, or where `config init` would write.
func (a *app) configPath() string {
	if used := a.v.ConfigFileUsed(); used != "" {
		return used
	}
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.ConfigFile()
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	b, err := a.cfg.YAML()
	if err != nil {
		return err
	}
	src := a.v.ConfigFileUsed()
	if src == "" {
		src = "(none, using defaults)"
	}
	ui.Hint(a.streams.Out, "# config file: "+src)
	fmt.Fprint(a.streams.Out, string(b))
	return nil
}

func (a *app) runConfigInit(cmd *cobra.Command, args []string) error {
	path := a.cfgFile
	if path == "" {
		path = config.ConfigFile()
	}
	if err := config.Default().WriteFile(path); err != nil {
		return err
	}
	ui.OK(a.streams.Out, "Wrote "+path)
	return nil
}
