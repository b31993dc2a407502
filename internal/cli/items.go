package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdash/internal/flow"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/ui"
)

func (a *app) dashboard() (*flow.Dashboard, error) {
	client, err := a.apiClient()
	if err != nil {
		return nil, err
	}
	return flow.NewDashboard(client, a.notes, a.log), nil
}

func (a *app) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "List, add, edit and delete items",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageErrorf("items needs a subcommand: ls, add, edit or rm")
		},
	}
	cmd.AddCommand(a.itemsListCmd(), a.itemsAddCmd(), a.itemsEditCmd(), a.itemsRemoveCmd())
	return cmd
}

func (a *app) itemsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all items",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.dashboard()
			if err != nil {
				return err
			}
			if err := dash.Load(cmd.Context()); err != nil {
				return reported(err)
			}
			items := dash.Items()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(a.streams.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			fmt.Fprintln(a.streams.Out, ui.ItemTable(items))
			if len(items) == 0 {
				ui.Hint(a.streams.Out, `Tip: add one with itemdash items add --title "..." --description "..."`)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the list as JSON")
	return cmd
}

func (a *app) itemsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.dashboard()
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			desc, _ := cmd.Flags().GetString("description")
			if err := dash.OpenNew(); err != nil {
				return err
			}
			if err := dash.UpdateDraft(title, desc); err != nil {
				return err
			}
			return a.save(cmd, dash)
		},
	}
	cmd.Flags().StringP("title", "t", "", "item title")
	cmd.Flags().StringP("description", "d", "", "item description")
	return cmd
}

// save submits the open draft. Empty fields are a usage error.
func (a *app) save(cmd *cobra.Command, dash *flow.Dashboard) error {
	err := dash.Save(cmd.Context())
	switch {
	case err == nil:
		return nil
	case flow.IsValidation(err):
		return &exitError{code: ExitUsage, err: err, silent: true}
	default:
		return reported(err)
	}
}

func (a *app) itemsEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's title or description",
		Args:  exactArgs(1, "itemdash items edit <id> [--title T] [--description D]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("description") {
				return usageErrorf("nothing to change: pass --title and/or --description")
			}
			dash, err := a.dashboard()
			if err != nil {
				return err
			}
			if err := dash.Load(cmd.Context()); err != nil {
				return reported(err)
			}
			id := model.ItemID(args[0])
			it, ok := dash.Find(id)
			if !ok {
				return fmt.Errorf("item %s not found", id)
			}
			if err := dash.Edit(it); err != nil {
				return err
			}
			title, desc := it.Title, it.Description
			if cmd.Flags().Changed("title") {
				title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("description") {
				desc, _ = cmd.Flags().GetString("description")
			}
			if err := dash.UpdateDraft(title, desc); err != nil {
				return err
			}
			return a.save(cmd, dash)
		},
	}
	cmd.Flags().StringP("title", "t", "", "new title")
	cmd.Flags().StringP("description", "d", "", "new description")
	return cmd
}

func (a *app) itemsRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item (asks first unless --yes)",
		Args:    exactArgs(1, "itemdash items rm <id> [--yes]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.dashboard()
			if err != nil {
				return err
			}
			if err := dash.Load(cmd.Context()); err != nil {
				return reported(err)
			}

			confirm := a.confirmer()
			if yes, _ := cmd.Flags().GetBool("yes"); yes {
				confirm = flow.AlwaysConfirm
			}
			err = dash.Delete(cmd.Context(), model.ItemID(args[0]), confirm)
			if errors.Is(err, flow.ErrCancelled) {
				return nil
			}
			return reported(err)
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "delete without asking")
	return cmd
}
