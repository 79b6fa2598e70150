package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/models"
)

func parseMove(args []string) (int, int, error) {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid from index %q", args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid to index %q", args[1])
	}
	return from, to, nil
}

func newLinkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage profile links",
	}

	var add struct {
		label, url, icon, color string
		inactive                bool
	}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append a link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				_, err := st.AddLink(models.LinkItem{
					Label:       add.label,
					OriginalURL: add.url,
					Icon:        add.icon,
					IsActive:    !add.inactive,
					Settings:    models.LinkSettings{Color: add.color},
				})
				return err
			})
		},
	}
	addCmd.Flags().StringVar(&add.label, "label", "", "Button label")
	addCmd.Flags().StringVar(&add.url, "url", "", "Target URL")
	addCmd.Flags().StringVar(&add.icon, "icon", "", "Icon name")
	addCmd.Flags().StringVar(&add.color, "color", "", "Button color override")
	addCmd.Flags().BoolVar(&add.inactive, "inactive", false, "Add the link hidden")
	_ = addCmd.MarkFlagRequired("label")

	var upd struct {
		label, url, icon string
		active           bool
	}
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p editor.LinkPatch
			f := cmd.Flags()
			if f.Changed("label") {
				p.Label = &upd.label
			}
			if f.Changed("url") {
				p.OriginalURL = &upd.url
			}
			if f.Changed("icon") {
				p.Icon = &upd.icon
			}
			if f.Changed("active") {
				p.IsActive = &upd.active
			}
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				return st.UpdateLink(args[0], p)
			})
		},
	}
	updateCmd.Flags().StringVar(&upd.label, "label", "", "Button label")
	updateCmd.Flags().StringVar(&upd.url, "url", "", "Target URL")
	updateCmd.Flags().StringVar(&upd.icon, "icon", "", "Icon name")
	updateCmd.Flags().BoolVar(&upd.active, "active", true, "Show the link")

	moveCmd := &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a link to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseMove(args)
			if err != nil {
				return err
			}
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				return st.ReorderLinks(from, to)
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				return st.RemoveLink(args[0])
			})
		},
	}

	cmd.AddCommand(addCmd, updateCmd, moveCmd, removeCmd)
	return cmd
}

func newSocialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "social",
		Short: "Manage social buttons",
	}

	var add struct {
		label, url, icon, color string
		hidden                  bool
	}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append a social button",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				_, err := st.AddSocialLink(models.SocialLinkItem{
					Label:       add.label,
					OriginalURL: add.url,
					Icon:        add.icon,
					IsActive:    !add.hidden,
					Settings:    models.SocialSettings{Color: add.color},
				})
				return err
			})
		},
	}
	addCmd.Flags().StringVar(&add.label, "label", "", "Accessible label")
	addCmd.Flags().StringVar(&add.url, "url", "", "Target URL")
	addCmd.Flags().StringVar(&add.icon, "icon", "", "Icon name")
	addCmd.Flags().StringVar(&add.color, "color", "", "Icon color")
	addCmd.Flags().BoolVar(&add.hidden, "hidden", false, "Add the button hidden")
	_ = addCmd.MarkFlagRequired("icon")

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Show or hide a social button",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				return st.ToggleSocialVisibility(args[0])
			})
		},
	}

	moveCmd := &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a social button to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseMove(args)
			if err != nil {
				return err
			}
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				return st.ReorderSocialLinks(from, to)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a social button right away",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.DeleteSocialLink(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted.")
			return nil
		},
	}

	cmd.AddCommand(addCmd, toggleCmd, moveCmd, deleteCmd)
	return cmd
}
