package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xrclskn/biolink/internal/editor"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), a)
		},
	}
}

func runShow(ctx context.Context, a *app) error {
	e, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	p := e.Store().Profile()
	if p.ID == "" {
		fmt.Fprintln(a.out, "No profile saved yet.")
	}

	name := p.Username
	if name == "" {
		name = "(no username)"
	}
	fmt.Fprintf(a.out, "@%s  %s\n", name, p.DisplayName)
	if p.Title != "" {
		fmt.Fprintf(a.out, "  %s\n", p.Title)
	}
	if p.Bio != "" {
		fmt.Fprintf(a.out, "  %s\n", p.Bio)
	}
	fmt.Fprintf(a.out, "\nTHEME\n  %s\n", e.Store().Style().CSS())

	fmt.Fprintln(a.out, "\nLINKS")
	if len(p.Links) == 0 {
		fmt.Fprintln(a.out, "  (none)")
	}
	for _, l := range p.Links {
		fmt.Fprintf(a.out, "  %d. %s %s -> %s [%s] %s\n", l.Order, mark(l.IsActive), l.Label, l.OriginalURL, l.ID, l.ShortURL)
	}

	fmt.Fprintln(a.out, "\nSOCIAL")
	if len(p.SocialLinks) == 0 {
		fmt.Fprintln(a.out, "  (none)")
	}
	for _, s := range p.SocialLinks {
		fmt.Fprintf(a.out, "  %d. %s %s (%s) -> %s [%s]\n", s.Order, mark(s.Visible()), s.Label, s.Icon, s.OriginalURL, s.ID)
	}
	return nil
}

func mark(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

func newProfileCmd(a *app) *cobra.Command {
	var patch struct {
		username, displayName, title, bio, avatar string
	}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage top level profile fields",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Update username, display name, title, bio or avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p editor.ProfilePatch
			f := cmd.Flags()
			if f.Changed("username") {
				p.Username = &patch.username
			}
			if f.Changed("display-name") {
				p.DisplayName = &patch.displayName
			}
			if f.Changed("title") {
				p.Title = &patch.title
			}
			if f.Changed("bio") {
				p.Bio = &patch.bio
			}
			if f.Changed("avatar") {
				p.AvatarURL = &patch.avatar
			}
			return a.edit(cmd.Context(), func(st *editor.Store) error {
				return st.Update(p)
			})
		},
	}
	set.Flags().StringVar(&patch.username, "username", "", "Public username")
	set.Flags().StringVar(&patch.displayName, "display-name", "", "Display name")
	set.Flags().StringVar(&patch.title, "title", "", "Title shown under the name")
	set.Flags().StringVar(&patch.bio, "bio", "", "Short bio")
	set.Flags().StringVar(&patch.avatar, "avatar", "", "Avatar image URL")

	cmd.AddCommand(set)
	return cmd
}
