package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xrclskn/biolink/internal/username"
)

func newUsernameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "username",
		Short: "Username helpers",
	}

	check := &cobra.Command{
		Use:   "check <candidate>",
		Short: "Check whether a username is free",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			checker := username.NewChecker(c, username.WithDelay(a.cfg.UsernameDebounce))
			defer checker.Close()

			res := checker.Check(cmd.Context(), args[0])
			switch res.Status {
			case username.StatusAvailable:
				fmt.Fprintf(a.out, "%s is available\n", res.Candidate)
			case username.StatusTaken:
				fmt.Fprintf(a.out, "%s is taken\n", res.Candidate)
			default:
				fmt.Fprintf(a.out, "%q is invalid: %v\n", res.Candidate, res.Err)
			}
			return nil
		},
	}

	cmd.AddCommand(check)
	return cmd
}
