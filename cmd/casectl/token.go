package main

import (
	"fmt"

	"github.com/case-tracker/backend/internal/auth"
	"github.com/spf13/cobra"
)

func newIssueTokenCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue an API bearer token for a user",
		Long:  `Look the user up in the directory and print a signed token carrying their role.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.lookupUser(ctx, user)
			if err != nil {
				return err
			}

			token, err := auth.GenerateJWT(a.cfg.JWTSecret, u.ID, u.Role, a.cfg.JWTExpiration)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "ID or email of the user (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}
