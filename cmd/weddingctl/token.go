package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wedding-site/pkg/utils"
)

var tokenSubject string

// tokenCmd prints a non-expiring API token; set it as API_TOKEN on the presentation service.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a content service API token signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.UsingDefaultJWTSecret() {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: signing with the placeholder JWT_SECRET")
		}

		tok, err := utils.NewJWTService(cfg.JWTSecret).IssueAPIToken(tokenSubject)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "web", "token subject, e.g. the calling service")
}
