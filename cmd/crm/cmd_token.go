package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/pkg/auth"
)

var (
	tokenTTLFlag   time.Duration
	tokenScopeFlag string
)

// crm token:issue <client>
var tokenIssueCmd = &cobra.Command{
	Use:   "token:issue <client>",
	Short: "Issue an API token for /graphql (used when API_AUTH=true)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		token, err := auth.IssueToken(args[0], tokenScopeFlag, tokenTTLFlag)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().DurationVar(&tokenTTLFlag, "ttl", 30*24*time.Hour, "Token lifetime")
	tokenIssueCmd.Flags().StringVar(&tokenScopeFlag, "scope", "graphql", "Scope claim")
}
