// Command crm runs and operates the CRM service.
//
//	crm serve                  # HTTP + gRPC + scheduler + queue workers
//	crm migrate                # run pending migrations
//	crm migrate:rollback
//	crm migrate:status
//	crm seed                   # sample customers, products and an order
//	crm schedule:list
//	crm schedule:run           # scheduler only
//	crm job:run low-stock      # run one job now
//	crm queue:work -w 4
//	crm token:issue reporting --ttl 720h
//	crm route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "crm",
	Short:         "CRM service CLI",
	Long:          "crm serves the CRM GraphQL API and runs its scheduled jobs and queue workers.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(scheduleRunCmd)
	rootCmd.AddCommand(scheduleListCmd)
	rootCmd.AddCommand(jobRunCmd)
	rootCmd.AddCommand(queueWorkCmd)

	rootCmd.AddCommand(tokenIssueCmd)
}
