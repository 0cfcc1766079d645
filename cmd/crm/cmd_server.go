package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-crm/app/routes"
	"github.com/shashiranjanraj/kashvi-crm/internal/server"
	"github.com/shashiranjanraj/kashvi-crm/pkg/router"
)

// crm serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP and gRPC servers with the scheduler and queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// crm route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the named HTTP routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		routes.Register(r, routes.Deps{})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PATH\tNAME")
		for _, ri := range r.Routes() {
			fmt.Fprintf(w, "%s\t%s\n", ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
