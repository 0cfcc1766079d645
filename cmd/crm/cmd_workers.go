package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-crm/app/jobs"
	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/internal/server"
)

var queueWorkersFlag int

// crm queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 1
		}
		fmt.Printf("Queue worker started (%d workers, %s driver). Press Ctrl+C to stop.\n", workers, config.QueueDriver())
		a.Work(ctx, workers)
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

// crm schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the job scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		printEntries(a)
		a.Scheduler.Start(ctx)
		workersDone := make(chan struct{})
		go func() {
			defer close(workersDone)
			a.Work(ctx, 1)
		}()

		<-ctx.Done()
		a.Scheduler.Stop()
		<-workersDone
		fmt.Println("Scheduler stopped.")
		return nil
	},
}

// crm schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the scheduled jobs and their cron expressions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		printEntries(a)
		return nil
	},
}

// crm job:run <name>
var jobRunCmd = &cobra.Command{
	Use:   "job:run <name>",
	Short: "Run one scheduled job immediately",
	Long: "Run one scheduled job immediately. Reminder mails it queues are only " +
		"delivered by a worker when QUEUE_DRIVER=redis.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		j, ok := a.Job(args[0])
		if !ok {
			return fmt.Errorf("unknown job %q (see crm schedule:list)", args[0])
		}
		j.Run(cmd.Context())
		return nil
	},
}

func printEntries(a *server.App) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "JOB\tCRON\tCONFIG KEY")
	for _, e := range a.Scheduler.Entries() {
		fmt.Fprintf(w, "%s\t%s\tSCHEDULE_%s\n", e.Name, e.Cron, jobs.ScheduleKey(e.Name))
	}
	_ = w.Flush()
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 2, "Number of concurrent workers")
}
