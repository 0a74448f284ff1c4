package main

import (
	"fmt"

	"bpoc/internal/jobs"

	"github.com/spf13/cobra"
)

func jobsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "inspect and run background jobs"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list job names",
			Run: func(cmd *cobra.Command, _ []string) {
				for _, name := range []string{jobs.SweepJob, jobs.ReminderJob, jobs.BackfillJob} {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
			},
		},
		&cobra.Command{
			Use:   "run <job>",
			Short: "run one job immediately",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runJob(cmd, e, args[0])
			},
		},
	)
	return cmd
}

func sweepCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "mark waiting rooms nobody joined as failed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJob(cmd, e, jobs.SweepJob)
		},
	}
}

func backfillCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-ai",
		Short: "retry failed AI generations below the attempt limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJob(cmd, e, jobs.BackfillJob)
		},
	}
}

func runJob(cmd *cobra.Command, e *env, name string) error {
	ctx := cmd.Context()
	s, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	sched, err := e.scheduler(ctx, s, name)
	if err != nil {
		return err
	}
	items, err := sched.RunOnce(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d item(s)\n", name, items)
	return nil
}
