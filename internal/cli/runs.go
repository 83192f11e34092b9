package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	runs := &cobra.Command{
		Use:   "runs",
		Short: "List recent generations and the planner's footprint",
		Run:   runRuns,
	}
	runs.Flags().IntP("limit", "l", 10, "Max runs")

	cleanup := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old run metrics",
		Run:   runMetricsCleanup,
	}
	cleanup.Flags().Int("days", 30, "Keep records for the last N days")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print an archived generation",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	RootCmd.AddCommand(runs, cleanup, show)
}

func runRuns(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := openEnv(cmd)
	if err != nil {
		exitErr("setup", err)
	}
	defer e.close()

	if err := e.app.ListRuns(cmd.Context(), limit); err != nil {
		e.close()
		exitErr("runs", err)
	}
}

func runMetricsCleanup(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")

	e, err := openEnv(cmd)
	if err != nil {
		exitErr("setup", err)
	}
	defer e.close()

	affected, err := e.app.CleanupMetrics(cmd.Context(), days)
	if err != nil {
		e.close()
		exitErr("cleanup", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
}

func runShow(cmd *cobra.Command, args []string) {
	e, err := openEnv(cmd)
	if err != nil {
		exitErr("setup", err)
	}
	defer e.close()

	if err := e.app.ShowArchive(args[0]); err != nil {
		e.close()
		exitErr("show", err)
	}
}
