package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reply loop in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching video %s every %ds (Ctrl+C to stop)\n", cfg.YouTube.VideoID, cfg.Workflow.PollInterval)
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	cmd.Flags().BoolVar(&development, "dev", false, "Enable development logging (source locations)")
	return cmd
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single reply cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := daemonrun.RunOnce(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Pages", fmt.Sprintf("%d", result.Pages)},
				{"Scanned", fmt.Sprintf("%d", result.Scanned)},
				{"Replied", fmt.Sprintf("%d", result.Replied)},
				{"Deferred", fmt.Sprintf("%d", result.Deferred)},
				{"Description updates", fmt.Sprintf("%d", result.DescriptionUpdates)},
				{"Stopped on seen", yesNo(result.StoppedOnSeen)},
			}
			fmt.Fprintln(out, renderTable([]string{"Cycle", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, shouldColorize(out)))
			return err
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	return cmd
}
