package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the reply ledger",
	}
	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerCountCommand(ctx))
	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List answered comments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			l, err := loadLedger(cmd, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries := l.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No replies recorded")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			rows := make([][]string, 0, len(entries))
			for i, entry := range entries {
				replied := "-"
				if !entry.RepliedAt.IsZero() {
					replied = entry.RepliedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), entry.CommentID, replied})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Comment", "Replied"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}, shouldColorize(out)))
			if len(entries) < l.Len() {
				fmt.Fprintf(out, "Showing %d of %d replies\n", len(entries), l.Len())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func newLedgerCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of answered comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			var n int
			if sq, ok := store.(*ledger.SQLiteStore); ok {
				n, err = sq.Count(cmd.Context(), cfg.YouTube.VideoID)
			} else {
				var l *ledger.Ledger
				if l, err = store.Load(cmd.Context(), cfg.YouTube.VideoID); err == nil {
					n = l.Len()
				}
			}
			if err != nil {
				return fmt.Errorf("count ledger: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func loadLedger(cmd *cobra.Command, cfg *config.Config) (*ledger.Ledger, error) {
	store, err := ledger.Open(cfg, logging.NewNop())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	l, err := store.Load(cmd.Context(), cfg.YouTube.VideoID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}
