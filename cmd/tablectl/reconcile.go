package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/tablepoll/internal/app"
	"github.com/vncsmyrnk/tablepoll/internal/config"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile POLL_ID...",
	Short: "Report options whose vote counter disagrees with the vote audit log",
	Long: `reconcile compares each option's vote counter with the number of vote
records stored for it. A vote whose audit record could not be written after
the counter was incremented shows up as a missing record. Nothing is changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		slog.Info("starting vote reconciliation", "polls", len(args))
		drifts, err := a.ReconcileSvc.ReconcilePolls(ctx, args)
		if err != nil {
			return err
		}
		slog.Info("vote reconciliation completed", "drifting_options", len(drifts))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(drifts)
	},
}

func init() {
	reconcileCmd.Flags().Duration("timeout", 5*time.Minute, "time limit for the whole run")
}
