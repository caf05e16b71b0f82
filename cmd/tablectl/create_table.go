package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/dynamo"
	"github.com/vncsmyrnk/tablepoll/internal/config"
)

var createTableCmd = &cobra.Command{
	Use:   "create-table",
	Short: "Create the DynamoDB table with its GSI1 and GSI2 indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendDynamoDB {
			return fmt.Errorf("create-table needs the %s backend, got %s", config.BackendDynamoDB, cfg.Backend)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
		defer cancel()

		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return err
		}
		if err := dynamo.CreateTable(ctx, client, cfg.TableName); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "table %s is ready\n", cfg.TableName)
		return nil
	},
}
