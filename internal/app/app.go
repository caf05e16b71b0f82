// Package app wires the configured table backend, repository and services
// together for the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/tablepoll/internal/adapters/events/rabbitmq"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/dynamo"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/memory"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/postgres"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
	"github.com/vncsmyrnk/tablepoll/internal/config"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
	"github.com/vncsmyrnk/tablepoll/internal/core/services"
)

type App struct {
	PollRepo     ports.PollRepository
	PollSvc      ports.PollService
	VoteSvc      ports.VoteService
	ReconcileSvc ports.ReconcileService

	closers []func() error
}

// New connects to the configured backend and, when RABBITMQ_URL is set, to
// the broker. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	table, err := a.openTable(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher ports.VotePublisher
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)

		ch, err := rabbitmq.OpenChannel(conn, cfg.RabbitMQQueue)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, ch.Close)
		publisher = rabbitmq.NewVotePublisher(ch, cfg.RabbitMQQueue)
	}

	a.PollRepo = singletable.NewPollRepository(table, singletable.NewCodec())
	a.PollSvc = services.NewPollService(a.PollRepo)
	a.VoteSvc = services.NewVoteService(a.PollRepo, publisher)
	a.ReconcileSvc = services.NewReconcileService(a.PollRepo)
	return a, nil
}

func (a *App) openTable(ctx context.Context, cfg *config.Config) (singletable.Table, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		return dynamo.NewTable(client, cfg.TableName), nil
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresConnString())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return postgres.NewTable(db), nil
	case config.BackendMemory:
		slog.Warn("using in-memory table, data is lost on exit")
		return memory.NewTable(), nil
	default:
		return nil, fmt.Errorf("unknown table backend %q", cfg.Backend)
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
	a.closers = nil
}
