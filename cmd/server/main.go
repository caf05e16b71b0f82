package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/tablepoll/internal/app"
	"github.com/vncsmyrnk/tablepoll/internal/config"
)

func main() {
	v := viper.New()
	config.Init(v)
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.SetupLogger(cfg.LogLevel); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	pollHandler := http.NewPollHandler(a.PollSvc)
	voteHandler := http.NewVoteHandler(a.VoteSvc)
	handler := http.NewHandler(pollHandler, voteHandler, cfg.StoreTimeout)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "backend", cfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
