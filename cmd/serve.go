package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/assessment"
	"github.com/abhictrl/Reflexion-Interviewer/internal/interview"
	"github.com/abhictrl/Reflexion-Interviewer/internal/profile"
	"github.com/abhictrl/Reflexion-Interviewer/internal/server"
)

const (
	defaultAddress         = ":8080"
	defaultSessionTTL      = time.Hour
	defaultSweepInterval   = 5 * time.Minute
	serverShutdownDeadline = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default is :8080)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl := newLogger()

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	zl.Info("starting the reflexion-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zl.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	completer, err := buildCompleter(ctx, config.AI, zl)
	if err != nil {
		zl.Fatal("building the AI backend", zap.Error(err))
	}

	catalog := interview.DefaultCatalog()

	ttl := defaultSessionTTL
	sweep := defaultSweepInterval
	if config.Session != nil {
		if config.Session.TTL != 0 {
			ttl = config.Session.TTL
		}
		if config.Session.SweepInterval != 0 {
			sweep = config.Session.SweepInterval
		}
	}

	registry := interview.NewRegistry(catalog, completer, zl, ttl)
	registry.StartSweeper(sweep)
	defer registry.Stop()

	srv := server.New(
		registry,
		profile.NewAnalyzer(completer, zl),
		assessment.NewEngine(completer, catalog, zl),
		zl,
	)

	// The flag is bound over the config key, so viper already resolves the
	// precedence between the two.
	address := viper.GetString("server.address")
	if address == "" {
		address = defaultAddress
	}

	httpServer := &http.Server{
		Addr:    address,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	zl.Info("interview API listening", zap.String("address", address))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zl.Info("shutting down", zap.String("reason", "signal received"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zl.Warn("graceful shutdown failed", zap.Error(err))
		}
	}
}
