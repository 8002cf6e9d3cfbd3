package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studioapi/config"
	"studioapi/controllers"
	"studioapi/dbhelper"
	"studioapi/services"
	"studioapi/sessions"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "studioapi",
		Short:         "Backend for the photo editor and virtual try-on studio",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the usage ledger tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if _, err := dbhelper.SetupDB(cfg.DB); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Println("Migrations applied")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if cfg.GoogleAPIKey == "" {
		return errors.New("GOOGLE_API_KEY environment variable is not set")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          "studioapi@" + version,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder services.UsageRecorder = services.NoopUsageRecorder{}
	if cfg.UsageLedger {
		db, err := dbhelper.SetupDB(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect usage ledger: %w", err)
		}
		recorder = services.GormUsageRecorder{DB: db}
	}

	images, err := services.NewGoogleImageService(ctx, cfg.GoogleAPIKey, cfg.GeminiImageModel, recorder)
	if err != nil {
		return err
	}

	var handles services.DisplayHandleProvider = services.NewInlineHandles()
	if cfg.R2.Enabled() {
		awsService, err := services.NewR2Service(ctx, cfg.R2)
		if err != nil {
			return err
		}
		urlCache, err := services.NewURLCacheService(awsService, cfg.R2.Bucket)
		if err != nil {
			return fmt.Errorf("failed to initialize URL cache service: %w", err)
		}
		handles = services.NewR2Handles(awsService, urlCache, cfg.R2.Bucket, cfg.R2.Prefix)
		log.Printf("Serving display images from bucket %s", cfg.R2.Bucket)
	}

	catalog, err := services.NewGarmentCatalog(cfg.GarmentCatalogBaseURL, nil)
	if err != nil {
		return err
	}

	store := sessions.NewStore(sessions.Dependencies{
		Images:                images,
		Handles:               handles,
		WhitenModelBackground: cfg.WhitenModelBackground,
	})
	go store.RunSweeper(ctx, time.Minute, cfg.SessionIdle)

	e := controllers.SetupServer(store, catalog)
	e.Debug = !cfg.IsProduction()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
