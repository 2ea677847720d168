package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolio/auth"
	"portfolio/config"
	"portfolio/db"
	"portfolio/handlers"
	"portfolio/logger"
	"portfolio/session"
	"portfolio/store"
	"portfolio/web"
)

var (
	configPath string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "portfolio-admin",
	Short: "Portfolio site with a project admin panel and JSON API",
	Long: `portfolio-admin serves the static portfolio front-end, a login-protected
admin panel for the projects table, and a JSON API over the same table.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to the JSON config file")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides LISTEN)")
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	logger.Init()
	defer logger.Sync()

	conn, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()
	dialect := db.DialectOf(cfg.Database.Driver)
	if err := db.EnsureSchema(ctx, conn, dialect); err != nil {
		logger.Errorf("db: %v", err)
	}

	sessions, closeStore, err := sessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	manager := session.NewManager(sessions, cfg.Session.Secret, cfg.Session.TTL)
	manager.Secure = cfg.Session.Secure

	h := handlers.New(handlers.Deps{
		Projects:    store.NewProjectStore(conn, dialect),
		Sessions:    manager,
		Verifier:    auth.StaticVerifier{Email: cfg.Admin.Email, Password: cfg.Admin.Password},
		Templates:   tmpl,
		SiteDir:     cfg.Static.SiteDir,
		AdminDir:    cfg.Static.AdminDir,
		CORSOrigins: cfg.CORS,
	})

	return serve(ctx, cfg.Listen, handlers.NewRouter(h))
}

// sessionStore picks Redis when REDIS_URL is set, process memory otherwise.
func sessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Infof("sessions: in-memory store")
		return session.NewMemoryStore(), func() {}, nil
	}
	rs, err := session.NewRedisStoreFromURL(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("sessions: redis store")
	return rs, func() { _ = rs.Close() }, nil
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
