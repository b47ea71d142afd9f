package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/portfolio/internal/config"
	"github.com/dfryer1193/portfolio/internal/web"
	"github.com/dfryer1193/portfolio/shared/db"
	"github.com/dfryer1193/portfolio/shared/db/sqlite"
	gh "github.com/dfryer1193/portfolio/shared/github"
	"github.com/dfryer1193/portfolio/site/application"
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/persistence"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/dfryer1193/portfolio/site/siteconfig"
	webhookhttp "github.com/dfryer1193/portfolio/webhook/http"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site over HTTP",
	Long: `serve renders pages from the content store on every request. When a
GitHub content repository is configured it also mirrors CMS commits into the
store, from a webhook and on startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(appConfig)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cfg *config.Config) error {
	ctx := context.Background()
	site := siteconfig.Default()

	store, closeStore, err := openContentStore(ctx, cfg.Content)
	if err != nil {
		return err
	}
	defer closeStore()

	renderer, err := presentation.NewRenderer(site, nil)
	if err != nil {
		return err
	}
	pages := application.NewPageService(application.NewContentLoader(store), application.NewMarkdownRenderer())

	admin, err := web.NewAdminGateway(cfg.CMS.Upstream)
	if err != nil {
		return err
	}

	deps := web.Deps{
		Site:     site,
		Pages:    pages,
		Renderer: renderer,
		Admin:    admin,
	}
	if dir, _ := contentImages(cfg.Content); dir != "" {
		deps.Images = http.Dir(dir)
	}

	if cfg.GitHub.Enabled() {
		database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.DB.Path))
		syncService, err := startSync(ctx, cfg.GitHub, database, store)
		if err != nil {
			return err
		}
		defer func() {
			if err := syncService.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to gracefully close sync service")
			}
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		}()
		deps.Webhook = webhookhttp.NewWebhookHandler(syncService, cfg.GitHub.WebhookSecret, cfg.GitHub.Owner+"/"+cfg.GitHub.Repo).Router()
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewRouter(deps),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Bool("cms", admin.Available()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

// startSync connects the ledger and the content repository and catches up on
// commits made while the server was down.
func startSync(ctx context.Context, cfg config.GitHubConfig, database db.Database, store domain.WritableContentStore) (*application.SyncService, error) {
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sourceRepo := gh.NewGithubSourceRepository(gh.NewClient(cfg.Token), cfg.Owner, cfg.Repo)
	mainBranchName, err := sourceRepo.GetDefaultBranchName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get default branch name: %w", err)
	}

	syncService := application.NewSyncService(
		persistence.NewSyncRepository(database.DB()),
		sourceRepo,
		store,
		cfg.ContentPath,
		mainBranchName,
	)

	syncService.StartCatchUp()

	return syncService, nil
}
