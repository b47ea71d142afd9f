package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/portfolio/internal/build"
	"github.com/dfryer1193/portfolio/internal/config"
	"github.com/dfryer1193/portfolio/internal/watch"
	"github.com/dfryer1193/portfolio/site/application"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/dfryer1193/portfolio/site/siteconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	watchContent bool
	outputDir    string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site to static files",
	Long: `build renders the homepage, the project listing and every markdown
page the navigation links to into the output directory, along with the
static assets. With --watch it rebuilds whenever the content changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputDir != "" {
			appConfig.Build.OutputDir = outputDir
		}
		return runBuild(cmd.Context(), appConfig)
	},
}

func init() {
	buildCmd.Flags().BoolVarP(&watchContent, "watch", "w", false, "rebuild when the content directory changes")
	buildCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides build.outputDir)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openContentStore(ctx, cfg.Content)
	if err != nil {
		return err
	}
	defer closeStore()

	site := siteconfig.Default()
	renderer, err := presentation.NewRenderer(site, nil)
	if err != nil {
		return err
	}
	_, images := contentImages(cfg.Content)

	builder := &build.Builder{
		Site:        site,
		Pages:       application.NewPageService(application.NewContentLoader(store), application.NewMarkdownRenderer()),
		Renderer:    renderer,
		OutputDir:   cfg.Build.OutputDir,
		Concurrency: cfg.Build.Concurrency,
		Images:      images,
	}

	if _, err := builder.Build(ctx); err != nil {
		if !watchContent {
			return err
		}
		log.Error().Err(err).Msg("Initial build failed, waiting for changes")
	}
	if !watchContent {
		return nil
	}

	if cfg.Content.Backend != config.BackendFS {
		return fmt.Errorf("--watch needs the %s content backend", config.BackendFS)
	}
	w := &watch.Watcher{
		Root: cfg.Content.Dir,
		OnChange: func(ctx context.Context) {
			log.Info().Msg("Rebuilding site due to changes...")
			if _, err := builder.Build(ctx); err != nil {
				log.Error().Err(err).Msg("Rebuild failed")
			}
		},
	}
	return w.Run(ctx)
}
