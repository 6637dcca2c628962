package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tooldex/pkg/api"
	"tooldex/pkg/auth"
	"tooldex/pkg/catalog"
	"tooldex/pkg/config"
	"tooldex/pkg/db"
	"tooldex/pkg/markdown"
	"tooldex/pkg/news"
	"tooldex/pkg/pipeline"
	"tooldex/pkg/replication"
	"tooldex/pkg/scrape"
	"tooldex/pkg/timefmt"
	"tooldex/pkg/urls"
	"tooldex/pkg/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tooldex",
	Short: "tooldex - accessibility tools directory toolkit",
	Long: `tooldex maintains an accessibility tools directory: it scrapes product
metadata from source platforms (GitHub, Ravelry, Thingiverse, GOAT, plain
websites), ingests community news feeds, and replicates landed results into
the serving database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// scrapeCmd scrapes explicit source URLs into the landing store
var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Scrape product source URLs into the landing store",
	Long: `Scrapes each given URL with the integration that supports it and upserts
the result into the MongoDB landing store.

Example:
  tooldex scrape https://github.com/nvaccess/nvda`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

// refreshCmd walks a paginated directory listing and scrapes every store link
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-scrape products discovered from a directory listing",
	Long: `Walks a paginated listing, extracts product store links from each page,
scrapes them, and lands the results.

Example:
  tooldex refresh --base-url https://directory.example.com --page-pattern /tools/page/%d`,
	RunE: runRefresh,
}

// fileCmd scrapes source URLs listed in a local file
var fileCmd = &cobra.Command{
	Use:   "file [path]",
	Short: "Scrape source URLs listed in a file, one per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

// sitemapCmd discovers product pages from a vendor sitemap
var sitemapCmd = &cobra.Command{
	Use:   "sitemap [sitemap-url]",
	Short: "Scrape product pages discovered from a vendor sitemap",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitemap,
}

// newsCmd ingests configured feeds
var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Ingest configured news feeds into the landing store",
	RunE:  runNews,
}

// replicateCmd copies landed products into Postgres
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Replicate landed products into the serving database",
	RunE:  runReplicate,
}

// healthCmd probes product links
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of every approved product link",
	RunE:  runHealth,
}

// productsCmd lists products through the backend API
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List directory products",
	RunE:  runProducts,
}

// blogCmd shows a blog post through the backend API
var blogCmd = &cobra.Command{
	Use:   "blog [slug]",
	Short: "Show a blog post, rendered as sanitized HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlog,
}

var (
	refreshBaseURL     string
	refreshPagePattern string

	productsQuery    string
	productsCategory string
	productsPlatform string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	refreshCmd.Flags().StringVar(&refreshBaseURL, "base-url", "", "Directory base URL (required)")
	refreshCmd.Flags().StringVar(&refreshPagePattern, "page-pattern", "/page/%d", "Page URL pattern with %d placeholder")
	refreshCmd.MarkFlagRequired("base-url")

	productsCmd.Flags().StringVarP(&productsQuery, "query", "q", "", "Free text search")
	productsCmd.Flags().StringVar(&productsCategory, "category", "", "Filter by category")
	productsCmd.Flags().StringVar(&productsPlatform, "platform", "", "Filter by platform")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(sitemapCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(blogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext builds a context honoring the timeout flag and SIGINT/SIGTERM
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	return ctx, cancel
}

// thingiverseTokenURL is the OAuth token endpoint used to refresh
// Thingiverse app tokens.
const thingiverseTokenURL = "https://www.thingiverse.com/login/oauth/access_token"

// buildRegistry wires every configured scraper integration, generic fallback last
func buildRegistry() (*scrape.Registry, error) {
	registry := scrape.NewRegistry()
	registry.Register(scrape.NewGitHubScraper(auth.StaticToken(cfg.GitHubToken)))
	if cfg.RavelryKey != "" {
		registry.Register(scrape.NewRavelryScraper(cfg.RavelryKey, cfg.RavelrySecret))
	}
	switch {
	case cfg.ThingiverseToken != "":
		// A personal access token skips the OAuth dance entirely.
		registry.Register(scrape.NewThingiverseScraper(auth.StaticToken(cfg.ThingiverseToken)))
	case cfg.ThingiverseClient != "":
		manager, err := auth.NewTokenManager(auth.ManagerConfig{
			Provider: auth.ProviderThingiverse,
			TokenURL: thingiverseTokenURL,
			ClientID: cfg.ThingiverseClient,
		})
		if err != nil {
			return nil, fmt.Errorf("thingiverse token manager: %w", err)
		}
		registry.Register(scrape.NewThingiverseScraper(&auth.ManagedSource{Manager: manager}))
	}
	registry.Register(scrape.NewGoatScraper())
	registry.Register(scrape.NewGenericScraper())
	return registry, nil
}

// connectLanding connects to the MongoDB landing store
func connectLanding(ctx context.Context) (*db.LandingStore, error) {
	store := db.NewLandingStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to landing store: %w", err)
	}
	return store, nil
}

// servingClient is the subset shared by the Postgres and Supabase clients
type servingClient interface {
	db.DBProvider
	Close() error
}

// connectServing connects to the serving database. A plain Postgres DSN wins;
// otherwise Supabase credentials are used.
func connectServing(ctx context.Context) (servingClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.PostgresDSN != "" {
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.PostgresDSN})
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return client, nil
	}

	client := db.NewSupabaseClient(db.SupabaseConfig{
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		Password:    cfg.SupabasePassword,
	})
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to supabase: %w", err)
	}
	if !client.HasDirectDB() {
		_ = client.Close()
		return nil, fmt.Errorf("supabase client is in REST mode; SUPABASE_DB_PASSWORD is required for store commands")
	}
	return client, nil
}

// apiSession picks the session backend calls run under. Dev mode uses the
// fixture identity; otherwise the session saved at sign-in is resumed.
func apiSession() (auth.Session, error) {
	if cfg.DevMode {
		return auth.NewDevSession(), nil
	}

	manager, err := auth.NewTokenManager(auth.ManagerConfig{
		Provider: auth.ProviderTooldex,
		TokenURL: strings.TrimRight(cfg.BackendBaseURL, "/") + "/auth/token",
		ClientID: "tooldex-cli",
	})
	if err != nil {
		return nil, fmt.Errorf("backend token manager: %w", err)
	}
	return auth.ResumeSession(manager, "")
}

// apiClient builds a backend API client with the ambient session
func apiClient() (*api.Client, error) {
	session, err := apiSession()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.BackendBaseURL, session)
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)
	}
	return client, nil
}

// urlsFilters builds the standard filters for bulk source URL intake
func urlsFilters(tracked map[string]bool) []urls.UrlFilter {
	return []urls.UrlFilter{
		urls.NewBaseURLFilter(),
		urls.NewAlreadyTrackedFilter(tracked),
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	store, err := connectLanding(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	manager := worker.NewManager(cfg.ScrapeWorkers, registry, store, logger)
	return manager.ProcessURLs(ctx, args)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	store, err := connectLanding(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	p := pipeline.DirectoryPipelineBuilder(store, registry,
		refreshBaseURL, refreshPagePattern,
		cfg.FetchWorkers, cfg.ScrapeWorkers, logger)

	return p.Run(ctx, refreshBaseURL)
}

func runFile(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	store, err := connectLanding(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	// Skip URLs that already landed
	tracked, err := store.AllSourceURLs(ctx)
	if err != nil {
		return err
	}

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	p := pipeline.FileListPipelineBuilder(store, registry,
		cfg.FetchWorkers, cfg.ScrapeWorkers, logger,
		urlsFilters(tracked)...)

	return p.Run(ctx, args[0])
}

func runSitemap(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	store, err := connectLanding(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	tracked, err := store.AllSourceURLs(ctx)
	if err != nil {
		return err
	}

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	p := pipeline.SitemapPipelineBuilder(store, registry,
		cfg.FetchWorkers, cfg.ScrapeWorkers, logger,
		urlsFilters(tracked)...)

	return p.Run(ctx, args[0])
}

func runNews(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	if len(cfg.NewsFeeds) == 0 {
		return fmt.Errorf("no news feeds configured (set NEWS_FEEDS)")
	}

	store, err := connectLanding(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	ingestor := news.NewIngestor()
	for _, feedURL := range cfg.NewsFeeds {
		items, err := ingestor.IngestFeed(ctx, feedURL)
		if err != nil {
			logger.Warn("feed ingestion failed",
				zap.String("feed", feedURL), zap.Error(err))
			continue
		}
		for i := range items {
			if err := store.SaveNewsItem(ctx, &items[i]); err != nil {
				logger.Warn("failed to save news item",
					zap.String("url", items[i].URL), zap.Error(err))
			}
		}
		logger.Info("feed ingested",
			zap.String("feed", feedURL), zap.Int("items", len(items)))
	}

	return nil
}

func runReplicate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	landing, err := connectLanding(ctx)
	if err != nil {
		return err
	}
	defer landing.Close(ctx)

	pg, err := connectServing(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	replicator, err := replication.NewReplicator(replication.Config{
		Landing:  landing,
		Postgres: pg,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return replicator.Replicate(ctx)
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	pg, err := connectServing(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	manager := worker.NewHealthManager(worker.HealthConfig{
		ProbeWorkers: cfg.FetchWorkers,
		Store:        db.NewProductStore(pg),
		Logger:       logger,
		Timeout:      time.Duration(cfg.RequestTimeout) * time.Second,
	})

	return manager.CheckAll(ctx)
}

func runProducts(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	client, err := apiClient()
	if err != nil {
		return err
	}

	products, err := client.ListProducts(ctx, api.ProductQuery{
		Query:    productsQuery,
		Category: productsCategory,
		Platform: productsPlatform,
	})
	if err != nil {
		return err
	}

	// The backend already filters, but visibility depends on the caller's
	// role, so pending listings are re-checked here.
	role := client.Session().Identity().Role
	products, err = catalog.Search(ctx, products, catalog.NewVisibleFilter(role))
	if err != nil {
		return err
	}

	for _, p := range products {
		price := "free"
		if p.PriceCents > 0 {
			price = fmt.Sprintf("$%.2f", float64(p.PriceCents)/100)
		}
		updated := timefmt.Format(p.UpdatedAt)
		if updated == "" {
			updated = "unknown"
		}
		fmt.Printf("%s  %s  [%s]  %s  updated %s\n", p.ID, p.Name, p.Category, price, updated)
	}
	fmt.Printf("\n%d products\n", len(products))
	return nil
}

func runBlog(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	client, err := apiClient()
	if err != nil {
		return err
	}

	post, err := client.GetBlogPost(ctx, args[0])
	if err != nil {
		return err
	}

	renderer := markdown.NewRenderer()
	fmt.Printf("%s\nposted %s\n\n", post.Title, timefmt.Format(post.PublishedAt))
	fmt.Println(renderer.Render(post.Body))
	return nil
}
