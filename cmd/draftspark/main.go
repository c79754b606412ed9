package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/auth"
	"github.com/pawelsloboda5/draft-spark-compose/internal/cache"
	"github.com/pawelsloboda5/draft-spark-compose/internal/config"
	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/generate"
	"github.com/pawelsloboda5/draft-spark-compose/internal/llm"
	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
	"github.com/pawelsloboda5/draft-spark-compose/internal/news"
	"github.com/pawelsloboda5/draft-spark-compose/internal/profile"
	"github.com/pawelsloboda5/draft-spark-compose/internal/server"
	"github.com/pawelsloboda5/draft-spark-compose/internal/trends"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	userID     string
	cfg        *config.Config
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "draftspark",
	Short:   "Trend-aware social post drafts",
	Long:    "draftspark writes short social posts in your tone, anchored on today's headlines for your niche.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Init(level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "local", "User id for local commands")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(tokenCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("draftspark", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/draftspark/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Set NEWS_API_KEY, OPENAI_API_KEY and SUPABASE_JWT_SECRET (or edit the *_env keys).")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Users:")
		fmt.Printf("  Profiles: %d\n", stats.Profiles)
		fmt.Printf("  Writing samples: %d\n", stats.Samples)
		fmt.Println("\nTrends:")
		fmt.Printf("  Cached headlines: %d\n", stats.Trends)
		fmt.Println("\nOutput:")
		fmt.Printf("  Generated posts: %d\n", stats.Posts)
		fmt.Printf("  Favorites: %d\n", stats.Favorites)

		fmt.Println("\nProviders:")
		fmt.Printf("  News: %s (%s set: %v)\n", cfg.News.Provider, cfg.News.APIKeyEnv, os.Getenv(cfg.News.APIKeyEnv) != "")
		fmt.Printf("  Model: %s %s (%s set: %v)\n", cfg.Generation.Provider, cfg.Generation.Model,
			cfg.Generation.APIKeyEnv, os.Getenv(cfg.Generation.APIKeyEnv) != "")
		fmt.Printf("  Auth secret (%s) set: %v\n", cfg.Auth.JWTSecretEnv, os.Getenv(cfg.Auth.JWTSecretEnv) != "")
		cacheState := "disabled"
		if cfg.Cache.RedisURL != "" {
			cacheState = cfg.Cache.RedisURL
		}
		fmt.Printf("  Profile cache: %s\n", cacheState)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		rdb := cache.Connect(ctx, cfg.Cache.RedisURL)
		if rdb != nil {
			defer rdb.Close()
		}
		profileCache := cache.NewProfileCache(rdb, cfg.ProfileTTL())

		secret := os.Getenv(cfg.Auth.JWTSecretEnv)
		if secret == "" {
			logging.L().Warn("auth secret not set, every API request will be rejected",
				zap.String("env", cfg.Auth.JWTSecretEnv))
		}

		resolver := newResolver(db)
		srv := server.New(server.Deps{
			DB:             db,
			Profiles:       profile.NewService(db, profileCache),
			Generator:      newGenerator(db, resolver),
			Trends:         resolver,
			Verifier:       auth.NewVerifier(secret),
			Cache:          profileCache,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})

		// Wait for interrupt signal
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-quit
			cancel()
		}()

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		fmt.Printf("Starting server at http://%s\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		return srv.Serve(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on (overrides config)")
}

// --- token command ---

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for --user, signed with the configured secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv(cfg.Auth.JWTSecretEnv)
		if secret == "" {
			return fmt.Errorf("%s is not set", cfg.Auth.JWTSecretEnv)
		}
		tok, err := auth.Sign(secret, userID, tokenTTL)
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "draftspark.db")
	return database.Open(dbPath)
}

func newResolver(db *database.DB) *trends.Resolver {
	return trends.NewResolver(news.NewSource(cfg.News), db, cfg.NewsTimeout()).
		WithFetchLimit(cfg.News.PageSize)
}

func newGenerator(db *database.DB, resolver *trends.Resolver) *generate.Generator {
	gen := cfg.Generation
	provider := llm.CreateProvider(llm.ProviderConfig{
		Provider:    gen.Provider,
		Model:       gen.Model,
		BaseURL:     gen.BaseURL,
		APIKeyEnv:   gen.APIKeyEnv,
		OllamaURL:   gen.OllamaURL,
		OllamaModel: gen.OllamaModel,
	})
	return generate.NewGenerator(db, db, db, resolver, provider, generate.Options{
		MaxTokens:   gen.MaxTokens,
		Temperature: gen.Temperature,
		Timeout:     cfg.GenerationTimeout(),
	})
}
