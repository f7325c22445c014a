// Command taskhive runs the Taskhive HTTP server: a chat endpoint driving the
// manager orchestration loop plus a project/document CRUD surface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/taskhive/taskhive"
	"github.com/taskhive/taskhive/auth"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/httpapi"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/model"
	"github.com/taskhive/taskhive/model/anthropic"
	"github.com/taskhive/taskhive/model/gemini"
	"github.com/taskhive/taskhive/model/openai"
	"github.com/taskhive/taskhive/store"
	"github.com/taskhive/taskhive/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "taskhive:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// Local development keeps API keys in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := logging.New(&logging.Config{
		Level:  parseLogLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, embedder, err := buildModel(ctx, cfg.Model)
	if err != nil {
		return err
	}

	st, closeStore, err := buildStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	hive := taskhive.New(m, func(o *taskhive.Options) {
		o.Embedder = embedder
		o.Store = st
		o.MaxIterations = cfg.Manager.MaxIterations
		o.SimilarityThreshold = cfg.Retrieval.SimilarityThreshold
		o.MaxResults = cfg.Retrieval.MaxResults
		o.MaxContentLength = cfg.Retrieval.MaxContentLength
		o.Logger = logger
	})

	authn, err := buildAuthenticator()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.NewServer(hive, authn, func(o *httpapi.Options) {
			o.Logger = logger
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "provider", cfg.Model.Provider, "store", cfg.Store.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// buildModel constructs the configured provider. Anthropic has no embeddings
// endpoint; when selected, embedding-backed features require a Gemini key so a
// secondary embedder can be attached.
func buildModel(ctx context.Context, cfg config.ModelConfig) (model.Model, model.Embedder, error) {
	switch cfg.Provider {
	case "gemini", "":
		m, err := gemini.New(ctx, func(o *gemini.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.APIKey = cfg.APIKey
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini: %w", err)
		}
		return m, m, nil

	case "openai":
		m := openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
		})
		return m, m, nil

	case "anthropic":
		m := anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.APIKey = cfg.APIKey
		})

		var embedder model.Embedder
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			g, err := gemini.New(ctx, func(o *gemini.Options) { o.APIKey = key })
			if err != nil {
				return nil, nil, fmt.Errorf("init gemini embedder: %w", err)
			}
			embedder = g
		}
		return m, embedder, nil

	default:
		return nil, nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func buildStore(cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "taskhive.db"
		}
		st, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, func() { _ = st.Close() }, nil

	case "memory", "":
		return store.NewInMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// buildAuthenticator reads the development token table from the environment.
func buildAuthenticator() (auth.Authenticator, error) {
	token := os.Getenv("TASKHIVE_DEV_TOKEN")
	if token == "" {
		return nil, errors.New("TASKHIVE_DEV_TOKEN must be set")
	}
	userID := os.Getenv("TASKHIVE_DEV_USER_ID")
	if userID == "" {
		userID = "dev-user"
	}
	return auth.NewStaticAuthenticator(map[string]auth.Identity{
		token: {UserID: userID},
	}), nil
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
