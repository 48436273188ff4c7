// Package modflow provides a top-level convenience entry point for creating
// a moderation orchestrator with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/modflow"
//
//	orch, err := modflow.New(modflow.WithHiveAPIKey("hk_..."))
//	orch, err := modflow.New(modflow.WithProvider(myProvider), modflow.WithDatabase("sqlite", "mod.db"))
//
// This is a thin wrapper around the moderation and store packages; services
// that need Redis caching, Mongo archiving, or metrics should assemble
// [moderation.Options] directly instead.
package modflow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/moderation"
)

// Option configures the orchestrator created by [New].
type Option func(*settings)

type settings struct {
	provider   classify.Provider
	classifier classify.Config
	database   store.DatabaseConfig
	webhookURL string
	logger     *zap.Logger
}

// WithProvider sets a pre-built classification provider.
func WithProvider(p classify.Provider) Option {
	return func(s *settings) { s.provider = p }
}

// WithHiveAPIKey creates a Hive provider with the given API key.
func WithHiveAPIKey(key string) Option {
	return func(s *settings) { s.classifier.APIKey = key }
}

// WithClassifier overrides the full classifier config used when no
// pre-built provider is given.
func WithClassifier(cfg classify.Config) Option {
	return func(s *settings) { s.classifier = cfg }
}

// WithDatabase sets the database driver and DSN. Defaults to a local
// sqlite file "modflow.db".
func WithDatabase(driver, dsn string) Option {
	return func(s *settings) {
		s.database.Driver = driver
		s.database.DSN = dsn
	}
}

// WithWebhookURL sets the callback address handed to the provider for
// async video tasks. Empty means polling only.
func WithWebhookURL(url string) Option {
	return func(s *settings) { s.webhookURL = url }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New creates a [moderation.Orchestrator] with minimal configuration.
// At minimum a provider must be available, either via [WithProvider] or
// via an API key for the default Hive provider.
func New(opts ...Option) (*moderation.Orchestrator, error) {
	s := settings{
		classifier: classify.DefaultConfig(),
		database:   store.DefaultDatabaseConfig(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.provider == nil {
		if s.classifier.APIKey == "" {
			return nil, fmt.Errorf("modflow: a provider or classifier API key is required")
		}
		s.provider = classify.NewHiveProvider(s.classifier)
	}

	db, err := store.Open(s.database, s.logger)
	if err != nil {
		return nil, fmt.Errorf("modflow: open database: %w", err)
	}
	st := store.New(db, s.logger)
	if err := st.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("modflow: migrate: %w", err)
	}

	return moderation.NewOrchestrator(moderation.Options{
		Provider:   s.provider,
		Store:      st,
		Logger:     s.logger,
		WebhookURL: s.webhookURL,
	}), nil
}
