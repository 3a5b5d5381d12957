// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package citesearch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/citesearch/agents"
	"github.com/poiesic/citesearch/ai"
	"github.com/poiesic/citesearch/ai/openai"
	"github.com/poiesic/citesearch/cache"
	cachebadger "github.com/poiesic/citesearch/cache/badger"
	"github.com/poiesic/citesearch/core"
	"github.com/poiesic/citesearch/httpapi"
	"github.com/poiesic/citesearch/pipeline"
	"github.com/poiesic/citesearch/resilience"
	"github.com/poiesic/citesearch/upstream"
)

// Config is the full configuration surface of a Service.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// RequestTimeout bounds one inbound search request end to end.
	RequestTimeout time.Duration

	// SearchURL is the semantic search service base URL.
	SearchURL string

	// SearchAPIKey is the bearer token for the search service. Optional.
	SearchAPIKey string

	// SearchTimeout bounds one search service call.
	SearchTimeout time.Duration

	// GenerativeHost is the OpenAI-compatible endpoint for the agents.
	GenerativeHost string

	// GenerativeModel is the model name used by all three agents.
	GenerativeModel string

	// GenerativeAPIKey authenticates against the generative endpoint.
	GenerativeAPIKey string

	// FilterConcurrency caps parallel per-chunk filter calls.
	FilterConcurrency int

	// FilterTimeout bounds one per-chunk filter call.
	FilterTimeout time.Duration

	// FilterStageTimeout bounds the whole filter stage across all chunks.
	// Zero disables the stage deadline.
	FilterStageTimeout time.Duration

	// RankTimeout bounds the single batch ranking call.
	RankTimeout time.Duration

	// FormatTimeout bounds the single formatting call.
	FormatTimeout time.Duration

	// MaxAttempts caps attempts per remote call, first try included.
	MaxAttempts int

	// BreakerThreshold is the consecutive failures before a circuit opens.
	BreakerThreshold int

	// BreakerCooldown is how long an open circuit rejects before probing.
	BreakerCooldown time.Duration

	// CachePath is the on-disk cache directory. Ignored when CacheInMemory.
	CachePath string

	// CacheInMemory selects the non-persistent cache backend.
	CacheInMemory bool

	// SearchTTL, VerdictTTL, RankTTL, FormatTTL, and ResultTTL set the
	// cache entry lifetimes per pipeline stage.
	SearchTTL  time.Duration
	VerdictTTL time.Duration
	RankTTL    time.Duration
	FormatTTL  time.Duration
	ResultTTL  time.Duration

	// QueryDefaults fills request fields the caller omits.
	QueryDefaults httpapi.QueryDefaults
}

// DefaultConfig returns the standard configuration, pointed at local
// services. Hosted endpoints need the generative API key set.
func DefaultConfig() Config {
	aiDefaults := ai.DefaultConfig()
	return Config{
		ListenAddr:         ":8080",
		RequestTimeout:     30 * time.Second,
		SearchURL:          upstream.DefaultConfig().BaseURL,
		SearchTimeout:      30 * time.Second,
		GenerativeHost:     aiDefaults.Host,
		GenerativeModel:    aiDefaults.Model,
		FilterConcurrency:  20,
		FilterTimeout:      5 * time.Second,
		FilterStageTimeout: 2 * time.Second,
		RankTimeout:        5 * time.Second,
		FormatTimeout:      15 * time.Second,
		MaxAttempts:        3,
		BreakerThreshold:   5,
		BreakerCooldown:    30 * time.Second,
		CachePath:          "citesearch-cache",
		SearchTTL:          cache.TTLSearch,
		VerdictTTL:         cache.TTLVerdict,
		RankTTL:            cache.TTLRank,
		FormatTTL:          cache.TTLFormat,
		ResultTTL:          cache.TTLResult,
		QueryDefaults:      httpapi.DefaultQueryDefaults(),
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.SearchURL == "" {
		return errors.New("search URL is required")
	}
	if c.GenerativeModel == "" {
		return errors.New("generative model is required")
	}
	if c.FilterConcurrency < 1 {
		return errors.New("filter concurrency must be at least 1")
	}
	if c.MaxAttempts < 1 {
		return errors.New("max attempts must be at least 1")
	}
	if c.FilterStageTimeout < 0 {
		return errors.New("filter stage timeout must not be negative")
	}
	for _, d := range []time.Duration{
		c.RequestTimeout, c.SearchTimeout, c.FilterTimeout, c.RankTimeout,
		c.FormatTimeout, c.BreakerCooldown,
		c.SearchTTL, c.VerdictTTL, c.RankTTL, c.FormatTTL, c.ResultTTL,
	} {
		if d <= 0 {
			return errors.New("timeouts and TTLs must be positive")
		}
	}
	if !c.CacheInMemory && c.CachePath == "" {
		return errors.New("cache path is required for the on-disk cache")
	}
	return nil
}

// Service owns the assembled pipeline and its HTTP front end.
type Service struct {
	store       *cachebadger.Store
	filter      *agents.Filter
	coordinator *pipeline.Coordinator
	server      *httpapi.Server
	logger      *slog.Logger
}

// NewService wires the whole pipeline from one configuration: cache backend,
// generative client, circuit breaker, the three agents, the search client,
// the coordinator, and the HTTP server.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Open cache backend
	store, err := cachebadger.Open(cfg.CachePath, cfg.CacheInMemory)
	if err != nil {
		return nil, err
	}

	// Create generative client
	aiOpts := []ai.ConfigOption{
		ai.WithHost(cfg.GenerativeHost),
		ai.WithModel(cfg.GenerativeModel),
	}
	if cfg.GenerativeAPIKey != "" {
		aiOpts = append(aiOpts, ai.WithAPIKey(cfg.GenerativeAPIKey))
	}
	generator, err := openai.NewGenerator(ai.NewConfig(aiOpts...))
	if err != nil {
		store.Close()
		return nil, err
	}

	// One breaker shared across all four dependencies
	executor := resilience.NewExecutor(
		resilience.NewBreaker(resilience.BreakerConfig{
			FailureThreshold: cfg.BreakerThreshold,
			Cooldown:         cfg.BreakerCooldown,
		}),
		resilience.WithMaxAttempts(cfg.MaxAttempts),
	)

	filter, err := agents.NewFilter(generator,
		agents.WithFilterConcurrency(cfg.FilterConcurrency),
		agents.WithFilterTimeout(cfg.FilterTimeout),
		agents.WithFilterStageTimeout(cfg.FilterStageTimeout),
		agents.WithFilterCache(store),
		agents.WithFilterCacheTTL(cfg.VerdictTTL),
		agents.WithFilterResilience(executor),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	rank, err := agents.NewRank(generator,
		agents.WithRankTimeout(cfg.RankTimeout),
		agents.WithRankCache(store),
		agents.WithRankCacheTTL(cfg.RankTTL),
		agents.WithRankResilience(executor),
	)
	if err != nil {
		filter.Release()
		store.Close()
		return nil, err
	}

	format, err := agents.NewFormat(generator,
		agents.WithFormatTimeout(cfg.FormatTimeout),
		agents.WithFormatCache(store),
		agents.WithFormatCacheTTL(cfg.FormatTTL),
		agents.WithFormatResilience(executor),
	)
	if err != nil {
		filter.Release()
		store.Close()
		return nil, err
	}

	searchClient, err := upstream.NewClient(upstream.NewConfig(
		upstream.WithBaseURL(cfg.SearchURL),
		upstream.WithAPIKey(cfg.SearchAPIKey),
		upstream.WithTimeout(cfg.SearchTimeout),
	))
	if err != nil {
		filter.Release()
		store.Close()
		return nil, err
	}

	coordinator, err := pipeline.NewCoordinator(
		searchClient, filter, rank, format, executor,
		pipeline.WithCache(store),
		pipeline.WithCacheTTLs(cfg.SearchTTL, cfg.ResultTTL),
	)
	if err != nil {
		filter.Release()
		store.Close()
		return nil, err
	}

	server, err := httpapi.NewServer(coordinator,
		httpapi.WithAddr(cfg.ListenAddr),
		httpapi.WithRequestTimeout(cfg.RequestTimeout),
		httpapi.WithQueryDefaults(cfg.QueryDefaults),
	)
	if err != nil {
		filter.Release()
		store.Close()
		return nil, err
	}

	return &Service{
		store:       store,
		filter:      filter,
		coordinator: coordinator,
		server:      server,
		logger:      slog.Default().With("component", "service"),
	}, nil
}

// Execute runs one query through the pipeline without going over HTTP.
func (s *Service) Execute(ctx context.Context, query *core.Query) (*core.SearchResult, error) {
	return s.coordinator.Execute(ctx, query)
}

// Coordinator exposes the assembled pipeline coordinator.
func (s *Service) Coordinator() *pipeline.Coordinator {
	return s.coordinator
}

// ListenAndServe serves HTTP until the context is cancelled.
func (s *Service) ListenAndServe(ctx context.Context) error {
	return s.server.ListenAndServe(ctx)
}

func (s *Service) Close() error {
	s.filter.Release()
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing cache store", "err", err)
		return err
	}
	return nil
}
