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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/citesearch"
	"github.com/poiesic/citesearch/core"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "citesearch",
		Usage: "Citation search pipeline over a semantic search service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP search service",
				Action: serveCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "HTTP listen address",
						Value:   ":8080",
						EnvVars: []string{"CITESEARCH_LISTEN"},
					},
					&cli.DurationFlag{
						Name:    "request-timeout",
						Usage:   "Per-request processing deadline",
						Value:   30 * time.Second,
						EnvVars: []string{"CITESEARCH_REQUEST_TIMEOUT"},
					},
					&cli.IntFlag{
						Name:    "default-max-results",
						Usage:   "Max results when a request omits the field",
						Value:   10,
						EnvVars: []string{"CITESEARCH_DEFAULT_MAX_RESULTS"},
					},
					&cli.StringFlag{
						Name:    "default-style",
						Usage:   "Citation style when a request omits the field",
						Value:   "APA",
						EnvVars: []string{"CITESEARCH_DEFAULT_STYLE"},
					},
					&cli.Float64Flag{
						Name:    "default-min-relevance",
						Usage:   "Relevance threshold when a request omits the field",
						Value:   0.7,
						EnvVars: []string{"CITESEARCH_DEFAULT_MIN_RELEVANCE"},
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run one query and print the formatted citations",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(serviceFlags(),
					&cli.IntFlag{
						Name:    "max-results",
						Usage:   "Maximum citations to return",
						Value:   10,
						EnvVars: []string{"CITESEARCH_MAX_RESULTS"},
					},
					&cli.StringFlag{
						Name:    "style",
						Usage:   "Citation style (APA, MLA, Chicago, Bluebook)",
						Value:   "APA",
						EnvVars: []string{"CITESEARCH_STYLE"},
					},
					&cli.StringFlag{
						Name:  "context",
						Usage: "Optional research context for relevance filtering",
					},
					&cli.BoolFlag{
						Name:  "no-filter",
						Usage: "Skip the relevance filtering stage",
					},
					&cli.Float64Flag{
						Name:    "min-relevance",
						Usage:   "Relevance confidence threshold (0.0-1.0)",
						Value:   0.7,
						EnvVars: []string{"CITESEARCH_MIN_RELEVANCE"},
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// serviceFlags are the pipeline flags shared by serve and search.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "search-url",
			Usage:   "Semantic search service base URL",
			Value:   "http://localhost:8000",
			EnvVars: []string{"CITESEARCH_SEARCH_URL"},
		},
		&cli.StringFlag{
			Name:    "search-api-key",
			Usage:   "Bearer token for the search service",
			EnvVars: []string{"CITESEARCH_SEARCH_API_KEY"},
		},
		&cli.DurationFlag{
			Name:    "search-timeout",
			Usage:   "Search service call timeout",
			Value:   30 * time.Second,
			EnvVars: []string{"CITESEARCH_SEARCH_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "generative-host",
			Usage:   "OpenAI-compatible endpoint for the agents",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"CITESEARCH_GENERATIVE_HOST"},
		},
		&cli.StringFlag{
			Name:     "generative-model",
			Usage:    "Model name used by the filter, rank, and format agents",
			Required: true,
			EnvVars:  []string{"CITESEARCH_GENERATIVE_MODEL"},
		},
		&cli.StringFlag{
			Name:    "generative-api-key",
			Usage:   "API key for the generative endpoint",
			EnvVars: []string{"CITESEARCH_GENERATIVE_API_KEY"},
		},
		&cli.IntFlag{
			Name:    "filter-concurrency",
			Usage:   "Parallel per-chunk filter calls",
			Value:   20,
			EnvVars: []string{"CITESEARCH_FILTER_CONCURRENCY"},
		},
		&cli.DurationFlag{
			Name:    "filter-stage-timeout",
			Usage:   "Deadline for the whole filter stage, 0 to disable",
			Value:   2 * time.Second,
			EnvVars: []string{"CITESEARCH_FILTER_STAGE_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    "agent-timeout",
			Usage:   "Per-call timeout for the filter and rank agents",
			Value:   5 * time.Second,
			EnvVars: []string{"CITESEARCH_AGENT_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "max-attempts",
			Usage:   "Attempts per remote call, first try included",
			Value:   3,
			EnvVars: []string{"CITESEARCH_MAX_ATTEMPTS"},
		},
		&cli.IntFlag{
			Name:    "breaker-threshold",
			Usage:   "Consecutive failures before a circuit opens",
			Value:   5,
			EnvVars: []string{"CITESEARCH_BREAKER_THRESHOLD"},
		},
		&cli.DurationFlag{
			Name:    "breaker-cooldown",
			Usage:   "How long an open circuit rejects before probing",
			Value:   30 * time.Second,
			EnvVars: []string{"CITESEARCH_BREAKER_COOLDOWN"},
		},
		&cli.StringFlag{
			Name:    "cache-path",
			Usage:   "On-disk cache directory",
			Value:   "citesearch-cache",
			EnvVars: []string{"CITESEARCH_CACHE_PATH"},
		},
		&cli.BoolFlag{
			Name:    "cache-in-memory",
			Usage:   "Use a non-persistent in-memory cache",
			EnvVars: []string{"CITESEARCH_CACHE_IN_MEMORY"},
		},
		&cli.DurationFlag{
			Name:    "search-ttl",
			Usage:   "Cache lifetime for search results",
			Value:   time.Hour,
			EnvVars: []string{"CITESEARCH_SEARCH_TTL"},
		},
		&cli.DurationFlag{
			Name:    "verdict-ttl",
			Usage:   "Cache lifetime for filter verdicts",
			Value:   6 * time.Hour,
			EnvVars: []string{"CITESEARCH_VERDICT_TTL"},
		},
		&cli.DurationFlag{
			Name:    "rank-ttl",
			Usage:   "Cache lifetime for rank orderings",
			Value:   6 * time.Hour,
			EnvVars: []string{"CITESEARCH_RANK_TTL"},
		},
		&cli.DurationFlag{
			Name:    "format-ttl",
			Usage:   "Cache lifetime for formatted output",
			Value:   time.Hour,
			EnvVars: []string{"CITESEARCH_FORMAT_TTL"},
		},
		&cli.DurationFlag{
			Name:    "result-ttl",
			Usage:   "Cache lifetime for whole results",
			Value:   time.Hour,
			EnvVars: []string{"CITESEARCH_RESULT_TTL"},
		},
	}
}

func buildConfig(c *cli.Context) citesearch.Config {
	cfg := citesearch.DefaultConfig()
	cfg.SearchURL = c.String("search-url")
	cfg.SearchAPIKey = c.String("search-api-key")
	cfg.SearchTimeout = c.Duration("search-timeout")
	cfg.GenerativeHost = c.String("generative-host")
	cfg.GenerativeModel = c.String("generative-model")
	cfg.GenerativeAPIKey = c.String("generative-api-key")
	cfg.FilterConcurrency = c.Int("filter-concurrency")
	cfg.FilterTimeout = c.Duration("agent-timeout")
	cfg.FilterStageTimeout = c.Duration("filter-stage-timeout")
	cfg.RankTimeout = c.Duration("agent-timeout")
	cfg.MaxAttempts = c.Int("max-attempts")
	cfg.BreakerThreshold = c.Int("breaker-threshold")
	cfg.BreakerCooldown = c.Duration("breaker-cooldown")
	cfg.CachePath = c.String("cache-path")
	cfg.CacheInMemory = c.Bool("cache-in-memory")
	cfg.SearchTTL = c.Duration("search-ttl")
	cfg.VerdictTTL = c.Duration("verdict-ttl")
	cfg.RankTTL = c.Duration("rank-ttl")
	cfg.FormatTTL = c.Duration("format-ttl")
	cfg.ResultTTL = c.Duration("result-ttl")
	return cfg
}

func serveCommand(c *cli.Context) error {
	cfg := buildConfig(c)
	cfg.ListenAddr = c.String("listen")
	cfg.RequestTimeout = c.Duration("request-timeout")
	cfg.QueryDefaults.MaxResults = c.Int("default-max-results")
	cfg.QueryDefaults.Style = core.CitationStyle(c.String("default-style"))
	cfg.QueryDefaults.MinRelevance = c.Float64("default-min-relevance")

	svc, err := citesearch.NewService(cfg)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return svc.ListenAndServe(ctx)
}

func searchCommand(c *cli.Context) error {
	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if queryText == "" {
		return fmt.Errorf("query text is required")
	}

	svc, err := citesearch.NewService(buildConfig(c))
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer svc.Close()

	query := &core.Query{
		Text:           queryText,
		Context:        c.String("context"),
		MaxResults:     c.Int("max-results"),
		Style:          core.CitationStyle(c.String("style")),
		FilterEnabled:  !c.Bool("no-filter"),
		MinRelevance:   c.Float64("min-relevance"),
		IncludeContext: true,
	}

	result, err := svc.Execute(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if result.Degraded != core.DegradedNone {
		fmt.Fprintf(os.Stderr, "degraded mode: %s\n", result.Degraded)
	}
	fmt.Fprintf(os.Stderr, "%d citations in %dms\n\n", result.Count, result.ElapsedMs)
	fmt.Println(result.FormattedOutput)

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
