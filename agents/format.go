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


package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/citesearch/ai"
	"github.com/poiesic/citesearch/cache"
	"github.com/poiesic/citesearch/core"
)

const defaultFormatTimeout = 15 * time.Second

// Format renders ranked chunks as a clipboard-ready citation block. Any
// failure falls back to RenderBasic, so output is never empty when chunks
// exist.
type Format struct {
	generator   ai.Generator
	store       cache.Store
	cacheTTL    time.Duration
	executor    Executor
	callTimeout time.Duration
	logger      *slog.Logger
}

// FormatOption configures a Format.
type FormatOption func(*Format) error

// WithFormatTimeout sets the formatting call timeout. Default is 15 seconds;
// formatting produces much longer completions than filtering or ranking.
func WithFormatTimeout(timeout time.Duration) FormatOption {
	return func(f *Format) error {
		if timeout <= 0 {
			return errors.New("format timeout must be positive")
		}
		f.callTimeout = timeout
		return nil
	}
}

// WithFormatCache wires a rendered-output cache.
func WithFormatCache(store cache.Store) FormatOption {
	return func(f *Format) error {
		f.store = store
		return nil
	}
}

// WithFormatCacheTTL overrides the rendered-output cache entry lifetime.
func WithFormatCacheTTL(ttl time.Duration) FormatOption {
	return func(f *Format) error {
		if ttl <= 0 {
			return errors.New("format cache TTL must be positive")
		}
		f.cacheTTL = ttl
		return nil
	}
}

// WithFormatResilience routes the formatting call through the executor so
// failures count toward the format stage's circuit breaker.
func WithFormatResilience(exec Executor) FormatOption {
	return func(f *Format) error {
		f.executor = exec
		return nil
	}
}

// WithFormatLogger sets a custom logger.
func WithFormatLogger(logger *slog.Logger) FormatOption {
	return func(f *Format) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFormat creates a format agent.
func NewFormat(generator ai.Generator, opts ...FormatOption) (*Format, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	f := &Format{
		generator:   generator,
		cacheTTL:    cache.TTLFormat,
		callTimeout: defaultFormatTimeout,
		logger:      slog.Default().With("component", "format-agent"),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Run renders the ranked chunks in the query's citation style.
func (f *Format) Run(ctx context.Context, query *core.Query, chunks []core.RankedChunk) (string, error) {
	if len(chunks) == 0 {
		return "No citations found.", nil
	}

	ids := rankedChunkIDs(chunks)

	var key string
	if f.store != nil {
		key = cache.FormatKey(query, ids)
		if data, hit, err := f.store.Get(ctx, key); err == nil && hit {
			return string(data), nil
		}
	}

	f.logger.Info("formatting chunks", "count", len(chunks), "style", query.Style)

	userPrompt, err := formatUserPrompt(chunks)
	if err != nil {
		f.logger.Warn("formatting failed, using basic renderer", "err", err)
		return RenderBasic(chunks, query.IncludeContext), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	response, err := generate(callCtx, f.executor, FormatDependency, f.generator,
		formatSystemPrompt(query.Style, query.IncludeContext), userPrompt,
		ai.GenerateOptions{Temperature: 0.3, MaxTokens: 2000})
	if err != nil || strings.TrimSpace(response) == "" {
		f.logger.Warn("formatting failed, using basic renderer", "err", err)
		return RenderBasic(chunks, query.IncludeContext), nil
	}

	output := wrapOutput(response, len(chunks))

	if f.store != nil {
		if err := f.store.Set(ctx, key, []byte(output), f.cacheTTL); err != nil {
			f.logger.Warn("format cache write failed", "err", err)
		}
	}
	return output, nil
}

const entrySeparator = "──────────────────────────────────────────────────"

// RenderBasic is the deterministic fallback renderer. One entry per chunk:
// rank, source title, relevance stars, optional quoted excerpt, and the
// citation string.
func RenderBasic(chunks []core.RankedChunk, includeContext bool) string {
	var lines []string

	for _, rc := range chunks {
		chunk := rc.Chunk
		lines = append(lines,
			fmt.Sprintf("[%d] %s", rc.Rank, chunk.Source.Title),
			entrySeparator,
			fmt.Sprintf("Relevance: %s (%.2f)", relevanceStars(chunk.RelevanceScore), chunk.RelevanceScore),
			"",
		)

		if includeContext {
			lines = append(lines, fmt.Sprintf("%q", chunk.Text), "")
		}

		lines = append(lines,
			fmt.Sprintf("Citation: %s", chunk.Source.Citation),
			"",
			entrySeparator,
			"",
		)
	}

	return wrapOutput(strings.Join(lines, "\n"), len(chunks))
}

// relevanceStars renders a score in [0,1] as stars out of five.
func relevanceStars(score float64) string {
	filled := int(score * 5)
	if filled < 0 {
		filled = 0
	}
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

const wrapperBar = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

func wrapOutput(content string, count int) string {
	return fmt.Sprintf("%s\nCITATION RESULTS (%d citations)\n%s\n\n%s\n\n%s\nGenerated by citesearch\n%s",
		wrapperBar, count, wrapperBar, strings.TrimSpace(content), wrapperBar, wrapperBar)
}

func rankedChunkIDs(chunks []core.RankedChunk) []string {
	ids := make([]string, len(chunks))
	for i, rc := range chunks {
		ids[i] = rc.Chunk.ID
	}
	return ids
}
