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


package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/citesearch/core"
)

const searchMode = "chunks"

// Client talks to the cite-assist semantic search service.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a search client for the given configuration.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     slog.Default().With("component", "search-client"),
	}, nil
}

type searchRequest struct {
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	SearchMode string `json:"search_mode"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	ChunkID   string      `json:"chunk_id"`
	Text      string      `json:"text"`
	Score     float64     `json:"score"`
	Metadata  hitMetadata `json:"metadata"`
	SourceKey string      `json:"source_key"`
}

type hitMetadata struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Citation string   `json:"citation"`
}

// Search queries the search service and returns candidate chunks ordered by
// similarity. Transport failures and 5xx responses are classified transient,
// 4xx responses permanent.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.Chunk, error) {
	payload, err := json.Marshal(searchRequest{
		Query:      query,
		Limit:      limit,
		SearchMode: searchMode,
	})
	if err != nil {
		return nil, err
	}

	reqURL := c.config.BaseURL + "/api/v1/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	c.logger.Debug("searching", "query", query, "limit", limit)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("search request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("search service returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, core.Transient(err)
		}
		return nil, core.Permanent(err)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, core.Permanent(fmt.Errorf("parsing search response: %w", err))
	}

	chunks := make([]core.Chunk, 0, len(sr.Results))
	for _, hit := range sr.Results {
		title := hit.Metadata.Title
		if title == "" {
			title = "Unknown"
		}
		authors := hit.Metadata.Authors
		if len(authors) == 0 {
			authors = nil
		}
		chunks = append(chunks, core.Chunk{
			ID:   hit.ChunkID,
			Text: hit.Text,
			Source: core.Source{
				Title:    title,
				Authors:  authors,
				Year:     hit.Metadata.Year,
				Citation: hit.Metadata.Citation,
				ItemKey:  hit.SourceKey,
			},
			SimilarityScore: hit.Score,
			RelevanceScore:  hit.Score,
		})
	}

	c.logger.Debug("search complete", "query", query, "results", len(chunks))
	return chunks, nil
}

// defaultTimeout bounds a single search round trip.
const defaultTimeout = 30 * time.Second
