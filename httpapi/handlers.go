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


package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/poiesic/citesearch/core"
	"github.com/poiesic/citesearch/resilience"
)

// searchRequest is the POST /api/search body. Pointer fields distinguish
// "omitted" from zero so defaults apply only when the caller said nothing.
type searchRequest struct {
	Query          string   `json:"query"`
	Context        string   `json:"context,omitempty"`
	MaxResults     *int     `json:"max_results,omitempty"`
	CitationStyle  *string  `json:"citation_style,omitempty"`
	Filter         *bool    `json:"filter,omitempty"`
	MinRelevance   *float64 `json:"min_relevance,omitempty"`
	IncludeContext *bool    `json:"include_context,omitempty"`
}

type searchResponse struct {
	Query            string          `json:"query"`
	ResultsCount     int             `json:"results_count"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	FormattedOutput  string          `json:"formatted_output"`
	DegradedMode     string          `json:"degraded_mode"`
	Chunks           []chunkResponse `json:"chunks"`
}

type chunkResponse struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	Source         sourceResponse `json:"source"`
	RelevanceScore float64        `json:"relevance_score"`
	AgentFiltered  bool           `json:"agent_filtered"`
	AgentRank      int            `json:"agent_rank"`
}

type sourceResponse struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Citation string   `json:"citation"`
	ItemKey  string   `json:"item_key,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

const (
	codeInvalidRequest    = "INVALID_REQUEST"
	codeSearchUnavailable = "SEARCH_UNAVAILABLE"
	codeInternal          = "INTERNAL"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body", err.Error())
		return
	}

	query := s.buildQuery(&req)

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	result, err := s.searcher.Execute(ctx, query)
	if err != nil {
		switch {
		case core.IsValidation(err):
			s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid query", err.Error())
		case errors.Is(err, core.ErrSearchUnavailable):
			s.writeError(w, http.StatusServiceUnavailable, codeSearchUnavailable, "search service unavailable", "")
		default:
			s.logger.Error("search failed", "err", err)
			s.writeError(w, http.StatusInternalServerError, codeInternal, "internal error", "")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, buildResponse(result))
}

func (s *Server) buildQuery(req *searchRequest) *core.Query {
	query := &core.Query{
		Text:           req.Query,
		Context:        req.Context,
		MaxResults:     s.defaults.MaxResults,
		Style:          s.defaults.Style,
		FilterEnabled:  s.defaults.FilterEnabled,
		MinRelevance:   s.defaults.MinRelevance,
		IncludeContext: s.defaults.IncludeContext,
	}
	if req.MaxResults != nil {
		query.MaxResults = *req.MaxResults
	}
	if req.CitationStyle != nil {
		query.Style = core.CitationStyle(*req.CitationStyle)
	}
	if req.Filter != nil {
		query.FilterEnabled = *req.Filter
	}
	if req.MinRelevance != nil {
		query.MinRelevance = *req.MinRelevance
	}
	if req.IncludeContext != nil {
		query.IncludeContext = *req.IncludeContext
	}
	return query
}

func buildResponse(result *core.SearchResult) searchResponse {
	chunks := make([]chunkResponse, len(result.Chunks))
	for i, rc := range result.Chunks {
		chunks[i] = chunkResponse{
			ID:   rc.Chunk.ID,
			Text: rc.Chunk.Text,
			Source: sourceResponse{
				Title:    rc.Chunk.Source.Title,
				Authors:  rc.Chunk.Source.Authors,
				Year:     rc.Chunk.Source.Year,
				Citation: rc.Chunk.Source.Citation,
				ItemKey:  rc.Chunk.Source.ItemKey,
			},
			RelevanceScore: rc.Chunk.RelevanceScore,
			AgentFiltered:  rc.Chunk.AgentFiltered,
			AgentRank:      rc.Rank,
		}
	}
	return searchResponse{
		Query:            result.Query,
		ResultsCount:     result.Count,
		ProcessingTimeMs: result.ElapsedMs,
		FormattedOutput:  result.FormattedOutput,
		DegradedMode:     string(result.Degraded),
		Chunks:           chunks,
	}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string, len(healthDependencies))
	status := "ok"
	for _, dep := range healthDependencies {
		state := s.searcher.State(dep)
		deps[dep] = state.String()
		if state == resilience.StateOpen {
			status = "degraded"
		}
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: status, Dependencies: deps})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("writing response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message, details string) {
	s.writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
