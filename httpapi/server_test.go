package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/citesearch/core"
	"github.com/poiesic/citesearch/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	result    *core.SearchResult
	err       error
	lastQuery *core.Query
	states    map[string]resilience.CircuitState
}

func (f *fakeSearcher) Execute(ctx context.Context, query *core.Query) (*core.SearchResult, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	return f.result, nil
}

func (f *fakeSearcher) State(dependency string) resilience.CircuitState {
	return f.states[dependency]
}

func okResult() *core.SearchResult {
	return &core.SearchResult{
		Query: "bail reform recidivism",
		Count: 1,
		Chunks: []core.RankedChunk{
			{
				Chunk: core.Chunk{
					ID:   "c1",
					Text: "Pretrial detention increases recidivism.",
					Source: core.Source{
						Title:    "Bail Reform Outcomes",
						Authors:  []string{"Smith, J."},
						Year:     2021,
						Citation: "Smith (2021)",
						ItemKey:  "BR2021",
					},
					RelevanceScore: 0.9,
					AgentFiltered:  true,
				},
				Rank: 1,
			},
		},
		FormattedOutput: "formatted",
		ElapsedMs:       42,
		Degraded:        core.DegradedNone,
	}
}

func newTestServer(t *testing.T, searcher Searcher) *httptest.Server {
	t.Helper()
	s, err := NewServer(searcher)
	require.NoError(t, err)
	server := httptest.NewServer(s.logRequests(s.routes()))
	t.Cleanup(server.Close)
	return server
}

func postSearch(t *testing.T, server *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(server.URL+"/api/search", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSearchEndpointSuccess(t *testing.T) {
	searcher := &fakeSearcher{result: okResult()}
	server := newTestServer(t, searcher)

	resp := postSearch(t, server, `{"query": "bail reform recidivism"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body searchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "bail reform recidivism", body.Query)
	assert.Equal(t, 1, body.ResultsCount)
	assert.Equal(t, "formatted", body.FormattedOutput)
	assert.Equal(t, "NONE", body.DegradedMode)
	require.Len(t, body.Chunks, 1)
	assert.Equal(t, "c1", body.Chunks[0].ID)
	assert.Equal(t, "Bail Reform Outcomes", body.Chunks[0].Source.Title)
	assert.Equal(t, 1, body.Chunks[0].AgentRank)
	assert.True(t, body.Chunks[0].AgentFiltered)
}

func TestSearchEndpointAppliesDefaults(t *testing.T) {
	searcher := &fakeSearcher{result: okResult()}
	server := newTestServer(t, searcher)

	resp := postSearch(t, server, `{"query": "bail reform recidivism"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	q := searcher.lastQuery
	require.NotNil(t, q)
	assert.Equal(t, 10, q.MaxResults)
	assert.Equal(t, core.StyleAPA, q.Style)
	assert.True(t, q.FilterEnabled)
	assert.Equal(t, 0.7, q.MinRelevance)
	assert.True(t, q.IncludeContext)
}

func TestSearchEndpointHonorsExplicitFields(t *testing.T) {
	searcher := &fakeSearcher{result: okResult()}
	server := newTestServer(t, searcher)

	resp := postSearch(t, server, `{
		"query": "bail reform recidivism",
		"context": "criminal justice paper",
		"max_results": 5,
		"citation_style": "MLA",
		"filter": false,
		"min_relevance": 0.5,
		"include_context": false
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	q := searcher.lastQuery
	require.NotNil(t, q)
	assert.Equal(t, "criminal justice paper", q.Context)
	assert.Equal(t, 5, q.MaxResults)
	assert.Equal(t, core.StyleMLA, q.Style)
	assert.False(t, q.FilterEnabled)
	assert.Equal(t, 0.5, q.MinRelevance)
	assert.False(t, q.IncludeContext)
}

func TestSearchEndpointValidationError(t *testing.T) {
	searcher := &fakeSearcher{result: okResult()}
	server := newTestServer(t, searcher)

	resp := postSearch(t, server, `{"query": "the a an"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, codeInvalidRequest, envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Message)
}

func TestSearchEndpointMalformedBody(t *testing.T) {
	server := newTestServer(t, &fakeSearcher{result: okResult()})

	resp := postSearch(t, server, `{"query": `)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, codeInvalidRequest, envelope.Error.Code)
}

func TestSearchEndpointSearchUnavailable(t *testing.T) {
	searcher := &fakeSearcher{err: core.ErrSearchUnavailable}
	server := newTestServer(t, searcher)

	resp := postSearch(t, server, `{"query": "bail reform recidivism"}`)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, codeSearchUnavailable, envelope.Error.Code)
}

func TestSearchEndpointInternalError(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("boom")}
	server := newTestServer(t, searcher)

	resp := postSearch(t, server, `{"query": "bail reform recidivism"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, codeInternal, envelope.Error.Code)
}

func TestSearchEndpointRejectsGet(t *testing.T) {
	server := newTestServer(t, &fakeSearcher{result: okResult()})

	resp, err := http.Get(server.URL + "/api/search")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	searcher := &fakeSearcher{
		result: okResult(),
		states: map[string]resilience.CircuitState{},
	}
	server := newTestServer(t, searcher)

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "closed", health.Dependencies["search"])
	assert.Equal(t, "closed", health.Dependencies["filter"])
}

func TestHealthEndpointDegraded(t *testing.T) {
	searcher := &fakeSearcher{
		result: okResult(),
		states: map[string]resilience.CircuitState{"filter": resilience.StateOpen},
	}
	server := newTestServer(t, searcher)

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "open", health.Dependencies["filter"])
}
