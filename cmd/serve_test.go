package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/store"
)

type fakeRunner struct {
	set   *model.RecommendationSet
	err   error
	input model.QueryInput
}

func (f *fakeRunner) Run(_ context.Context, input model.QueryInput) (*model.RecommendationSet, error) {
	f.input = input
	return f.set, f.err
}

type fakeQueryStore struct {
	store.Store

	queries   []model.Query
	getErr    error
	gotFilter store.QueryFilter
}

func (s *fakeQueryStore) ListQueries(_ context.Context, filter store.QueryFilter) ([]model.Query, error) {
	s.gotFilter = filter
	return s.queries, nil
}

func (s *fakeQueryStore) GetQuery(_ context.Context, queryID string) (*model.Query, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for i := range s.queries {
		if s.queries[i].ID == queryID {
			return &s.queries[i], nil
		}
	}
	return nil, eris.Errorf("query %s not found", queryID)
}

func serveRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	handler := newRouter(&fakeRunner{}, &fakeQueryStore{}, []string{"*"})

	rr := serveRequest(t, handler, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	runner := &fakeRunner{set: &model.RecommendationSet{
		TierShown:       model.TierRecommended,
		GuidanceMessage: "solid matches",
	}}
	handler := newRouter(runner, &fakeQueryStore{}, []string{"*"})

	body := `{"search_criteria":{"price_max":400000,"bedrooms_min":3},"priorities":["pool"]}`
	rr := serveRequest(t, handler, http.MethodPost, "/api/analyze", body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 400000.0, runner.input.Criteria.PriceMax)
	assert.Equal(t, []string{"pool"}, runner.input.Priorities)

	var set model.RecommendationSet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &set))
	assert.Equal(t, model.TierRecommended, set.TierShown)
}

func TestAnalyzeEndpoint_BadBody(t *testing.T) {
	handler := newRouter(&fakeRunner{}, &fakeQueryStore{}, []string{"*"})

	rr := serveRequest(t, handler, http.MethodPost, "/api/analyze", "{not json")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestAnalyzeEndpoint_PipelineError(t *testing.T) {
	runner := &fakeRunner{err: eris.New("store unavailable")}
	handler := newRouter(runner, &fakeQueryStore{}, []string{"*"})

	rr := serveRequest(t, handler, http.MethodPost, "/api/analyze", `{}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "analysis failed")
}

func TestHistoryEndpoint(t *testing.T) {
	st := &fakeQueryStore{queries: []model.Query{
		{ID: "q-1", Status: model.QueryStatusComplete},
	}}
	handler := newRouter(&fakeRunner{}, st, []string{"*"})

	rr := serveRequest(t, handler, http.MethodGet, "/api/history?status=complete&limit=5&offset=10", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.QueryStatusComplete, st.gotFilter.Status)
	assert.Equal(t, 5, st.gotFilter.Limit)
	assert.Equal(t, 10, st.gotFilter.Offset)
	assert.Contains(t, rr.Body.String(), `"q-1"`)
}

func TestHistoryEndpoint_DefaultLimit(t *testing.T) {
	st := &fakeQueryStore{}
	handler := newRouter(&fakeRunner{}, st, []string{"*"})

	rr := serveRequest(t, handler, http.MethodGet, "/api/history", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 20, st.gotFilter.Limit)
}

func TestHistoryEndpoint_BadLimit(t *testing.T) {
	handler := newRouter(&fakeRunner{}, &fakeQueryStore{}, []string{"*"})

	rr := serveRequest(t, handler, http.MethodGet, "/api/history?limit=500", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "limit must be")
}

func TestHistoryByIDEndpoint(t *testing.T) {
	st := &fakeQueryStore{queries: []model.Query{
		{ID: "q-7", Status: model.QueryStatusFailed},
	}}
	handler := newRouter(&fakeRunner{}, st, []string{"*"})

	rr := serveRequest(t, handler, http.MethodGet, "/api/history/q-7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"failed"`)

	rr = serveRequest(t, handler, http.MethodGet, "/api/history/q-missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
