package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rolodex/internal/cache"
	"github.com/agenthands/rolodex/internal/extraction"
	"github.com/agenthands/rolodex/internal/fastpath"
	"github.com/agenthands/rolodex/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type scriptedLLM struct {
	response string
	genErr   error
	availErr error
}

func (s *scriptedLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	if s.genErr != nil {
		return "", s.genErr
	}
	return s.response, nil
}

func (s *scriptedLLM) Available(ctx context.Context) error {
	return s.availErr
}

func newTestServer(llmClient *scriptedLLM, store *cache.Store) *Server {
	extractor := extraction.New(llmClient, fastpath.New(nil), cacheOrNil(store), extraction.Params{MaxAttempts: 1}, nil)
	return New(extractor, store, "test_extractions", nil)
}

func cacheOrNil(store *cache.Store) extraction.SimilarityCache {
	if store == nil {
		return nil
	}
	return store
}

func postExtract(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, ExtractionResponse) {
	t.Helper()
	r := srv.SetupRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp ExtractionResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestExtractRejectsMissingText(t *testing.T) {
	srv := newTestServer(&scriptedLLM{}, nil)

	w, _ := postExtract(t, srv, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postExtract(t, srv, `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractFound(t *testing.T) {
	llm := &scriptedLLM{response: `{"client_name": "Jane Doe", "phone_numbers": ["2395550123"], "notes": null}`}
	srv := newTestServer(llm, nil)

	w, resp := postExtract(t, srv, `{"text": "Jane Doe, 239-555-0123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "found", resp.Status)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Jane Doe", resp.Data.ClientName)
	assert.False(t, resp.CacheHit)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)
}

func TestExtractModelDown(t *testing.T) {
	llm := &scriptedLLM{availErr: errors.New("connection refused")}
	srv := newTestServer(llm, nil)

	w, resp := postExtract(t, srv, `{"text": "nothing extractable in here"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "not running")
	assert.Nil(t, resp.Data)
}

func TestExtractNothingParseable(t *testing.T) {
	llm := &scriptedLLM{response: "I am sorry, I cannot help with that."}
	srv := newTestServer(llm, nil)

	w, resp := postExtract(t, srv, `{"text": "nothing extractable in here"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "not_found", resp.Status)
	assert.Nil(t, resp.Data)
}

func TestExtractPreservesInputTextVerbatim(t *testing.T) {
	llm := &scriptedLLM{response: `{"client_name": "Jane Doe", "phone_numbers": [], "notes": null}`}
	srv := newTestServer(llm, nil)

	_, resp := postExtract(t, srv, `{"text": "Jane\n\n   Doe"}`)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Jane\n\n   Doe", resp.Data.RawText)
}

func TestHealthDegradedWhenModelDown(t *testing.T) {
	srv := newTestServer(&scriptedLLM{availErr: errors.New("down")}, nil)
	r := srv.SetupRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.ModelStatus)
	assert.Equal(t, "disabled", resp.CacheStatus)
}

func TestHealthHealthy(t *testing.T) {
	srv := newTestServer(&scriptedLLM{}, nil)
	r := srv.SetupRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.ModelStatus)
}

func TestStatsWithCacheDisabled(t *testing.T) {
	srv := newTestServer(&scriptedLLM{}, nil)
	r := srv.SetupRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Stats   struct {
			TotalExtractions int    `json:"total_extractions"`
			Caching          string `json:"caching"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "disabled", resp.Stats.Caching)
}

func TestStatsWithCache(t *testing.T) {
	store, err := cache.NewInMemory("test_extractions", staticEmbedder{}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Add(context.Background(), "jane wants a quote", &model.ExtractedContact{ClientName: "Jane"}))

	srv := newTestServer(&scriptedLLM{}, store)
	r := srv.SetupRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	var resp struct {
		Stats struct {
			TotalExtractions int    `json:"total_extractions"`
			CollectionName   string `json:"collection_name"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.TotalExtractions)
	assert.Equal(t, "test_extractions", resp.Stats.CollectionName)
}

type staticEmbedder struct{}

func (staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestRoot(t *testing.T) {
	srv := newTestServer(&scriptedLLM{}, nil)
	r := srv.SetupRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rolodex")
}
