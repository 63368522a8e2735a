package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fernwehlabs/sift/internal/classifier"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	snapshot := filepath.Join(t.TempDir(), "memory.json")
	svc, err := classifier.NewService(classifier.DefaultConfig(), snapshot, zap.NewNop())
	require.NoError(t, err)

	srv, err := NewServer(svc, zap.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echoContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, zap.NewNop(), nil)
	assert.Error(t, err)

	snapshot := filepath.Join(t.TempDir(), "memory.json")
	svc, err := classifier.NewService(classifier.DefaultConfig(), snapshot, zap.NewNop())
	require.NoError(t, err)
	_, err = NewServer(svc, nil, nil)
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleScore(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/score", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp.Score, 0.0)
	assert.Less(t, resp.Score, 1.0)
	assert.Equal(t, resp.Score >= 0.7, resp.Banned)
}

func TestHandleScore_MissingText(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/score", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLabel(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/label",
		`{"text":"eat your veggies","safe":true,"category":"phrases"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifier.LabelResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Safe)
}

func TestHandleLabel_UnknownCategory(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/label",
		`{"text":"anything","safe":true,"category":"jokes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDecide(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/decide",
		`{"text":"puppies are great","category":"phrases"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifier.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, resp.Score < 0.7, resp.Safe)
}

func TestHandleRespond_EmptyStore(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/respond",
		`{"prompt":"anything","category":"game_ideas"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RespondResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Match)
}

func TestHandleItems(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/items/words", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ItemsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "words", resp.Category)
	assert.NotNil(t, resp.Items)
}

func TestHandleItems_UnknownCategory(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/items/jokes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSnapshot(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/snapshot", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
