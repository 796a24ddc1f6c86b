package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves /api/embed, recording per-request input sizes and
// answering each text with a one-dimensional vector of its rune count so
// order preservation is checkable.
func fakeOllama(t *testing.T, batchSizes *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "embeddinggemma", req.Model)
		*batchSizes = append(*batchSizes, len(req.Input))

		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i, text := range req.Input {
			resp.Embeddings[i] = []float32{float32(len(text))}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOllamaEmbedSingleText(t *testing.T) {
	var batchSizes []int
	srv := fakeOllama(t, &batchSizes)
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	require.NoError(t, err)

	vec, err := engine.Embed(context.Background(), "vibration")
	require.NoError(t, err)
	assert.Equal(t, []float32{9}, vec)
	assert.Equal(t, []int{1}, batchSizes)
}

func TestOllamaEmbedBatchChunksAndPreservesOrder(t *testing.T) {
	var batchSizes []int
	srv := fakeOllama(t, &batchSizes)
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	require.NoError(t, err)

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = string(make([]byte, i+1))
	}

	vectors, err := engine.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 20)
	assert.Equal(t, []int{16, 4}, batchSizes)
	for i, vec := range vectors {
		assert.Equal(t, float32(i+1), vec[0], "text %d", i)
	}
}

func TestOllamaEmbedBatchEmpty(t *testing.T) {
	engine, err := NewOllamaEngine("http://localhost:11434", "")
	require.NoError(t, err)

	vectors, err := engine.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	require.NoError(t, err)

	_, err = engine.Embed(context.Background(), "vibration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	require.NoError(t, err)

	_, err = engine.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 texts")
}
