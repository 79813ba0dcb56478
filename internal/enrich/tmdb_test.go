package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "pt-BR", r.URL.Query().Get("language"))
		if r.URL.Query().Get("query") == "nada" {
			_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":14160,"title":"Up: Altas Aventuras","release_date":"2009-05-28","overview":"Carl...","poster_path":"/up.jpg","vote_average":7.9}]}`))
	}))
	defer server.Close()

	client := NewTMDB(TMDBConfig{BaseURL: server.URL, APIKey: "secret"})

	match, ok, err := client.SearchMovie(context.Background(), "Up")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 14160, match.ID)
	assert.Equal(t, "2009", match.Year)
	assert.Equal(t, DefaultTMDBImageBase+"/up.jpg", match.PosterURL)
	assert.InDelta(t, 7.9, match.Rating, 0.001)

	_, ok, err = client.SearchMovie(context.Background(), "nada")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchMovieBearerTokenAndErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a.b.c", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	}))
	defer server.Close()

	client := NewTMDB(TMDBConfig{BaseURL: server.URL, APIKey: "a.b.c"})
	_, ok, err := client.SearchMovie(context.Background(), "Up")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}
