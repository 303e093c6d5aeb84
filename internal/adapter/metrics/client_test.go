package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFetchLatestMetrics(t *testing.T) {
	submissionID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/submissions/"+submissionID.String()+"/metrics", r.URL.Path)
		require.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"views": 1200, "interactions": 34}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "api-key")
	snapshot, err := client.FetchLatestMetrics(context.Background(), submissionID)
	require.NoError(t, err)
	require.Equal(t, int64(1200), snapshot.Views)
	require.Equal(t, int64(34), snapshot.Interactions)
	require.Equal(t, int64(1200+10*34), snapshot.Score())
}

func TestFetchLatestMetricsErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "submission unknown", http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "api-key")
		_, err := client.FetchLatestMetrics(context.Background(), uuid.New())
		require.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"views": "many"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "api-key")
		_, err := client.FetchLatestMetrics(context.Background(), uuid.New())
		require.Error(t, err)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "api-key")
		_, err := client.FetchLatestMetrics(context.Background(), uuid.New())
		require.Error(t, err)
	})
}
