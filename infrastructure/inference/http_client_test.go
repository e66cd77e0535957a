package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/pkg/errors"
)

func TestHTTPClient_Infer(t *testing.T) {
	var gotPath string
	var gotBody inferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(inferResponse{Relationships: []ports.RelationshipCandidate{
			{SourceID: "a", TargetID: "b", Type: "depends_on", Weight: 0.8},
		}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	batch := []ports.NodeSummary{{ID: "a", Title: "Alpha"}, {ID: "b", Title: "Beta"}}

	candidates, err := client.Infer(context.Background(), batch)

	require.NoError(t, err)
	assert.Equal(t, "/v1/relationships/infer", gotPath)
	assert.Len(t, gotBody.Nodes, 2)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].SourceID)
}

func TestHTTPClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := client.Infer(context.Background(), []ports.NodeSummary{{ID: "a"}})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())

	_, err := client.Infer(context.Background(), []ports.NodeSummary{{ID: "a"}})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can detect the client
		// disconnect and cancel the request context.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Infer(ctx, []ports.NodeSummary{{ID: "a"}})

	require.Error(t, err)
}
