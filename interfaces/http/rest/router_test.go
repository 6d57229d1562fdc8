package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphcore/application/services"
	"graphcore/domain/services/clustering"
	"graphcore/domain/services/layout"
	"graphcore/infrastructure/config"
	"graphcore/infrastructure/di"
	"graphcore/infrastructure/messaging/membus"
	pkgerrors "graphcore/pkg/errors"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerAddress:       ":0",
		Environment:         "development",
		LogLevel:            "info",
		MaxNodes:            1000,
		MaxLinksPerNode:     100,
		SimilarityThreshold: 0.3,
		LayoutWidth:         800,
		LayoutHeight:        600,
		MinClusterSize:      2,
		MaxClusters:         10,
	}

	logger := zap.NewNop()
	bus := membus.New(logger)
	links := services.NewLinkManager(bus, logger)
	t.Cleanup(links.Close)

	container := &di.Container{
		Config:           cfg,
		Logger:           logger,
		Bus:              bus,
		Store:            services.NewGraphStore(cfg.Domain(), bus, logger),
		Processor:        services.NewDataProcessor(logger),
		LinkManager:      links,
		LayoutEngine:     layout.NewEngine(logger),
		ClusteringEngine: clustering.NewEngine(logger),
		ErrorHandler:     pkgerrors.NewErrorHandler(logger, true),
	}

	server := httptest.NewServer(NewRouter(container).Setup())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestRouter_HealthAndReady(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRouter_ProcessThenQuery(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/graph/process", map[string]interface{}{
		"pages": []map[string]interface{}{
			{"id": "p1", "title": "Alpha", "tags": []string{"golang"}},
			{"id": "p2", "title": "Beta", "tags": []string{"golang"}},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/v1/links/path?from=p1&to=p2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	assert.Equal(t, []interface{}{"p1", "tag-golang", "p2"}, data["path"])
	assert.Equal(t, 2.0, data["hops"])
}

func TestRouter_LinkLifecycle(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/links/", map[string]interface{}{
		"source": "a",
		"target": "b",
		"type":   "reference",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("duplicate is a conflict", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/links/", map[string]interface{}{
			"source": "a",
			"target": "b",
			"type":   "reference",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid type fails validation", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/links/", map[string]interface{}{
			"source": "a",
			"target": "b",
			"type":   "wormhole",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete then miss", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/links/a-b-reference", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, err = http.Get(server.URL + "/api/v1/links/a-b-reference")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouter_LayoutApply(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/graph/process", map[string]interface{}{
		"pages": []map[string]interface{}{
			{"id": "p1", "title": "Alpha"},
			{"id": "p2", "title": "Beta"},
			{"id": "p3", "title": "Gamma"},
		},
	})
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/v1/layout/apply", map[string]interface{}{
		"algorithm": "circular",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	assert.Equal(t, "circular", data["algorithm"])
	assert.Len(t, data["nodes"], 3)

	t.Run("unknown algorithm", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/layout/apply", map[string]interface{}{
			"algorithm": "spiral",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouter_Clustering(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/graph/process", map[string]interface{}{
		"pages": []map[string]interface{}{
			{"id": "p1", "title": "Alpha", "tags": []string{"go"}},
			{"id": "p2", "title": "Beta", "tags": []string{"go"}},
			{"id": "p3", "title": "Gamma", "tags": []string{"rust"}},
			{"id": "p4", "title": "Delta", "tags": []string{"rust"}},
		},
	})
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/v1/clusters", map[string]interface{}{
		"algorithm": "connectivity",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.NotEmpty(t, data["clusters"])
}

func TestRouter_GraphReflectsLinkMutations(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/graph/process", map[string]interface{}{
		"pages": []map[string]interface{}{
			{"id": "p1", "title": "Alpha"},
			{"id": "p2", "title": "Beta"},
		},
	})
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/v1/links/", map[string]interface{}{
		"source": "p1", "target": "p2", "type": "reference",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("graph read includes the new link", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/graph")
		require.NoError(t, err)
		data := decodeData(t, resp)
		require.Len(t, data["links"], 1)
		link := data["links"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "p1-p2-reference", link["id"])

		for _, n := range data["nodes"].([]interface{}) {
			assert.Equal(t, 1.0, n.(map[string]interface{})["connections"])
		}
	})

	t.Run("clustering observes the new link", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/clusters", map[string]interface{}{
			"algorithm": "connectivity",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := decodeData(t, resp)
		require.Len(t, data["clusters"], 1)
		cluster := data["clusters"].([]interface{})[0].(map[string]interface{})
		assert.ElementsMatch(t, []interface{}{"p1", "p2"}, cluster["node_ids"])
	})

	t.Run("graph read drops the deleted link", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/links/p1-p2-reference", nil)
		deleteResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		deleteResp.Body.Close()
		require.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

		resp, err := http.Get(server.URL + "/api/v1/graph")
		require.NoError(t, err)
		data := decodeData(t, resp)
		assert.Empty(t, data["links"])
	})
}

func TestRouter_NodeRemovalCascades(t *testing.T) {
	server := newTestServer(t)

	for _, id := range []string{"a", "b"} {
		resp := postJSON(t, server.URL+"/api/v1/graph/nodes/", map[string]interface{}{
			"id":    id,
			"label": id,
			"type":  "note",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := postJSON(t, server.URL+"/api/v1/links/", map[string]interface{}{
		"source": "a", "target": "b", "type": "reference",
	})
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/graph/nodes/a", nil)
	deleteResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	deleteResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

	resp, err = http.Get(server.URL + "/api/v1/links/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var envelope struct {
		Data []interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Empty(t, envelope.Data)
}
