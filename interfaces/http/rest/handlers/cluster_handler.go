package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"graphcore/application/services"
	"graphcore/domain/services/clustering"
	"graphcore/infrastructure/observability"
	"graphcore/pkg/common"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/pkg/utils"
)

// ClusterHandler handles clustering requests
type ClusterHandler struct {
	store    *services.GraphStore
	links    *services.LinkManager
	engine   *clustering.Engine
	metrics  *observability.Collector
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
	defaults clustering.Config
}

// NewClusterHandler creates a new cluster handler
func NewClusterHandler(
	store *services.GraphStore,
	links *services.LinkManager,
	engine *clustering.Engine,
	metrics *observability.Collector,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
	defaults clustering.Config,
) *ClusterHandler {
	return &ClusterHandler{
		store:    store,
		links:    links,
		engine:   engine,
		metrics:  metrics,
		errors:   errors,
		logger:   logger,
		defaults: defaults,
	}
}

// performClusteringBody overlays per-request parameters on the configured
// clustering defaults
type performClusteringBody struct {
	Algorithm      string `json:"algorithm" validate:"required"`
	MinClusterSize *int   `json:"min_cluster_size,omitempty" validate:"omitempty,gte=1"`
	MaxClusters    *int   `json:"max_clusters,omitempty" validate:"omitempty,gte=1"`
	K              *int   `json:"k,omitempty" validate:"omitempty,gte=1"`
	Seed           *int64 `json:"seed,omitempty"`
}

// PerformClustering handles POST /clusters
func (h *ClusterHandler) PerformClustering(w http.ResponseWriter, r *http.Request) {
	var body performClusteringBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cfg := h.defaults
	cfg.Algorithm = clustering.Algorithm(body.Algorithm)
	if body.MinClusterSize != nil {
		cfg.MinClusterSize = *body.MinClusterSize
	}
	if body.MaxClusters != nil {
		cfg.MaxClusters = *body.MaxClusters
	}
	if body.K != nil {
		cfg.K = *body.K
	}
	if body.Seed != nil {
		cfg.Seed = *body.Seed
	}

	model := workingModel(h.store, h.links)

	start := time.Now()
	result, err := h.engine.Perform(model.Nodes, model.Links, cfg)
	if h.metrics != nil {
		h.metrics.ObserveClustering(body.Algorithm, time.Since(start), err)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
