package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"graphcore/application/services"
	"graphcore/domain/core/entities"
	"graphcore/domain/services/layout"
	"graphcore/infrastructure/observability"
	"graphcore/pkg/common"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/pkg/utils"
)

// LayoutHandler handles layout computation requests
type LayoutHandler struct {
	store    *services.GraphStore
	links    *services.LinkManager
	engine   *layout.Engine
	metrics  *observability.Collector
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
	defaults layout.Config
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(
	store *services.GraphStore,
	links *services.LinkManager,
	engine *layout.Engine,
	metrics *observability.Collector,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
	defaults layout.Config,
) *LayoutHandler {
	return &LayoutHandler{
		store:    store,
		links:    links,
		engine:   engine,
		metrics:  metrics,
		errors:   errors,
		logger:   logger,
		defaults: defaults,
	}
}

// applyLayoutBody overlays per-request parameters on the configured layout
// defaults. Nil fields keep the defaults.
type applyLayoutBody struct {
	Algorithm    string   `json:"algorithm" validate:"required"`
	Width        *float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height       *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
	Seed         *int64   `json:"seed,omitempty"`
	Direction    *string  `json:"direction,omitempty" validate:"omitempty,oneof=top-down bottom-up left-right right-left"`
	CenterNodeID *string  `json:"center_node_id,omitempty"`
	SortByDegree *bool    `json:"sort_by_degree,omitempty"`

	// Animate runs the change as a timed transition instead of a jump
	Animate    bool `json:"animate,omitempty"`
	DurationMs *int `json:"duration_ms,omitempty" validate:"omitempty,gt=0"`
}

func (h *LayoutHandler) buildConfig(body applyLayoutBody) layout.Config {
	cfg := h.defaults
	cfg.Algorithm = layout.Algorithm(body.Algorithm)
	if body.Width != nil {
		cfg.Width = *body.Width
	}
	if body.Height != nil {
		cfg.Height = *body.Height
	}
	if body.Seed != nil {
		cfg.Seed = *body.Seed
	}
	if body.Direction != nil {
		cfg.Direction = layout.Direction(*body.Direction)
	}
	if body.CenterNodeID != nil {
		cfg.CenterNodeID = *body.CenterNodeID
	}
	if body.SortByDegree != nil {
		cfg.SortByDegree = *body.SortByDegree
		cfg.SortByAdjacency = *body.SortByDegree
	}
	if body.DurationMs != nil {
		cfg.TransitionDuration = time.Duration(*body.DurationMs) * time.Millisecond
	}
	return cfg
}

// ApplyLayout handles POST /layout/apply. Computed positions are written
// back onto the working model.
func (h *LayoutHandler) ApplyLayout(w http.ResponseWriter, r *http.Request) {
	var body applyLayoutBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cfg := h.buildConfig(body)
	model := workingModel(h.store, h.links)

	start := time.Now()
	var nodes []*entities.Node
	var err error
	if body.Animate {
		nodes, err = h.engine.TransitionTo(r.Context(), model.Nodes, model.Links, cfg, nil)
	} else {
		nodes, err = h.engine.Apply(model.Nodes, model.Links, cfg)
	}
	if h.metrics != nil {
		h.metrics.ObserveLayout(body.Algorithm, time.Since(start), err)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.store.SetPositions(nodes)

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"algorithm": cfg.Algorithm,
		"nodes":     nodes,
		"metrics":   h.engine.CalculateMetrics(nodes, model.Links),
	})
}

// SuggestLayout handles GET /layout/suggest
func (h *LayoutHandler) SuggestLayout(w http.ResponseWriter, r *http.Request) {
	model := workingModel(h.store, h.links)

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"algorithm": h.engine.SuggestAlgorithm(model.Nodes, model.Links),
	})
}

// LayoutMetrics handles GET /layout/metrics over the current positions
func (h *LayoutHandler) LayoutMetrics(w http.ResponseWriter, r *http.Request) {
	model := workingModel(h.store, h.links)
	common.RespondJSON(w, http.StatusOK, h.engine.CalculateMetrics(model.Nodes, model.Links))
}
