package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graphcore/application/services"
	"graphcore/domain/core/entities"
	"graphcore/infrastructure/observability"
	"graphcore/pkg/common"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/pkg/utils"
)

// GraphHandler handles graph-level HTTP requests: processing raw data into
// the working model, filtering, similarity detection and node lifecycle
type GraphHandler struct {
	store     *services.GraphStore
	processor *services.DataProcessor
	links     *services.LinkManager
	metrics   *observability.Collector
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger

	similarityThreshold float64
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	store *services.GraphStore,
	processor *services.DataProcessor,
	links *services.LinkManager,
	metrics *observability.Collector,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
	similarityThreshold float64,
) *GraphHandler {
	return &GraphHandler{
		store:               store,
		processor:           processor,
		links:               links,
		metrics:             metrics,
		errors:              errors,
		logger:              logger,
		similarityThreshold: similarityThreshold,
	}
}

// ProcessData handles POST /graph/process. The resulting model replaces the
// working graph and its links seed the link manager.
func (h *GraphHandler) ProcessData(w http.ResponseWriter, r *http.Request) {
	var raw services.RawData
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	model, err := h.processor.ProcessData(raw)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.store.Set(model)
	ingested := h.links.Ingest(model)
	if h.metrics != nil {
		h.metrics.NodesProcessed.Add(float64(len(model.Nodes)))
	}

	h.logger.Info("Processed raw data",
		zap.Int("nodes", len(model.Nodes)),
		zap.Int("links", ingested),
	)

	common.RespondJSON(w, http.StatusOK, model)
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, workingModel(h.store, h.links))
}

// FilterGraph handles POST /graph/filter. Filtering is a read: the working
// model is left untouched.
func (h *GraphHandler) FilterGraph(w http.ResponseWriter, r *http.Request) {
	var filter services.GraphFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	model := workingModel(h.store, h.links)
	common.RespondJSON(w, http.StatusOK, h.processor.FilterData(model, filter))
}

// similarityRequest tunes a similarity detection run
type similarityRequest struct {
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Apply     bool     `json:"apply,omitempty"`
}

// DetectSimilarity handles POST /graph/similarity. With apply set, detected
// links are created through the link manager; otherwise they are only
// returned.
func (h *GraphHandler) DetectSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	threshold := h.similarityThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	model := h.store.Get()
	detected := h.processor.GenerateSimilarityLinks(model.Nodes, threshold)

	created := 0
	if req.Apply {
		for _, link := range detected {
			strength := link.Strength
			_, err := h.links.CreateLink(services.CreateLinkRequest{
				SourceID: link.SourceID,
				TargetID: link.TargetID,
				Type:     entities.LinkTypeSimilarity,
				Strength: &strength,
			})
			if err == nil {
				created++
			} else if !pkgerrors.IsCode(err, pkgerrors.CodeDuplicateLink) {
				h.errors.Handle(w, r, err)
				return
			}
		}
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"links":     detected,
		"threshold": threshold,
		"created":   created,
	})
}

// addNodeRequest is the request body for adding a node
type addNodeRequest struct {
	ID    string   `json:"id" validate:"required"`
	Label string   `json:"label" validate:"required"`
	Type  string   `json:"type" validate:"required,oneof=note tag folder reference-link"`
	Tags  []string `json:"tags,omitempty"`
}

// AddNode handles POST /graph/nodes
func (h *GraphHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	node := &entities.Node{
		ID:    req.ID,
		Label: req.Label,
		Type:  entities.NodeType(req.Type),
		Size:  8,
	}
	node.Metadata.Tags = req.Tags

	if err := h.store.AddNode(node); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, node)
}

// RemoveNode handles DELETE /graph/nodes/{nodeID}. Links touching the node
// are cascade-deleted through the node-removed event.
func (h *GraphHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		common.RespondError(w, http.StatusBadRequest, "MISSING_PARAM", "Node ID is required")
		return
	}

	if !h.store.RemoveNode(nodeID) {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("node "+nodeID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
