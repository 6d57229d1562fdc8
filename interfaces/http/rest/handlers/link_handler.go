package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graphcore/application/services"
	"graphcore/domain/core/entities"
	"graphcore/infrastructure/observability"
	"graphcore/pkg/common"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/pkg/utils"
)

// LinkHandler handles link CRUD, suggestions and network analysis
type LinkHandler struct {
	store   *services.GraphStore
	links   *services.LinkManager
	metrics *observability.Collector
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(
	store *services.GraphStore,
	links *services.LinkManager,
	metrics *observability.Collector,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		store:   store,
		links:   links,
		metrics: metrics,
		errors:  errors,
		logger:  logger,
	}
}

// createLinkBody is the request body for creating a link
type createLinkBody struct {
	SourceID      string   `json:"source" validate:"required"`
	TargetID      string   `json:"target" validate:"required"`
	Type          string   `json:"type" validate:"required,oneof=reference tag folder hierarchy similarity custom"`
	Strength      *float64 `json:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Label         string   `json:"label,omitempty"`
	Bidirectional bool     `json:"bidirectional,omitempty"`
}

// CreateLink handles POST /links
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var body createLinkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	link, err := h.links.CreateLink(services.CreateLinkRequest{
		SourceID:      body.SourceID,
		TargetID:      body.TargetID,
		Type:          entities.LinkType(body.Type),
		Strength:      body.Strength,
		Label:         body.Label,
		Bidirectional: body.Bidirectional,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.LinksCreated.Inc()
		if body.Bidirectional {
			h.metrics.LinksCreated.Inc()
		}
	}

	common.RespondJSON(w, http.StatusCreated, link)
}

// GetLink handles GET /links/{linkID}
func (h *LinkHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")
	link := h.links.GetLink(linkID)
	if link == nil {
		h.errors.Handle(w, r, pkgerrors.NewLinkNotFound(linkID))
		return
	}
	common.RespondJSON(w, http.StatusOK, link)
}

// ListLinks handles GET /links
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.links.Links())
}

// updateLinkBody is the request body for updating a link
type updateLinkBody struct {
	Type     *string  `json:"type,omitempty" validate:"omitempty,oneof=reference tag folder hierarchy similarity custom"`
	Strength *float64 `json:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Label    *string  `json:"label,omitempty"`
}

// UpdateLink handles PUT /links/{linkID}
func (h *LinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")

	var body updateLinkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	req := services.UpdateLinkRequest{ID: linkID, Strength: body.Strength, Label: body.Label}
	if body.Type != nil {
		t := entities.LinkType(*body.Type)
		req.Type = &t
	}

	link, err := h.links.UpdateLink(req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, link)
}

// DeleteLink handles DELETE /links/{linkID}
func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")
	if !h.links.DeleteLink(linkID) {
		h.errors.Handle(w, r, pkgerrors.NewLinkNotFound(linkID))
		return
	}
	if h.metrics != nil {
		h.metrics.LinksDeleted.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNodeLinks handles GET /graph/nodes/{nodeID}/links
func (h *LinkHandler) GetNodeLinks(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"links":     h.links.GetNodeLinks(nodeID),
		"neighbors": h.links.GetConnectedNodes(nodeID),
	})
}

// GetSuggestions handles GET /graph/nodes/{nodeID}/suggestions
func (h *LinkHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	model := h.store.Get()
	if !model.HasNode(nodeID) {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("node "+nodeID))
		return
	}
	common.RespondJSON(w, http.StatusOK, h.links.GetSuggestions(nodeID, model))
}

// AnalyzeNetwork handles GET /links/analysis
func (h *LinkHandler) AnalyzeNetwork(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.links.AnalyzeNetwork(h.store.Get()))
}

// FindPath handles GET /links/path?from=&to=
func (h *LinkHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		common.RespondError(w, http.StatusBadRequest, "MISSING_PARAM", "Both from and to are required")
		return
	}

	path, err := h.links.FindPath(h.store.Get(), from, to)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"path": path,
		"hops": len(path) - 1,
	})
}

// GetNeighborhood handles GET /graph/nodes/{nodeID}/neighborhood?depth=
func (h *LinkHandler) GetNeighborhood(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	depth := 1
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			common.RespondError(w, http.StatusBadRequest, "INVALID_PARAM", "depth must be a positive integer")
			return
		}
		depth = parsed
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"node":  nodeID,
		"depth": depth,
		"nodes": h.links.ConnectedWithin(nodeID, depth),
	})
}
