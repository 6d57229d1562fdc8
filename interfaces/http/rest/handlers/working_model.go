package handlers

import (
	"graphcore/application/services"
	"graphcore/domain/core/aggregates"
)

// workingModel snapshots the store with the link manager's authoritative
// link set and per-node connection counts overlaid. Handlers read through
// this so link mutations made after ingestion are observed by reads,
// layout and clustering.
func workingModel(store *services.GraphStore, links *services.LinkManager) *aggregates.GraphModel {
	model := store.Get()
	model.Links = links.Links()
	links.ApplyConnectionCounts(model)
	return model
}
