// Package layout positions graph nodes. Every algorithm is a pure function
// of its inputs: nodes and links are treated as read-only snapshots and the
// engine returns repositioned copies. Identical inputs and configuration
// produce identical output; force-directed randomness comes only from the
// explicit seed in the configuration.
package layout

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"graphcore/domain/core/entities"
	pkgerrors "graphcore/pkg/errors"
)

// Engine computes node positions
type Engine struct {
	logger       *zap.Logger
	transitionOn atomic.Bool
}

// NewEngine creates a layout engine
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Apply positions the nodes with the configured algorithm and returns
// repositioned copies. An unknown algorithm fails with a typed error; there
// is no silent default.
func (e *Engine) Apply(nodes []*entities.Node, links []*entities.Link, cfg Config) ([]*entities.Node, error) {
	if !cfg.Algorithm.IsValid() {
		return nil, pkgerrors.NewUnsupportedAlgorithm("layout", string(cfg.Algorithm))
	}

	cfg = cfg.normalized()
	out := cloneNodes(nodes)
	if len(out) == 0 {
		return out, nil
	}

	start := time.Now()
	switch cfg.Algorithm {
	case AlgorithmForce:
		e.applyForce(out, links, cfg)
	case AlgorithmHierarchical:
		e.applyHierarchical(out, links, cfg)
	case AlgorithmCircular:
		e.applyCircular(out, cfg)
	case AlgorithmRadial:
		e.applyRadial(out, links, cfg)
	case AlgorithmGrid:
		e.applyGrid(out, links, cfg)
	}

	e.logger.Debug("Applied layout",
		zap.String("algorithm", string(cfg.Algorithm)),
		zap.Int("nodes", len(out)),
		zap.Int("links", len(links)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

// cloneNodes copies the node slice so callers' snapshots stay untouched
func cloneNodes(nodes []*entities.Node) []*entities.Node {
	out := make([]*entities.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// adjacency builds an undirected neighbor map restricted to the given node
// set
func adjacency(nodes []*entities.Node, links []*entities.Link) map[string][]string {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	adj := make(map[string][]string, len(nodes))
	for _, l := range links {
		if !present[l.SourceID] || !present[l.TargetID] {
			continue
		}
		adj[l.SourceID] = append(adj[l.SourceID], l.TargetID)
		adj[l.TargetID] = append(adj[l.TargetID], l.SourceID)
	}
	return adj
}

// degrees counts links touching each node, restricted to the node set
func degrees(nodes []*entities.Node, links []*entities.Link) map[string]int {
	out := make(map[string]int, len(nodes))
	for id, neighbors := range adjacency(nodes, links) {
		out[id] = len(neighbors)
	}
	return out
}
