package services

import (
	"sort"

	"graphcore/domain/core/entities"

	"graphcore/domain/core/aggregates"
)

const (
	maxSuggestions           = 10
	sameTypeConfidence       = 0.6
	suggestionTypeTag        = entities.LinkTypeTag
	suggestionTypeSimilarity = entities.LinkTypeSimilarity
)

// LinkSuggestion proposes connecting an unconnected node, ranked by
// confidence
type LinkSuggestion struct {
	TargetID   string            `json:"target_id"`
	Type       entities.LinkType `json:"type"`
	Confidence float64           `json:"confidence"`
	Reason     string            `json:"reason"`
}

// GetSuggestions proposes up to ten unconnected nodes for the given node:
// shared-tag overlap produces tag suggestions scored by the overlap ratio,
// and a matching node type produces a similarity suggestion at fixed
// confidence. Nodes already connected to the source are excluded.
func (m *LinkManager) GetSuggestions(nodeID string, model *aggregates.GraphModel) []LinkSuggestion {
	source := model.NodeByID(nodeID)
	if source == nil {
		return []LinkSuggestion{}
	}

	connected := make(map[string]bool)
	for _, neighbor := range m.GetConnectedNodes(nodeID) {
		connected[neighbor] = true
	}

	sourceTags := lowerSet(source.Metadata.Tags)

	suggestions := []LinkSuggestion{}
	for _, candidate := range model.Nodes {
		if candidate.ID == nodeID || connected[candidate.ID] {
			continue
		}

		if overlap := jaccard(sourceTags, lowerSet(candidate.Metadata.Tags)); overlap > 0 {
			suggestions = append(suggestions, LinkSuggestion{
				TargetID:   candidate.ID,
				Type:       suggestionTypeTag,
				Confidence: overlap,
				Reason:     "shared tags",
			})
			continue
		}

		if candidate.Type == source.Type {
			suggestions = append(suggestions, LinkSuggestion{
				TargetID:   candidate.ID,
				Type:       suggestionTypeSimilarity,
				Confidence: sameTypeConfidence,
				Reason:     "same node type",
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].TargetID < suggestions[j].TargetID
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
