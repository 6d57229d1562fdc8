package services

import (
	"strings"

	"go.uber.org/zap"

	"graphcore/domain/core/entities"
)

// Similarity link scoring weights: tag overlap dominates, content overlap
// refines
const (
	tagSimilarityWeight     = 0.6
	contentSimilarityWeight = 0.4
	minSimilarityWordLength = 3
)

// GenerateSimilarityLinks compares every pair of note nodes and emits a
// similarity link when the combined Jaccard score reaches the threshold.
// This is O(n²) over note nodes and intended to run on demand only, never
// as part of normal ingestion.
func (p *DataProcessor) GenerateSimilarityLinks(nodes []*entities.Node, threshold float64) []*entities.Link {
	notes := make([]*entities.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == entities.NodeTypeNote {
			notes = append(notes, n)
		}
	}

	// Pre-tokenize once per node instead of once per pair
	tagSets := make([]map[string]bool, len(notes))
	wordSets := make([]map[string]bool, len(notes))
	for i, n := range notes {
		tagSets[i] = lowerSet(n.Metadata.Tags)
		wordSets[i] = contentWordSet(n.Metadata.Excerpt)
	}

	var links []*entities.Link
	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			score := tagSimilarityWeight*jaccard(tagSets[i], tagSets[j]) +
				contentSimilarityWeight*jaccard(wordSets[i], wordSets[j])
			if score < threshold {
				continue
			}
			links = append(links, &entities.Link{
				ID:       entities.LinkID(notes[i].ID, notes[j].ID, entities.LinkTypeSimilarity),
				SourceID: notes[i].ID,
				TargetID: notes[j].ID,
				Type:     entities.LinkTypeSimilarity,
				Strength: score,
				Color:    entities.LinkTypeSimilarity.Color(),
			})
		}
	}

	p.logger.Debug("Generated similarity links",
		zap.Int("notes", len(notes)),
		zap.Float64("threshold", threshold),
		zap.Int("links", len(links)),
	)

	return links
}

// jaccard computes |a∩b| / |a∪b|; two empty sets score 0
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// lowerSet lowercases a slice into a membership set
func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[strings.ToLower(v)] = true
		}
	}
	return set
}

// contentWordSet tokenizes text into lowercase words longer than the
// minimum length, with punctuation trimmed
func contentWordSet(text string) map[string]bool {
	words := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		cleaned := strings.Trim(token, ".,!?;:\"'()[]{}#@$%^&*+=<>/\\|`~")
		if len(cleaned) > minSimilarityWordLength {
			words[cleaned] = true
		}
	}
	return words
}
