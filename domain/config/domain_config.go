package config

// DomainConfig holds business rules for the graph core. Engines read it,
// never mutate it.
type DomainConfig struct {
	MaxNodes            int
	MaxLinksPerNode     int
	MaxSuggestions      int
	SimilarityThreshold float64
	MinWordLength       int
}

// DefaultDomainConfig returns the limits used when no configuration is
// supplied
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodes:            10000,
		MaxLinksPerNode:     500,
		MaxSuggestions:      10,
		SimilarityThreshold: 0.3,
		MinWordLength:       3,
	}
}

// ClampWeight constrains a link weight into [0,1]
func ClampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
