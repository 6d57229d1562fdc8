package layout

import "time"

// Algorithm selects the positioning strategy. The set is closed; dispatch
// happens through a single switch at the engine boundary.
type Algorithm string

const (
	AlgorithmForce        Algorithm = "force"
	AlgorithmHierarchical Algorithm = "hierarchical"
	AlgorithmCircular     Algorithm = "circular"
	AlgorithmRadial       Algorithm = "radial"
	AlgorithmGrid         Algorithm = "grid"
)

// IsValid reports whether the algorithm is one of the closed set
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmForce, AlgorithmHierarchical, AlgorithmCircular,
		AlgorithmRadial, AlgorithmGrid:
		return true
	}
	return false
}

// Direction orients hierarchical layouts
type Direction string

const (
	DirectionTopDown   Direction = "top-down"
	DirectionBottomUp  Direction = "bottom-up"
	DirectionLeftRight Direction = "left-right"
	DirectionRightLeft Direction = "right-left"
)

// Easing names the interpolation curve sampled during layout transitions
type Easing string

const (
	EasingLinear    Easing = "linear"
	EasingIn        Easing = "ease-in"
	EasingOut       Easing = "ease-out"
	EasingInOut     Easing = "ease-in-out"
	EasingBounce    Easing = "bounce"
)

// Config holds every layout tunable. Engines only read it; the random seed
// is explicit so force-directed runs are reproducible.
type Config struct {
	Algorithm Algorithm `json:"algorithm"`

	// Viewport bounds; all final positions satisfy 0 <= x <= Width,
	// 0 <= y <= Height
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Force-directed
	ChargeStrength  float64 `json:"charge_strength"`
	LinkDistance    float64 `json:"link_distance"`
	CenterStrength  float64 `json:"center_strength"`
	CollisionRadius float64 `json:"collision_radius"`
	Iterations      int     `json:"iterations"`
	AlphaMin        float64 `json:"alpha_min"`
	AlphaDecay      float64 `json:"alpha_decay"`
	Seed            int64   `json:"seed"`

	// Hierarchical
	Direction    Direction `json:"direction"`
	LayerSpacing float64   `json:"layer_spacing"`

	// Circular
	Radius       float64 `json:"radius"`
	SortByDegree bool    `json:"sort_by_degree"`

	// Radial
	CenterNodeID string  `json:"center_node_id"`
	RingSpacing  float64 `json:"ring_spacing"`

	// Grid
	Padding         float64 `json:"padding"`
	SortByAdjacency bool    `json:"sort_by_adjacency"`

	// Transition
	TransitionDuration time.Duration `json:"transition_duration"`
	FrameInterval      time.Duration `json:"frame_interval"`
	TransitionEasing   Easing        `json:"transition_easing"`
}

// DefaultConfig returns the tunables used when callers leave fields zero
func DefaultConfig(algorithm Algorithm) Config {
	return Config{
		Algorithm:          algorithm,
		Width:              1200,
		Height:             800,
		ChargeStrength:     800,
		LinkDistance:       120,
		CenterStrength:     0.02,
		CollisionRadius:    24,
		Iterations:         300,
		AlphaMin:           0.001,
		AlphaDecay:         0.02,
		Direction:          DirectionTopDown,
		LayerSpacing:       120,
		RingSpacing:        110,
		Padding:            40,
		TransitionDuration: 500 * time.Millisecond,
		FrameInterval:      16 * time.Millisecond,
		TransitionEasing:   EasingInOut,
	}
}

// normalized fills zero-valued fields with defaults and clamps out-of-range
// numeric configuration rather than letting it produce NaN positions
func (c Config) normalized() Config {
	def := DefaultConfig(c.Algorithm)

	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.ChargeStrength <= 0 {
		c.ChargeStrength = def.ChargeStrength
	}
	if c.LinkDistance <= 0 {
		c.LinkDistance = def.LinkDistance
	}
	if c.CenterStrength <= 0 || c.CenterStrength > 1 {
		c.CenterStrength = def.CenterStrength
	}
	if c.CollisionRadius <= 0 {
		c.CollisionRadius = def.CollisionRadius
	}
	if c.Iterations <= 0 {
		c.Iterations = def.Iterations
	}
	if c.AlphaMin <= 0 || c.AlphaMin >= 1 {
		c.AlphaMin = def.AlphaMin
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		c.AlphaDecay = def.AlphaDecay
	}
	switch c.Direction {
	case DirectionTopDown, DirectionBottomUp, DirectionLeftRight, DirectionRightLeft:
	default:
		c.Direction = def.Direction
	}
	if c.LayerSpacing <= 0 {
		c.LayerSpacing = def.LayerSpacing
	}
	if c.RingSpacing <= 0 {
		c.RingSpacing = def.RingSpacing
	}
	if c.Padding < 0 {
		c.Padding = def.Padding
	}
	if c.TransitionDuration <= 0 {
		c.TransitionDuration = def.TransitionDuration
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = def.FrameInterval
	}
	switch c.TransitionEasing {
	case EasingLinear, EasingIn, EasingOut, EasingInOut, EasingBounce:
	default:
		c.TransitionEasing = def.TransitionEasing
	}

	return c
}
