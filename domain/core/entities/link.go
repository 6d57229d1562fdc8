package entities

import "fmt"

// LinkType defines the type of relationship between two nodes
type LinkType string

const (
	LinkTypeReference  LinkType = "reference"
	LinkTypeTag        LinkType = "tag"
	LinkTypeFolder     LinkType = "folder"
	LinkTypeHierarchy  LinkType = "hierarchy"
	LinkTypeSimilarity LinkType = "similarity"
	LinkTypeCustom     LinkType = "custom"
)

// IsValid reports whether the type is one of the closed set
func (t LinkType) IsValid() bool {
	switch t {
	case LinkTypeReference, LinkTypeTag, LinkTypeFolder,
		LinkTypeHierarchy, LinkTypeSimilarity, LinkTypeCustom:
		return true
	}
	return false
}

// DefaultStrength returns the default weight assigned when a caller does
// not specify one
func (t LinkType) DefaultStrength() float64 {
	switch t {
	case LinkTypeReference:
		return 0.8
	case LinkTypeTag:
		return 0.6
	case LinkTypeFolder:
		return 0.7
	case LinkTypeSimilarity:
		return 0.4
	default:
		return 0.5
	}
}

// Color returns the presentation color associated with the type. Layout and
// clustering never read it.
func (t LinkType) Color() string {
	switch t {
	case LinkTypeReference:
		return "#4dabf7"
	case LinkTypeTag:
		return "#51cf66"
	case LinkTypeFolder:
		return "#ffd43b"
	case LinkTypeHierarchy:
		return "#e599f7"
	case LinkTypeSimilarity:
		return "#ff922b"
	default:
		return "#adb5bd"
	}
}

// Link is a directed, typed, weighted edge between two nodes. Source and
// target are stored as raw node ids only; resolved views are derived
// projections built on demand.
type Link struct {
	ID       string   `json:"id"`
	SourceID string   `json:"source"`
	TargetID string   `json:"target"`
	Type     LinkType `json:"type"`
	Strength float64  `json:"strength"`
	Label    string   `json:"label,omitempty"`
	Color    string   `json:"color,omitempty"`
}

// LinkID derives the deterministic id for a (source, target, type) triple so
// duplicates are detectable without consulting an index
func LinkID(sourceID, targetID string, linkType LinkType) string {
	return fmt.Sprintf("%s-%s-%s", sourceID, targetID, linkType)
}

// Touches reports whether the link has the node as either endpoint
func (l *Link) Touches(nodeID string) bool {
	return l.SourceID == nodeID || l.TargetID == nodeID
}

// OtherEnd returns the opposite endpoint, or "" when the node is not an
// endpoint of this link
func (l *Link) OtherEnd(nodeID string) string {
	switch nodeID {
	case l.SourceID:
		return l.TargetID
	case l.TargetID:
		return l.SourceID
	}
	return ""
}

// Clone returns a copy of the link
func (l *Link) Clone() *Link {
	out := *l
	return &out
}
