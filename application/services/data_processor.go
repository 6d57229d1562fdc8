package services

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
)

// RawData is the loosely-typed record bundle handed to the processor by the
// presentation layer. Field shapes are caller-defined; only stable ids are
// required per entity.
type RawData struct {
	Pages         []RawPage  `json:"pages,omitempty"`
	Blocks        []RawBlock `json:"blocks,omitempty"`
	Tags          []RawTag   `json:"tags,omitempty"`
	Links         []RawLink  `json:"links,omitempty"`
	IncludeBlocks bool       `json:"include_blocks,omitempty"`
}

// RawPage is a note/page record
type RawPage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	FolderID  string    `json:"folder_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// RawBlock is a block-level record inside a page
type RawBlock struct {
	ID            string   `json:"id"`
	PageID        string   `json:"page_id"`
	ParentBlockID string   `json:"parent_block_id,omitempty"`
	Content       string   `json:"content,omitempty"`
	References    []string `json:"references,omitempty"`
}

// RawTag is a tag record
type RawTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawLink is an explicit link record
type RawLink struct {
	ID       string  `json:"id,omitempty"`
	SourceID string  `json:"source"`
	TargetID string  `json:"target"`
	Type     string  `json:"type,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// Derived link weights
const (
	weightPageTag        = 0.5
	weightBlockPage      = 0.8
	weightBlockParent    = 0.7
	weightBlockReference = 1.0
)

// DataProcessor normalizes heterogeneous raw records into a uniform
// GraphModel: one node per page, tag and (optionally) block, explicit links
// when both endpoints exist, plus derived tag, hierarchy and reference links.
type DataProcessor struct {
	logger *zap.Logger
}

// NewDataProcessor creates a new data processor
func NewDataProcessor(logger *zap.Logger) *DataProcessor {
	return &DataProcessor{logger: logger}
}

// ProcessData builds a GraphModel from raw records. Links whose endpoints
// are missing are silently dropped, not an error. Connection counts are
// computed once by a single pass after all links are built.
func (p *DataProcessor) ProcessData(raw RawData) (*aggregates.GraphModel, error) {
	model := aggregates.NewGraphModel()

	// page name -> node id, case-insensitive, for reference resolution
	pagesByTitle := make(map[string]string, len(raw.Pages))

	for _, page := range raw.Pages {
		if page.ID == "" {
			continue
		}
		node := p.pageNode(page)
		model.Nodes = append(model.Nodes, node)
		if page.Title != "" {
			pagesByTitle[strings.ToLower(page.Title)] = page.ID
		}
	}

	// tag name -> node id, case-insensitive
	tagsByName := make(map[string]string, len(raw.Tags))
	for _, tag := range raw.Tags {
		if tag.ID == "" || tag.Name == "" {
			continue
		}
		model.Nodes = append(model.Nodes, &entities.Node{
			ID:    tag.ID,
			Label: tag.Name,
			Type:  entities.NodeTypeTag,
			Size:  6,
		})
		tagsByName[strings.ToLower(tag.Name)] = tag.ID
	}

	if raw.IncludeBlocks {
		for _, block := range raw.Blocks {
			if block.ID == "" {
				continue
			}
			model.Nodes = append(model.Nodes, p.blockNode(block))
		}
	}

	exists := model.NodeSet()

	// Explicit links, kept only when both endpoints made it into the model.
	for _, rl := range raw.Links {
		link := p.explicitLink(rl, exists)
		if link != nil {
			model.Links = append(model.Links, link)
		}
	}

	// Derived page<->tag association links. Tags a page declares without a
	// raw tag record get a synthesized tag node on first sight.
	for _, page := range raw.Pages {
		for _, tagName := range page.Tags {
			key := strings.ToLower(tagName)
			if key == "" {
				continue
			}
			tagID, ok := tagsByName[key]
			if !ok {
				tagID = "tag-" + key
				tagsByName[key] = tagID
				node := &entities.Node{
					ID:    tagID,
					Label: tagName,
					Type:  entities.NodeTypeTag,
					Size:  6,
				}
				model.Nodes = append(model.Nodes, node)
				exists[tagID] = node
			}
			model.Links = append(model.Links, &entities.Link{
				ID:       entities.LinkID(page.ID, tagID, entities.LinkTypeTag),
				SourceID: page.ID,
				TargetID: tagID,
				Type:     entities.LinkTypeTag,
				Strength: weightPageTag,
				Color:    entities.LinkTypeTag.Color(),
			})
		}
	}

	if raw.IncludeBlocks {
		p.deriveBlockLinks(model, raw.Blocks, exists, pagesByTitle)
	}

	model.Links = dedupeLinks(model.Links)
	model.ComputeConnectionCounts()

	p.logger.Debug("Processed raw data into graph model",
		zap.Int("pages", len(raw.Pages)),
		zap.Int("blocks", len(raw.Blocks)),
		zap.Int("tags", len(raw.Tags)),
		zap.Int("nodes", len(model.Nodes)),
		zap.Int("links", len(model.Links)),
	)

	return model, nil
}

// pageNode builds a note node, sizing it by content length
func (p *DataProcessor) pageNode(page RawPage) *entities.Node {
	size := 8 + float64(len(page.Content))/100
	if size > 20 {
		size = 20
	}
	return &entities.Node{
		ID:    page.ID,
		Label: page.Title,
		Type:  entities.NodeTypeNote,
		Size:  size,
		Metadata: entities.Metadata{
			Tags:      append([]string(nil), page.Tags...),
			Excerpt:   excerpt(page.Content, 120),
			CreatedAt: page.CreatedAt,
			UpdatedAt: page.UpdatedAt,
		},
	}
}

// blockNode builds a note node for a block
func (p *DataProcessor) blockNode(block RawBlock) *entities.Node {
	return &entities.Node{
		ID:    block.ID,
		Label: excerpt(block.Content, 40),
		Type:  entities.NodeTypeNote,
		Size:  5,
		Metadata: entities.Metadata{
			Excerpt: excerpt(block.Content, 120),
			Custom:  map[string]interface{}{"page_id": block.PageID},
		},
	}
}

// explicitLink validates a raw link record; returns nil when an endpoint is
// missing from the model
func (p *DataProcessor) explicitLink(rl RawLink, exists map[string]*entities.Node) *entities.Link {
	if exists[rl.SourceID] == nil || exists[rl.TargetID] == nil || rl.SourceID == rl.TargetID {
		return nil
	}

	linkType := entities.LinkType(rl.Type)
	if !linkType.IsValid() {
		linkType = entities.LinkTypeReference
	}

	weight := rl.Weight
	if weight <= 0 || weight > 1 {
		weight = linkType.DefaultStrength()
	}

	id := rl.ID
	if id == "" {
		id = entities.LinkID(rl.SourceID, rl.TargetID, linkType)
	}

	return &entities.Link{
		ID:       id,
		SourceID: rl.SourceID,
		TargetID: rl.TargetID,
		Type:     linkType,
		Strength: weight,
		Label:    rl.Label,
		Color:    linkType.Color(),
	}
}

// deriveBlockLinks synthesizes page->block and parent->block hierarchy links
// plus reference links resolved by case-insensitive title match. Hierarchy
// links always run parent to child, matching how hierarchical layout reads
// them.
func (p *DataProcessor) deriveBlockLinks(
	model *aggregates.GraphModel,
	blocks []RawBlock,
	exists map[string]*entities.Node,
	pagesByTitle map[string]string,
) {
	for _, block := range blocks {
		if exists[block.ID] == nil {
			continue
		}

		if exists[block.PageID] != nil {
			model.Links = append(model.Links, &entities.Link{
				ID:       entities.LinkID(block.PageID, block.ID, entities.LinkTypeHierarchy),
				SourceID: block.PageID,
				TargetID: block.ID,
				Type:     entities.LinkTypeHierarchy,
				Strength: weightBlockPage,
				Color:    entities.LinkTypeHierarchy.Color(),
			})
		}

		if block.ParentBlockID != "" && exists[block.ParentBlockID] != nil {
			model.Links = append(model.Links, &entities.Link{
				ID:       entities.LinkID(block.ParentBlockID, block.ID, entities.LinkTypeHierarchy),
				SourceID: block.ParentBlockID,
				TargetID: block.ID,
				Type:     entities.LinkTypeHierarchy,
				Strength: weightBlockParent,
				Color:    entities.LinkTypeHierarchy.Color(),
			})
		}

		for _, ref := range block.References {
			pageID, ok := pagesByTitle[strings.ToLower(ref)]
			if !ok || pageID == block.ID {
				continue
			}
			model.Links = append(model.Links, &entities.Link{
				ID:       entities.LinkID(block.ID, pageID, entities.LinkTypeReference),
				SourceID: block.ID,
				TargetID: pageID,
				Type:     entities.LinkTypeReference,
				Strength: weightBlockReference,
				Color:    entities.LinkTypeReference.Color(),
			})
		}
	}
}

// dedupeLinks drops repeated (source, target, type) triples, keeping the
// first occurrence
func dedupeLinks(links []*entities.Link) []*entities.Link {
	seen := make(map[string]bool, len(links))
	out := links[:0]
	for _, l := range links {
		key := fmt.Sprintf("%s|%s|%s", l.SourceID, l.TargetID, l.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

// excerpt truncates text for display labels
func excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}
