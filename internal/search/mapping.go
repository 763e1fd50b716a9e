package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for card documents.
//
// The mapping is designed with these priorities:
//  1. Fast search on player names and teams without English stemming
//     (these are proper nouns, not prose)
//  2. Exact keyword matching for card numbers, sets, and status filters
//  3. Numeric range queries on year
//  4. Term vectors on player and team for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Names are proper nouns: the simple analyzer tokenizes and
	// lowercases without stemming ("Storys" must not match "Story").
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Player name - primary search target
	playerFieldMapping := bleve.NewTextFieldMapping()
	playerFieldMapping.Analyzer = simple.Name
	playerFieldMapping.Store = true
	playerFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("player_name", playerFieldMapping)

	// Team - searchable
	teamFieldMapping := bleve.NewTextFieldMapping()
	teamFieldMapping.Analyzer = simple.Name
	teamFieldMapping.Store = true
	teamFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("team", teamFieldMapping)

	// Set name - searchable so "prizm" narrows to those sets
	setNameFieldMapping := bleve.NewTextFieldMapping()
	setNameFieldMapping.Analyzer = simple.Name
	setNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("set_name", setNameFieldMapping)

	// Subset name - searchable
	subsetFieldMapping := bleve.NewTextFieldMapping()
	subsetFieldMapping.Analyzer = simple.Name
	subsetFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("subset_name", subsetFieldMapping)

	// Brand - searchable, no stemming
	brandFieldMapping := bleve.NewTextFieldMapping()
	brandFieldMapping.Analyzer = simple.Name
	brandFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("brand", brandFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Card number - keyword so "90AS-10" stays one token
	numberFieldMapping := bleve.NewTextFieldMapping()
	numberFieldMapping.Analyzer = keyword.Name
	numberFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("card_number", numberFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Set ID - for filtering to one set
	setIDFieldMapping := bleve.NewTextFieldMapping()
	setIDFieldMapping.Analyzer = keyword.Name
	setIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("set_id", setIDFieldMapping)

	// Status - for need/pending/owned filtering and faceting
	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	statusFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	// Parallel - keyword keeps compound names intact ("Sky Blue")
	parallelFieldMapping := bleve.NewTextFieldMapping()
	parallelFieldMapping.Analyzer = keyword.Name
	parallelFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("parallel", parallelFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
