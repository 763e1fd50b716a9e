package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/cardbinder/cardbinder-server/internal/normalize"
)

// Params configures a card search query.
type Params struct {
	Query string // User's search text

	// Filters
	SetID    string // Restrict to one set (empty = all sets)
	Statuses []string
	MinYear  int
	MaxYear  int

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "player", "number", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include status facet counts in results
	Highlight     bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Facets ResultFacets `json:"facets,omitempty"`
}

// Hit represents a single matching card.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	SetID      string            `json:"set_id"`
	SetName    string            `json:"set_name,omitempty"`
	Brand      string            `json:"brand,omitempty"`
	CardNumber string            `json:"card_number"`
	PlayerName string            `json:"player_name"`
	Team       string            `json:"team,omitempty"`
	SubsetName string            `json:"subset_name,omitempty"`
	Parallel   string            `json:"parallel,omitempty"`
	Status     string            `json:"status"`
	Year       int               `json:"year,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// ResultFacets contains facet counts.
type ResultFacets struct {
	Statuses []FacetCount `json:"statuses,omitempty"`
	Sets     []FacetCount `json:"sets,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a card search query.
func (s *CardIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("status", bleve.NewFacetRequest("status", 10))
		searchRequest.AddFacet("set_id", bleve.NewFacetRequest("set_id", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("player_name")
		searchRequest.Highlight.AddField("team")
	}

	searchRequest.Fields = []string{
		"id", "set_id", "set_name", "brand", "card_number", "player_name",
		"team", "subset_name", "parallel", "status", "year",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if v, ok := hit.Fields["set_id"].(string); ok {
			searchHit.SetID = v
		}
		if v, ok := hit.Fields["set_name"].(string); ok {
			searchHit.SetName = v
		}
		if v, ok := hit.Fields["brand"].(string); ok {
			searchHit.Brand = v
		}
		if v, ok := hit.Fields["card_number"].(string); ok {
			searchHit.CardNumber = v
		}
		if v, ok := hit.Fields["player_name"].(string); ok {
			searchHit.PlayerName = v
		}
		if v, ok := hit.Fields["team"].(string); ok {
			searchHit.Team = v
		}
		if v, ok := hit.Fields["subset_name"].(string); ok {
			searchHit.SubsetName = v
		}
		if v, ok := hit.Fields["parallel"].(string); ok {
			searchHit.Parallel = v
		}
		if v, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = v
		}
		if v, ok := hit.Fields["year"].(float64); ok {
			searchHit.Year = int(v)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Search strategy: the query text is accent-folded (documents are
// indexed folded) and matched against player name first, then team and
// set name. A card-number term query catches pastes like "90AS-10",
// which the text analyzers would split apart.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if text := normalize.SearchTerm(params.Query); text != "" {
		textQueries := []query.Query{}

		// Player match with highest boost
		playerMatch := bleve.NewMatchQuery(text)
		playerMatch.SetField("player_name")
		playerMatch.SetBoost(3.0)
		textQueries = append(textQueries, playerMatch)

		teamMatch := bleve.NewMatchQuery(text)
		teamMatch.SetField("team")
		teamMatch.SetBoost(1.5)
		textQueries = append(textQueries, teamMatch)

		setMatch := bleve.NewMatchQuery(text)
		setMatch.SetField("set_name")
		setMatch.SetBoost(1.0)
		textQueries = append(textQueries, setMatch)

		// Exact card number ("90as-10" is one keyword token)
		numberTerm := bleve.NewTermQuery(text)
		numberTerm.SetField("card_number")
		numberTerm.SetBoost(4.0)
		textQueries = append(textQueries, numberTerm)

		// Fuzzy matching for typo tolerance on player name
		fuzzyQuery := bleve.NewFuzzyQuery(text)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("player_name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(text) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(text))
			prefixQuery.SetField("player_name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.SetID != "" {
		setQuery := bleve.NewTermQuery(params.SetID)
		setQuery.SetField("set_id")
		queries = append(queries, setQuery)
	}

	// Status filter (OR across statuses)
	if len(params.Statuses) > 0 {
		statusQueries := make([]query.Query, len(params.Statuses))
		for i, status := range params.Statuses {
			sq := bleve.NewTermQuery(status)
			sq.SetField("status")
			statusQueries[i] = sq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(statusQueries...))
	}

	// Year range filter
	if params.MinYear > 0 || params.MaxYear > 0 {
		minYear := float64(params.MinYear)
		maxYear := float64(params.MaxYear)
		if params.MaxYear == 0 {
			maxYear = 3000 // Far future
		}
		rangeQuery := bleve.NewNumericRangeQuery(&minYear, &maxYear)
		rangeQuery.SetField("year")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "player", "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-player_name"})
		} else {
			req.SortBy([]string{"player_name"})
		}
	case "number":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-card_number"})
		} else {
			req.SortBy([]string{"card_number"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"updated_at"})
		} else {
			req.SortBy([]string{"-updated_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) ResultFacets {
	facets := ResultFacets{}

	if statusFacet, ok := result.Facets["status"]; ok {
		for _, term := range statusFacet.Terms.Terms() {
			facets.Statuses = append(facets.Statuses, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if setFacet, ok := result.Facets["set_id"]; ok {
		for _, term := range setFacet.Terms.Terms() {
			facets.Sets = append(facets.Sets, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
