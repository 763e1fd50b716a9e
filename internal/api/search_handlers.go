package api

import (
	"net/http"
	"strings"

	"github.com/cardbinder/cardbinder-server/internal/http/response"
	"github.com/cardbinder/cardbinder-server/internal/search"
)

const maxSearchLimit = 100

// handleSearchCards runs a full-text card search across all sets.
//
// Query parameters: q (search text), set_id, status (comma-separated),
// year_min, year_max, sort (relevance|player|number|recent), order,
// limit, offset.
func (s *Server) handleSearchCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := search.DefaultParams()
	params.Query = q.Get("q")
	params.SetID = q.Get("set_id")

	if statuses := q.Get("status"); statuses != "" {
		for _, status := range strings.Split(statuses, ",") {
			if status = strings.TrimSpace(status); status != "" {
				params.Statuses = append(params.Statuses, status)
			}
		}
	}

	if minYear, ok := queryInt(r, "year_min"); ok {
		params.MinYear = minYear
	}
	if maxYear, ok := queryInt(r, "year_max"); ok {
		params.MaxYear = maxYear
	}

	if sortBy := q.Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := q.Get("order"); order != "" {
		params.SortOrder = order
	}

	if limit, ok := queryInt(r, "limit"); ok && limit > 0 {
		params.Limit = min(limit, maxSearchLimit)
	}
	if offset, ok := queryInt(r, "offset"); ok && offset >= 0 {
		params.Offset = offset
	}

	result, err := s.searchService.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleReindex rebuilds the search index from the store.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	indexed, err := s.searchService.Reindex(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"indexed": indexed}, s.logger)
}
