package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-server/internal/checklist"
	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/http/response"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

type createSetRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Year          int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Brand         string `json:"brand" validate:"max=100"`
	ProductLine   string `json:"product_line" validate:"max=100"`
	SetType       string `json:"set_type" validate:"required,oneof=base insert rainbow multi_year_insert"`
	InsertSetName string `json:"insert_set_name" validate:"max=100"`
	Notes         string `json:"notes" validate:"max=2000"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

// handleCreateSet creates a new card set.
func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	var req createSetRequest
	if !s.decode(w, r, &req) {
		return
	}

	set, err := s.setService.CreateSet(r.Context(), service.NewSet{
		Name:          req.Name,
		Year:          req.Year,
		Brand:         req.Brand,
		ProductLine:   req.ProductLine,
		SetType:       domain.SetType(req.SetType),
		InsertSetName: req.InsertSetName,
		Notes:         req.Notes,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, set, s.logger)
}

// handleListSets returns sets with completion stats, filtered by the
// brand, year, and type query parameters.
func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	filter := service.SetFilter{
		Brand:   r.URL.Query().Get("brand"),
		SetType: domain.SetType(r.URL.Query().Get("type")),
	}
	if year, ok := queryInt(r, "year"); ok {
		filter.Year = year
	}

	summaries, err := s.setService.ListSets(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, summaries, s.logger)
}

// handleGetSet returns a single set.
func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.setService.GetSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, set, s.logger)
}

type updateSetRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Year          *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Brand         *string `json:"brand" validate:"omitempty,max=100"`
	ProductLine   *string `json:"product_line" validate:"omitempty,max=100"`
	InsertSetName *string `json:"insert_set_name" validate:"omitempty,max=100"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}

// handleUpdateSet applies a partial update to a set's metadata.
func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req updateSetRequest
	if !s.decode(w, r, &req) {
		return
	}

	set, err := s.setService.UpdateSet(r.Context(), chi.URLParam(r, "id"), service.SetUpdate{
		Name:          req.Name,
		Year:          req.Year,
		Brand:         req.Brand,
		ProductLine:   req.ProductLine,
		InsertSetName: req.InsertSetName,
		Notes:         req.Notes,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, set, s.logger)
}

// handleDeleteSet removes a set and its cards.
func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	if err := s.setService.DeleteSet(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// cardListResponse is the checklist display payload: cards grouped for
// rendering plus the distinct years for the year filter.
type cardListResponse struct {
	Groups []checklist.YearGroup `json:"groups"`
	Years  []int                 `json:"years,omitempty"`
}

// handleListCards returns the set's checklist, filtered by the status,
// year, and q query parameters and grouped for display.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	filter := checklist.Filter{
		Search: r.URL.Query().Get("q"),
		Status: domain.CardStatus(r.URL.Query().Get("status")),
	}
	if year, ok := queryInt(r, "year"); ok {
		filter.Year = &year
	}

	groups, years, err := s.checklistService.ListCards(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cardListResponse{Groups: groups, Years: years}, s.logger)
}

// handleSetStats returns completion stats for one set.
func (s *Server) handleSetStats(w http.ResponseWriter, r *http.Request) {
	setID := chi.URLParam(r, "id")

	if _, err := s.setService.GetSet(r.Context(), setID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	stats, err := s.statsService.SetStats(r.Context(), setID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}

// handleExportCSV streams the set's checklist as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.checklistService.ExportCSV(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="checklist.csv"`)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write CSV export", "error", err)
	}
}
