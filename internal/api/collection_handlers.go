package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-server/internal/http/response"
)

type createCollectionRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// handleCreateCollection creates a named grouping of sets.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	coll, err := s.setService.CreateCollection(r.Context(), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, coll, s.logger)
}

// handleListCollections returns all collections.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	colls, err := s.setService.ListCollections(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, colls, s.logger)
}

// handleCollectionStats returns aggregate completion stats across a
// collection's sets.
func (s *Server) handleCollectionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsService.CollectionStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}

// handleAttachSet adds a set to a collection.
func (s *Server) handleAttachSet(w http.ResponseWriter, r *http.Request) {
	err := s.setService.AttachSet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "setID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleDetachSet removes a set from a collection.
func (s *Server) handleDetachSet(w http.ResponseWriter, r *http.Request) {
	err := s.setService.DetachSet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "setID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
