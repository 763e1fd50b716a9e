package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/http/response"
	"github.com/cardbinder/cardbinder-server/internal/service"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

type importChecklistRequest struct {
	Text       string  `json:"text" validate:"required"`
	Year       *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Parallel   *string `json:"parallel" validate:"omitempty,max=100"`
	SubsetName string  `json:"subset_name" validate:"max=100"`
	Preview    bool    `json:"preview"`
}

// handleImportChecklist imports pasted checklist text into a set. With
// preview=true nothing is persisted and the report describes what a
// real import would do.
func (s *Server) handleImportChecklist(w http.ResponseWriter, r *http.Request) {
	var req importChecklistRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := s.checklistService.ImportChecklist(r.Context(), chi.URLParam(r, "id"), service.ImportRequest{
		Text:       req.Text,
		Year:       req.Year,
		Parallel:   req.Parallel,
		SubsetName: req.SubsetName,
		Preview:    req.Preview,
	})
	if err != nil {
		// A chunk failure still carries a report saying how far the
		// import got before stopping.
		var chunkErr *store.ChunkError
		if report != nil && errors.As(err, &chunkErr) {
			s.logger.Error("import chunk failed",
				"set_id", chi.URLParam(r, "id"),
				"chunk", chunkErr.Index,
				"error", err,
			)
			response.JSON(w, http.StatusInternalServerError, report, s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, report, s.logger)
}

type importRainbowRequest struct {
	Text    string `json:"text" validate:"required"`
	Preview bool   `json:"preview"`
}

// handleImportRainbow imports pasted parallel lines into a rainbow set.
func (s *Server) handleImportRainbow(w http.ResponseWriter, r *http.Request) {
	var req importRainbowRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := s.checklistService.ImportRainbow(r.Context(), chi.URLParam(r, "id"), req.Text, req.Preview)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, report, s.logger)
}

type bulkStatusRequest struct {
	Text   string `json:"text" validate:"required"`
	Status string `json:"status" validate:"required,oneof=need pending owned"`
}

// handleBulkStatusPreview reports what a bulk status change would do.
func (s *Server) handleBulkStatusPreview(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if !s.decode(w, r, &req) {
		return
	}

	plan, err := s.checklistService.BulkStatusPreview(r.Context(), chi.URLParam(r, "id"), req.Text, domain.CardStatus(req.Status))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, plan, s.logger)
}

// handleBulkStatusApply applies a bulk status change.
func (s *Server) handleBulkStatusApply(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if !s.decode(w, r, &req) {
		return
	}

	plan, err := s.checklistService.BulkStatusApply(r.Context(), chi.URLParam(r, "id"), req.Text, domain.CardStatus(req.Status))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, plan, s.logger)
}
