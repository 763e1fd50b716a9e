package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/http/response"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

type addCardRequest struct {
	CardNumber       string `json:"card_number" validate:"required,max=50"`
	PlayerName       string `json:"player_name" validate:"required,max=200"`
	Team             string `json:"team" validate:"max=100"`
	SubsetName       string `json:"subset_name" validate:"max=100"`
	Parallel         string `json:"parallel" validate:"max=100"`
	ParallelPrintRun string `json:"parallel_print_run" validate:"max=20"`
	Year             *int   `json:"year" validate:"omitempty,gte=1900,lte=2100"`
}

// handleAddCard adds a single card to a set.
func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var req addCardRequest
	if !s.decode(w, r, &req) {
		return
	}

	card, err := s.checklistService.AddCard(r.Context(), chi.URLParam(r, "id"), service.NewCard{
		CardNumber:       req.CardNumber,
		PlayerName:       req.PlayerName,
		Team:             req.Team,
		SubsetName:       req.SubsetName,
		Parallel:         req.Parallel,
		ParallelPrintRun: req.ParallelPrintRun,
		Year:             req.Year,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, card, s.logger)
}

type editCardRequest struct {
	CardNumber       *string `json:"card_number" validate:"omitempty,max=50"`
	PlayerName       *string `json:"player_name" validate:"omitempty,max=200"`
	Team             *string `json:"team" validate:"omitempty,max=100"`
	SubsetName       *string `json:"subset_name" validate:"omitempty,max=100"`
	Parallel         *string `json:"parallel" validate:"omitempty,max=100"`
	ParallelPrintRun *string `json:"parallel_print_run" validate:"omitempty,max=20"`
	SerialOwned      *string `json:"serial_owned" validate:"omitempty,max=20"`
	Status           *string `json:"status" validate:"omitempty,oneof=need pending owned"`
	Year             *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	DisplayOrder     *int    `json:"display_order" validate:"omitempty,gte=0"`
}

// handleEditCard applies a partial update to a card.
func (s *Server) handleEditCard(w http.ResponseWriter, r *http.Request) {
	var req editCardRequest
	if !s.decode(w, r, &req) {
		return
	}

	update := service.CardUpdate{
		CardNumber:       req.CardNumber,
		PlayerName:       req.PlayerName,
		Team:             req.Team,
		SubsetName:       req.SubsetName,
		Parallel:         req.Parallel,
		ParallelPrintRun: req.ParallelPrintRun,
		SerialOwned:      req.SerialOwned,
		Year:             req.Year,
		DisplayOrder:     req.DisplayOrder,
	}
	if req.Status != nil {
		status := domain.CardStatus(*req.Status)
		update.Status = &status
	}

	card, err := s.checklistService.EditCard(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, card, s.logger)
}

type serialRequest struct {
	SerialOwned string `json:"serial_owned" validate:"required,max=20"`
}

// handleCaptureSerial records the serial number of an owned copy and
// marks the card owned.
func (s *Server) handleCaptureSerial(w http.ResponseWriter, r *http.Request) {
	var req serialRequest
	if !s.decode(w, r, &req) {
		return
	}

	owned := domain.StatusOwned
	card, err := s.checklistService.EditCard(r.Context(), chi.URLParam(r, "id"), service.CardUpdate{
		SerialOwned: &req.SerialOwned,
		Status:      &owned,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, card, s.logger)
}

type deleteCardsRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1,dive,required"`
}

// handleDeleteCards removes cards from a set.
func (s *Server) handleDeleteCards(w http.ResponseWriter, r *http.Request) {
	var req deleteCardsRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.checklistService.DeleteCards(r.Context(), chi.URLParam(r, "id"), req.CardIDs); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

type addParallelRequest struct {
	Parallel         string `json:"parallel" validate:"required,max=100"`
	ParallelPrintRun string `json:"parallel_print_run" validate:"max=20"`
}

// handleAddParallel adds a single parallel to a rainbow set.
func (s *Server) handleAddParallel(w http.ResponseWriter, r *http.Request) {
	var req addParallelRequest
	if !s.decode(w, r, &req) {
		return
	}

	card, err := s.checklistService.AddParallel(r.Context(), chi.URLParam(r, "id"), req.Parallel, req.ParallelPrintRun)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, card, s.logger)
}

type displayOrderRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1,dive,required"`
}

// handleSetDisplayOrder records a manual parallel ordering for a
// rainbow set.
func (s *Server) handleSetDisplayOrder(w http.ResponseWriter, r *http.Request) {
	var req displayOrderRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.checklistService.SetDisplayOrder(r.Context(), chi.URLParam(r, "id"), req.CardIDs); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

type changeYearRequest struct {
	FromYear *int `json:"from_year" validate:"omitempty,gte=1900,lte=2100"`
	ToYear   int  `json:"to_year" validate:"required,gte=1900,lte=2100"`
}

// handleChangeYear moves a multi-year set's year group to another year.
func (s *Server) handleChangeYear(w http.ResponseWriter, r *http.Request) {
	var req changeYearRequest
	if !s.decode(w, r, &req) {
		return
	}

	changed, err := s.checklistService.ChangeYear(r.Context(), chi.URLParam(r, "id"), req.FromYear, req.ToYear)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"changed": changed}, s.logger)
}
