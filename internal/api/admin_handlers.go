package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/http/response"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

type createNamedRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// handleCreateBrand adds a card manufacturer.
func (s *Server) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var req createNamedRequest
	if !s.decode(w, r, &req) {
		return
	}

	brand, err := s.adminService.CreateBrand(r.Context(), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, brand, s.logger)
}

// handleListBrands returns all brands.
func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.adminService.ListBrands(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, brands, s.logger)
}

// handleDeleteBrand removes a brand.
func (s *Server) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := s.adminService.DeleteBrand(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleCreateProductLine adds a product family.
func (s *Server) handleCreateProductLine(w http.ResponseWriter, r *http.Request) {
	var req createNamedRequest
	if !s.decode(w, r, &req) {
		return
	}

	line, err := s.adminService.CreateProductLine(r.Context(), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, line, s.logger)
}

// handleListProductLines returns all product lines.
func (s *Server) handleListProductLines(w http.ResponseWriter, r *http.Request) {
	lines, err := s.adminService.ListProductLines(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, lines, s.logger)
}

// handleDeleteProductLine removes a product line.
func (s *Server) handleDeleteProductLine(w http.ResponseWriter, r *http.Request) {
	if err := s.adminService.DeleteProductLine(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleCreateInsertSetName adds a reusable insert-set label.
func (s *Server) handleCreateInsertSetName(w http.ResponseWriter, r *http.Request) {
	var req createNamedRequest
	if !s.decode(w, r, &req) {
		return
	}

	insert, err := s.adminService.CreateInsertSetName(r.Context(), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, insert, s.logger)
}

// handleListInsertSetNames returns all insert-set labels.
func (s *Server) handleListInsertSetNames(w http.ResponseWriter, r *http.Request) {
	inserts, err := s.adminService.ListInsertSetNames(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, inserts, s.logger)
}

// handleDeleteInsertSetName removes an insert-set label.
func (s *Server) handleDeleteInsertSetName(w http.ResponseWriter, r *http.Request) {
	if err := s.adminService.DeleteInsertSetName(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin"`
}

// handleCreateUser creates a user account on a fresh trial.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.adminService.CreateUser(r.Context(), service.NewUser{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        domain.UserRole(req.Role),
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, user, s.logger)
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.adminService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, users, s.logger)
}

type subscriptionChangeRequest struct {
	Action string `json:"action" validate:"required,oneof=trial activate expire"`
}

// handleSubscriptionChange transitions a user's subscription state.
func (s *Server) handleSubscriptionChange(w http.ResponseWriter, r *http.Request) {
	var req subscriptionChangeRequest
	if !s.decode(w, r, &req) {
		return
	}

	userID := chi.URLParam(r, "id")

	var user *domain.User
	var err error
	switch req.Action {
	case "trial":
		user, err = s.adminService.StartTrial(r.Context(), userID)
	case "activate":
		user, err = s.adminService.ActivateSubscription(r.Context(), userID)
	case "expire":
		user, err = s.adminService.ExpireSubscription(r.Context(), userID)
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}
