package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/errors"
	"github.com/cardbinder/cardbinder-server/internal/id"
	"github.com/cardbinder/cardbinder-server/internal/normalize"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

// AdminService manages reference data and user accounts. Everything
// here sits behind the admin token middleware at the API layer.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store *store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
	}
}

// trialDuration is how long a newly started trial lasts.
const trialDuration = 14 * 24 * time.Hour

// CreateBrand adds a card manufacturer. Names are unique
// case-insensitively.
func (s *AdminService) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("brand name is required")
	}

	brandID, err := id.Generate("brand")
	if err != nil {
		return nil, fmt.Errorf("generate brand ID: %w", err)
	}

	brand := &domain.Brand{
		ID:        brandID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Brands.Create(ctx, brandID, brand); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}

	s.logger.Info("brand created", "brand_id", brandID, "name", name)
	return brand, nil
}

// ListBrands returns all brands sorted by name.
func (s *AdminService) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	brands, err := s.store.Brands.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	slices.SortFunc(brands, func(a, b *domain.Brand) int {
		return strings.Compare(normalize.SearchTerm(a.Name), normalize.SearchTerm(b.Name))
	})
	return brands, nil
}

// DeleteBrand removes a brand. Sets referencing it keep their stored
// brand string.
func (s *AdminService) DeleteBrand(ctx context.Context, brandID string) error {
	return s.store.Brands.Delete(ctx, brandID)
}

// CreateProductLine adds a product family.
func (s *AdminService) CreateProductLine(ctx context.Context, name string) (*domain.ProductLine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("product line name is required")
	}

	lineID, err := id.Generate("line")
	if err != nil {
		return nil, fmt.Errorf("generate product line ID: %w", err)
	}

	line := &domain.ProductLine{
		ID:        lineID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.ProductLines.Create(ctx, lineID, line); err != nil {
		return nil, fmt.Errorf("create product line: %w", err)
	}

	s.logger.Info("product line created", "product_line_id", lineID, "name", name)
	return line, nil
}

// ListProductLines returns all product lines sorted by name.
func (s *AdminService) ListProductLines(ctx context.Context) ([]*domain.ProductLine, error) {
	lines, err := s.store.ProductLines.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product lines: %w", err)
	}
	slices.SortFunc(lines, func(a, b *domain.ProductLine) int {
		return strings.Compare(normalize.SearchTerm(a.Name), normalize.SearchTerm(b.Name))
	})
	return lines, nil
}

// DeleteProductLine removes a product line.
func (s *AdminService) DeleteProductLine(ctx context.Context, lineID string) error {
	return s.store.ProductLines.Delete(ctx, lineID)
}

// CreateInsertSetName adds a reusable insert-set label.
func (s *AdminService) CreateInsertSetName(ctx context.Context, name string) (*domain.InsertSetName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("insert set name is required")
	}

	insertID, err := id.Generate("ins")
	if err != nil {
		return nil, fmt.Errorf("generate insert set name ID: %w", err)
	}

	insert := &domain.InsertSetName{
		ID:        insertID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertSetNames.Create(ctx, insertID, insert); err != nil {
		return nil, fmt.Errorf("create insert set name: %w", err)
	}

	s.logger.Info("insert set name created", "insert_set_name_id", insertID, "name", name)
	return insert, nil
}

// ListInsertSetNames returns all insert-set labels sorted by name.
func (s *AdminService) ListInsertSetNames(ctx context.Context) ([]*domain.InsertSetName, error) {
	inserts, err := s.store.InsertSetNames.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list insert set names: %w", err)
	}
	slices.SortFunc(inserts, func(a, b *domain.InsertSetName) int {
		return strings.Compare(normalize.SearchTerm(a.Name), normalize.SearchTerm(b.Name))
	})
	return inserts, nil
}

// DeleteInsertSetName removes an insert-set label.
func (s *AdminService) DeleteInsertSetName(ctx context.Context, insertID string) error {
	return s.store.InsertSetNames.Delete(ctx, insertID)
}

// NewUser are the caller-supplied fields for creating a user account.
// New accounts start on a trial.
type NewUser struct {
	Email       string
	DisplayName string
	Role        domain.UserRole
}

// CreateUser creates an account on a fresh trial. Emails are unique
// case-insensitively.
func (s *AdminService) CreateUser(ctx context.Context, req NewUser) (*domain.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, errors.Validation("email is required")
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, errors.Validationf("unknown role %q", role)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now().UTC()
	trialEnd := now.Add(trialDuration)
	user := &domain.User{
		ID:           userID,
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         role,
		Subscription: domain.SubscriptionTrial,
		TrialEndsAt:  &trialEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", "user_id", userID, "email", email, "role", role)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AdminService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Users.Get(ctx, userID)
}

// GetUserByEmail looks up a user by their email address.
func (s *AdminService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store.Users.GetByIndex(ctx, "email", normalize.SearchTerm(email))
}

// ListUsers returns all users sorted by email.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.Users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortFunc(users, func(a, b *domain.User) int {
		return strings.Compare(normalize.SearchTerm(a.Email), normalize.SearchTerm(b.Email))
	})
	return users, nil
}

// StartTrial puts a user back on a fresh trial window.
func (s *AdminService) StartTrial(ctx context.Context, userID string) (*domain.User, error) {
	return s.transition(ctx, userID, func(user *domain.User, now time.Time) {
		trialEnd := now.Add(trialDuration)
		user.Subscription = domain.SubscriptionTrial
		user.TrialEndsAt = &trialEnd
	})
}

// ActivateSubscription marks a user as a paying subscriber.
func (s *AdminService) ActivateSubscription(ctx context.Context, userID string) (*domain.User, error) {
	return s.transition(ctx, userID, func(user *domain.User, _ time.Time) {
		user.Subscription = domain.SubscriptionActive
		user.TrialEndsAt = nil
	})
}

// ExpireSubscription cuts off a user's access.
func (s *AdminService) ExpireSubscription(ctx context.Context, userID string) (*domain.User, error) {
	return s.transition(ctx, userID, func(user *domain.User, _ time.Time) {
		user.Subscription = domain.SubscriptionExpired
		user.TrialEndsAt = nil
	})
}

func (s *AdminService) transition(ctx context.Context, userID string, apply func(*domain.User, time.Time)) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := time.Now().UTC()
	apply(user, now)
	user.UpdatedAt = now

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("subscription updated",
		"user_id", userID,
		"subscription", user.Subscription,
	)
	return user, nil
}
