package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/simp-lee/catalog/internal/domain"
)

// GatewayErrorPolicy decides what create and update do with a gateway failure.
type GatewayErrorPolicy string

const (
	// PolicyNotify turns a gateway failure into a single-error validation
	// failure carrying the underlying message.
	PolicyNotify GatewayErrorPolicy = "notify"
	// PolicyPropagate returns the gateway error unchanged.
	PolicyPropagate GatewayErrorPolicy = "propagate"
)

// ParseGatewayErrorPolicy parses a policy name. An empty string selects
// PolicyNotify.
func ParseGatewayErrorPolicy(s string) (GatewayErrorPolicy, error) {
	switch p := GatewayErrorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyNotify:
		return PolicyNotify, nil
	case PolicyPropagate:
		return PolicyPropagate, nil
	default:
		return "", fmt.Errorf("unknown gateway error policy %q (want %q or %q)", s, PolicyNotify, PolicyPropagate)
	}
}

// Service is the set of category use cases exposed to the HTTP layer.
type Service interface {
	CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (*CreateCategoryOutput, error)
	GetCategory(ctx context.Context, id string) (*CategoryOutput, error)
	ListCategories(ctx context.Context, query domain.SearchQuery) (*domain.Pagination[CategoryListOutput], error)
	UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (*UpdateCategoryOutput, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Option configures the category service.
type Option func(*categoryService)

// WithErrorPolicy sets how create and update report gateway failures.
func WithErrorPolicy(p GatewayErrorPolicy) Option {
	return func(s *categoryService) {
		s.policy = p
	}
}

// WithLogger sets the logger used for gateway failures. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *categoryService) {
		if l != nil {
			s.logger = l
		}
	}
}

type categoryService struct {
	gateway domain.CategoryGateway
	policy  GatewayErrorPolicy
	logger  *slog.Logger
}

// NewService creates the category use cases on top of gateway.
func NewService(gateway domain.CategoryGateway, opts ...Option) Service {
	s := &categoryService{
		gateway: gateway,
		policy:  PolicyNotify,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCategory builds and validates a new category, then persists it.
// An invalid category never reaches the gateway.
func (s *categoryService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (*CreateCategoryOutput, error) {
	category := domain.NewCategory(cmd.Name, cmd.Description, cmd.IsActive)

	notification := domain.NewNotification()
	category.Validate(notification)
	if notification.HasError() {
		return nil, domain.NewValidationError(notification)
	}

	created, err := s.gateway.Create(ctx, category)
	if err != nil {
		return nil, s.gatewayFailure(ctx, "create", err)
	}

	return &CreateCategoryOutput{ID: created.ID.String()}, nil
}

// GetCategory returns the category with the given id.
func (s *categoryService) GetCategory(ctx context.Context, id string) (*CategoryOutput, error) {
	categoryID := domain.CategoryIDFrom(id)

	category, found, err := s.gateway.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewNotFoundError(domain.CategoryAggregate, categoryID)
	}

	out := categoryOutputFrom(category)
	return &out, nil
}

// ListCategories returns one page of categories matching query.
func (s *categoryService) ListCategories(ctx context.Context, query domain.SearchQuery) (*domain.Pagination[CategoryListOutput], error) {
	page, err := s.gateway.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return domain.MapPagination(page, categoryListOutputFrom), nil
}

// UpdateCategory loads the category, applies the changes and persists it.
// An unknown id or an invalid result never reaches gateway Update.
func (s *categoryService) UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (*UpdateCategoryOutput, error) {
	categoryID := domain.CategoryIDFrom(cmd.ID)

	category, found, err := s.gateway.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewNotFoundError(domain.CategoryAggregate, categoryID)
	}

	category.Update(cmd.Name, cmd.Description, cmd.IsActive)

	notification := domain.NewNotification()
	category.Validate(notification)
	if notification.HasError() {
		return nil, domain.NewValidationError(notification)
	}

	updated, err := s.gateway.Update(ctx, category)
	if err != nil {
		return nil, s.gatewayFailure(ctx, "update", err)
	}

	return &UpdateCategoryOutput{ID: updated.ID.String()}, nil
}

// DeleteCategory removes the category. Deleting an unknown id succeeds.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.gateway.DeleteByID(ctx, domain.CategoryIDFrom(id))
}

// gatewayFailure applies the configured policy to a failed create or update.
func (s *categoryService) gatewayFailure(ctx context.Context, op string, err error) error {
	if s.policy == PolicyPropagate {
		return err
	}

	s.logger.WarnContext(ctx, "category gateway failure reported as validation error",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)

	appErr := domain.NewValidationError(domain.NotificationFromError(err))
	appErr.Err = err
	return appErr
}
