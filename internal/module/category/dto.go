package category

import (
	"time"

	"github.com/simp-lee/catalog/internal/domain"
)

// CreateCategoryRequest represents the input for creating a category.
// Name rules are enforced by the domain validator, not by binding.
type CreateCategoryRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description" binding:"max=4000"`
	IsActive    *bool  `json:"is_active" form:"is_active"`
}

// UpdateCategoryRequest represents the input for updating a category.
type UpdateCategoryRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description" binding:"max=4000"`
	IsActive    *bool  `json:"is_active" form:"is_active"`
}

// CreateCategoryCommand is the input of the create use case.
type CreateCategoryCommand struct {
	Name        string
	Description string
	IsActive    bool
}

// CreateCategoryOutput identifies the created category.
type CreateCategoryOutput struct {
	ID string `json:"id"`
}

// UpdateCategoryCommand is the input of the update use case.
type UpdateCategoryCommand struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
}

// UpdateCategoryOutput identifies the updated category.
type UpdateCategoryOutput struct {
	ID string `json:"id"`
}

// CategoryOutput is the read-only projection returned by GetCategory.
type CategoryOutput struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// CategoryListOutput is the projection used for list items.
type CategoryListOutput struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

func categoryOutputFrom(c *domain.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		DeletedAt:   c.DeletedAt,
	}
}

func categoryListOutputFrom(c domain.Category) CategoryListOutput {
	return CategoryListOutput{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.Active,
		CreatedAt:   c.CreatedAt,
		DeletedAt:   c.DeletedAt,
	}
}

// activeOrDefault treats a missing is_active as true.
func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
