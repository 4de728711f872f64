package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CategoryAggregate is the aggregate name used in error messages.
const CategoryAggregate = "Category"

// CategoryID identifies a Category. New ids are UUIDv7 strings, so sorting
// by id follows creation order.
type CategoryID string

// NewCategoryID returns a fresh, time-ordered identifier.
func NewCategoryID() CategoryID {
	return CategoryID(uuid.Must(uuid.NewV7()).String())
}

// CategoryIDFrom wraps an externally supplied identifier.
func CategoryIDFrom(s string) CategoryID {
	return CategoryID(s)
}

func (id CategoryID) String() string {
	return string(id)
}

// now returns the current time at the precision every supported store keeps.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Category is the catalog aggregate root.
//
// DeletedAt is non-nil exactly when Active is false. CreatedAt never changes
// after NewCategory and UpdatedAt is refreshed by every mutation.
type Category struct {
	ID          CategoryID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Active      bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// NewCategory creates a category with a new id. An inactive category is born
// deleted, with DeletedAt equal to its creation time.
func NewCategory(name, description string, active bool) *Category {
	ts := now()
	var deletedAt *time.Time
	if !active {
		deletedAt = &ts
	}
	return &Category{
		ID:          NewCategoryID(),
		Name:        name,
		Description: description,
		Active:      active,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		DeletedAt:   deletedAt,
	}
}

// RestoreCategory rebuilds a category from stored state without touching any
// timestamp.
func RestoreCategory(id CategoryID, name, description string, active bool, createdAt, updatedAt time.Time, deletedAt *time.Time) *Category {
	return &Category{
		ID:          id,
		Name:        name,
		Description: description,
		Active:      active,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   copyTime(deletedAt),
	}
}

// Clone returns a deep copy of c.
func (c *Category) Clone() *Category {
	return RestoreCategory(c.ID, c.Name, c.Description, c.Active, c.CreatedAt, c.UpdatedAt, c.DeletedAt)
}

// Validate reports every violated rule to h.
func (c *Category) Validate(h ValidationHandler) {
	NewCategoryValidator(c, h).Validate()
}

// Activate marks the category active and clears DeletedAt.
func (c *Category) Activate() *Category {
	c.DeletedAt = nil
	c.Active = true
	c.touch()
	return c
}

// Deactivate marks the category inactive. The first deactivation time is kept
// on repeated calls.
func (c *Category) Deactivate() *Category {
	if c.DeletedAt == nil {
		ts := now()
		c.DeletedAt = &ts
	}
	c.Active = false
	c.touch()
	return c
}

// Update applies the active flag through Activate/Deactivate, then overwrites
// name and description.
func (c *Category) Update(name, description string, active bool) *Category {
	if active {
		c.Activate()
	} else {
		c.Deactivate()
	}
	c.Name = name
	c.Description = description
	c.touch()
	return c
}

// touch moves UpdatedAt forward, strictly, even when the clock has not
// advanced past the stored precision.
func (c *Category) touch() {
	ts := now()
	if !ts.After(c.UpdatedAt) {
		ts = c.UpdatedAt.Add(time.Microsecond)
	}
	c.UpdatedAt = ts
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CategoryGateway is the persistence port for categories.
//
// FindByID and DeleteByID never report absence as an error: FindByID returns
// found=false and DeleteByID succeeds silently.
type CategoryGateway interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	DeleteByID(ctx context.Context, id CategoryID) error
	FindByID(ctx context.Context, id CategoryID) (category *Category, found bool, err error)
	FindAll(ctx context.Context, query SearchQuery) (*Pagination[Category], error)
}
