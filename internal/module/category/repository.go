package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/catalog/internal/domain"
	"github.com/simp-lee/catalog/internal/pkg"
)

const fallbackPerPage = 10

// categorySort lists the sort keys FindAll accepts, in both the camelCase
// used by the API and the column spelling.
var categorySort = pkg.SortSpec{
	Columns: map[string]string{
		"name":        "name",
		"description": "description",
		"createdAt":   "created_at",
		"created_at":  "created_at",
		"updatedAt":   "updated_at",
		"updated_at":  "updated_at",
		"active":      "active",
	},
	Default:  "name",
	TieBreak: "id",
}

// searchColumns are matched by the free-text term of FindAll.
var searchColumns = []string{"name", "description"}

// categoryRecord is the persisted form of domain.Category. Timestamps always
// come from the aggregate.
type categoryRecord struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Name        string     `gorm:"size:255;not null"`
	Description string     `gorm:"size:4000"`
	Active      bool       `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false;index"`
	DeletedAt   *time.Time `gorm:"index"`
}

func (categoryRecord) TableName() string {
	return "categories"
}

func recordFrom(c *domain.Category) categoryRecord {
	return categoryRecord{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
		DeletedAt:   utcPtr(c.DeletedAt),
	}
}

func (r categoryRecord) toDomain() *domain.Category {
	return domain.RestoreCategory(
		domain.CategoryIDFrom(r.ID),
		r.Name,
		r.Description,
		r.Active,
		r.CreatedAt.UTC(),
		r.UpdatedAt.UTC(),
		utcPtr(r.DeletedAt),
	)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// AutoMigrate creates or updates the categories table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&categoryRecord{})
}

// categoryRepository implements domain.CategoryGateway using GORM.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a CategoryGateway backed by the given GORM database.
func NewCategoryRepository(db *gorm.DB) domain.CategoryGateway {
	return &categoryRepository{db: db}
}

// Create inserts a new category.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	rec := recordFrom(category)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, mapError(err)
	}
	return rec.toDomain(), nil
}

// Update saves every field of an existing category. A missing row is reported
// as not found.
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	rec := recordFrom(category)
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		exists, err := categoryExists(tx, rec.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewNotFoundError(domain.CategoryAggregate, category.ID)
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	return rec.toDomain(), nil
}

// DeleteByID removes the category if it exists.
func (r *categoryRepository) DeleteByID(ctx context.Context, id domain.CategoryID) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		exists, err := categoryExists(tx, id.String())
		if err != nil || !exists {
			return err
		}
		return tx.Where("id = ?", id.String()).Delete(&categoryRecord{}).Error
	})
	return mapError(err)
}

// FindByID retrieves a category by id. Absence is found=false, not an error.
func (r *categoryRepository) FindByID(ctx context.Context, id domain.CategoryID) (*domain.Category, bool, error) {
	var recs []categoryRecord
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Limit(1).Find(&recs)
	if result.Error != nil {
		return nil, false, mapError(result.Error)
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return recs[0].toDomain(), true, nil
}

// FindAll returns a filtered, sorted page of categories and the number of
// categories matching the filter.
func (r *categoryRepository) FindAll(ctx context.Context, query domain.SearchQuery) (*domain.Pagination[domain.Category], error) {
	if query.Page < 0 {
		query.Page = 0
	}
	if query.PerPage < 1 {
		query.PerPage = fallbackPerPage
	}

	base := r.db.WithContext(ctx).Model(&categoryRecord{}).
		Scopes(pkg.Search(query.Terms, searchColumns...)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var recs []categoryRecord
	if err := base.Scopes(
		pkg.Sort(query, categorySort),
		pkg.Paginate(query),
	).Find(&recs).Error; err != nil {
		return nil, mapError(err)
	}

	items := make([]domain.Category, 0, len(recs))
	for _, rec := range recs {
		items = append(items, *rec.toDomain())
	}
	return domain.NewPagination(query, total, items), nil
}

func categoryExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Model(&categoryRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// mapError converts GORM errors to domain errors. Errors that already are
// domain errors pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
