package category

import (
	"path"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/catalog/internal/pkg"
)

// CategoryHandler handles REST API requests for the category resource.
type CategoryHandler struct {
	svc      Service
	defaults pkg.QueryDefaults
}

// NewCategoryHandler creates a new CategoryHandler. defaults controls list
// paging when the request leaves parameters out.
func NewCategoryHandler(svc Service, defaults pkg.QueryDefaults) *CategoryHandler {
	if defaults.Sort == "" {
		defaults.Sort = categorySort.Default
	}
	if defaults.PerPage < 1 {
		defaults.PerPage = fallbackPerPage
	}
	return &CategoryHandler{svc: svc, defaults: defaults}
}

// Create handles POST /api/v1/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	out, err := h.svc.CreateCategory(c.Request.Context(), CreateCategoryCommand{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    activeOrDefault(req.IsActive),
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, path.Join(c.Request.URL.Path, out.ID), out)
}

// Get handles GET /api/v1/categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	out, err := h.svc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, out)
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	query := pkg.ParseSearchQuery(c, h.defaults)

	result, err := h.svc.ListCategories(c.Request.Context(), query)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Update handles PUT /api/v1/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req UpdateCategoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	out, err := h.svc.UpdateCategory(c.Request.Context(), UpdateCategoryCommand{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    activeOrDefault(req.IsActive),
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, out)
}

// Delete handles DELETE /api/v1/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}
